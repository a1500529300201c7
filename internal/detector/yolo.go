package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/imaging"
	"github.com/rs/zerolog"
	ort "github.com/yalue/onnxruntime_go"
)

// YOLO runs a YOLOv8 ONNX export through onnxruntime. The session and its
// tensors are shared, so Detect calls are serialised.
type YOLO struct {
	mu            sync.Mutex
	session       *ort.AdvancedSession
	metadata      Metadata
	inputTensor   *ort.Tensor[float32]
	outputTensor  *ort.Tensor[float32]
	minConfidence float32
	iouThreshold  float32
	logger        *zerolog.Logger
}

func loadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if metadata.InputName == "" {
		metadata.InputName = "images"
	}
	if metadata.OutputName == "" {
		metadata.OutputName = "output0"
	}
	if metadata.ImageSize <= 0 {
		return Metadata{}, fmt.Errorf("metadata image_size must be positive")
	}
	if len(metadata.Classes) == 0 {
		return Metadata{}, fmt.Errorf("metadata lists no classes")
	}
	return metadata, nil
}

// NewYOLO loads the model. libPath points at the onnxruntime shared library
// and may be empty to use the platform default.
func NewYOLO(modelPath, metadataPath, libPath string, minConfidence, iouThreshold float64, logger *zerolog.Logger) (*YOLO, error) {
	metadata, err := loadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger.Info().
		Str("model", modelPath).
		Int("classes", len(metadata.Classes)).
		Int("image_size", metadata.ImageSize).
		Msg("YOLO detector loaded")

	return &YOLO{
		session:       session,
		metadata:      metadata,
		inputTensor:   inputTensor,
		outputTensor:  outputTensor,
		minConfidence: float32(minConfidence),
		iouThreshold:  float32(iouThreshold),
		logger:        logger,
	}, nil
}

func (y *YOLO) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input := imaging.Tensor(img, y.metadata.ImageSize)

	y.mu.Lock()
	defer y.mu.Unlock()

	if len(input) != len(y.inputTensor.GetData()) {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(input), len(y.inputTensor.GetData()))
	}
	copy(y.inputTensor.GetData(), input)

	if err := y.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	raw, err := Decode(y.outputTensor.GetData(), y.metadata.OutputShape, y.metadata.Classes, y.minConfidence)
	if err != nil {
		return nil, err
	}
	detections := NonMaxSuppression(raw, y.iouThreshold)

	y.logger.Debug().
		Int("candidates", len(raw)).
		Int("detections", len(detections)).
		Msg("YOLO inference complete")

	return detections, nil
}

func (y *YOLO) Close() {
	if y.inputTensor != nil {
		y.inputTensor.Destroy()
	}
	if y.outputTensor != nil {
		y.outputTensor.Destroy()
	}
	if y.session != nil {
		y.session.Destroy()
	}
	ort.DestroyEnvironment()
}
