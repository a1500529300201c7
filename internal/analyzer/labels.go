package analyzer

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/detector"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/imaging"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
	"github.com/rs/zerolog"
)

type LabelDetector interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RekognitionLabelAnalyzer emits one lower-cased label per detected instance.
// Labels Rekognition reports without bounding boxes count once; a label whose
// instances all fall below the threshold is dropped.
type RekognitionLabelAnalyzer struct {
	client        LabelDetector
	minConfidence float64
	logger        *zerolog.Logger
}

func NewRekognitionLabelAnalyzer(client LabelDetector, minConfidence float64, logger *zerolog.Logger) *RekognitionLabelAnalyzer {
	return &RekognitionLabelAnalyzer{
		client:        client,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

func (a *RekognitionLabelAnalyzer) Analyze(ctx context.Context, img models.Image, _ string) (violation.ClassifierOutput, error) {
	threshold := float32(a.minConfidence * 100)

	result, err := a.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img.Data},
		MinConfidence: aws.Float32(threshold),
	})
	if err != nil {
		return violation.ClassifierOutput{}, fmt.Errorf("rekognition detect labels: %w", err)
	}

	var labels []string
	for _, label := range result.Labels {
		if label.Name == nil {
			continue
		}
		name := strings.ToLower(*label.Name)

		instances := 0
		for _, inst := range label.Instances {
			if inst.Confidence == nil || *inst.Confidence >= threshold {
				instances++
			}
		}
		if len(label.Instances) == 0 {
			instances = 1
		}
		for i := 0; i < instances; i++ {
			labels = append(labels, name)
		}
	}

	a.logger.Debug().
		Str("image", img.Name).
		Strs("labels", labels).
		Msg("rekognition labels detected")

	return violation.LabelOutput(labels), nil
}

// ObjectDetector finds labelled objects in a decoded image.
type ObjectDetector interface {
	Detect(ctx context.Context, img image.Image) ([]detector.Detection, error)
}

// DetectorAnalyzer runs a local object detector and reports its labels.
type DetectorAnalyzer struct {
	detector ObjectDetector
	logger   *zerolog.Logger
}

func NewDetectorAnalyzer(d ObjectDetector, logger *zerolog.Logger) *DetectorAnalyzer {
	return &DetectorAnalyzer{detector: d, logger: logger}
}

func (a *DetectorAnalyzer) Analyze(ctx context.Context, img models.Image, _ string) (violation.ClassifierOutput, error) {
	decoded, err := imaging.Decode(img.Data)
	if err != nil {
		return violation.ClassifierOutput{}, err
	}

	detections, err := a.detector.Detect(ctx, decoded)
	if err != nil {
		return violation.ClassifierOutput{}, fmt.Errorf("object detection: %w", err)
	}

	labels := detector.Labels(detections)
	a.logger.Debug().
		Str("image", img.Name).
		Strs("labels", labels).
		Msg("objects detected")

	return violation.LabelOutput(labels), nil
}
