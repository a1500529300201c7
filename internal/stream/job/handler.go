package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/rs/zerolog"
)

// ErrInvalidJob marks a message that will never succeed on redelivery.
var ErrInvalidJob = errors.New("invalid job")

type ChallanExecutor interface {
	Execute(ctx context.Context, img models.Image) (models.ChallanResult, error)
}

// Handler turns one stream payload into one pipeline run.
type Handler struct {
	executor ChallanExecutor
	readFile func(name string) ([]byte, error)
	logger   *zerolog.Logger
}

func NewHandler(exec ChallanExecutor, logger *zerolog.Logger) *Handler {
	return &Handler{
		executor: exec,
		readFile: os.ReadFile,
		logger:   logger,
	}
}

func Encode(j models.ChallanJob) ([]byte, error) {
	if j.ImagePath == "" {
		return nil, fmt.Errorf("%w: image_path is required", ErrInvalidJob)
	}
	return json.Marshal(j)
}

func Decode(payload []byte) (models.ChallanJob, error) {
	var j models.ChallanJob
	if err := json.Unmarshal(payload, &j); err != nil {
		return j, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	if j.ImagePath == "" {
		return j, fmt.Errorf("%w: image_path is required", ErrInvalidJob)
	}
	return j, nil
}

// Handle decodes the payload, loads the image and issues the challan.
// Errors wrapping ErrInvalidJob should not be retried.
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	j, err := Decode(payload)
	if err != nil {
		return err
	}

	data, err := h.readFile(j.ImagePath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	if err != nil {
		return fmt.Errorf("failed to read image %s: %w", j.ImagePath, err)
	}

	result, err := h.executor.Execute(ctx, models.Image{
		Name: filepath.Base(j.ImagePath),
		Data: data,
	})
	if errors.Is(err, executor.ErrImageRejected) {
		return fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	if err != nil {
		return fmt.Errorf("job %s: %w", j.JobID, err)
	}

	h.logger.Info().
		Str("job_id", j.JobID).
		Str("challan_id", result.Citation.ID).
		Str("plate", result.Citation.PlateText).
		Strs("violations", result.DisplayViolations).
		Int("total_fine", result.Citation.TotalFine).
		Str("document", result.DocumentLocation).
		Msg("Challan issued")

	return nil
}
