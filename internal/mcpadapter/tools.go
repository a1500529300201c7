package mcpadapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
)

var (
	ErrMissingPath     = errors.New("image_path is required")
	ErrAmbiguousOutput = errors.New("exactly one of text or labels is required")
)

// IssueChallan runs the full pipeline on a file and returns the result.
func IssueChallan(
	ctx context.Context,
	pipeline Pipeline,
	req *mcp.CallToolRequest,
	input IssueChallanInput,
) (*mcp.CallToolResult, models.ChallanResult, error) {
	if input.ImagePath == "" {
		return nil, models.ChallanResult{}, ErrMissingPath
	}

	data, err := os.ReadFile(input.ImagePath)
	if err != nil {
		return nil, models.ChallanResult{}, fmt.Errorf("failed to read image: %w", err)
	}

	result, err := pipeline.Execute(ctx, models.Image{
		Name: filepath.Base(input.ImagePath),
		Data: data,
	})
	return nil, result, err
}

// NormalizeViolations maps one classifier output to violations and a fine.
func NormalizeViolations(
	ctx context.Context,
	pipeline Pipeline,
	req *mcp.CallToolRequest,
	input NormalizeInput,
) (*mcp.CallToolResult, models.Assessment, error) {
	var out violation.ClassifierOutput
	switch {
	case input.Text != nil && input.Labels == nil:
		out = violation.TextOutput(*input.Text)
	case input.Text == nil && input.Labels != nil:
		out = violation.LabelOutput(input.Labels)
	default:
		return nil, models.Assessment{}, ErrAmbiguousOutput
	}

	return nil, pipeline.Assess(out), nil
}
