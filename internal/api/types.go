package api

import (
	"context"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// NormalizeRequest carries one classifier output: free text or labels.
type NormalizeRequest struct {
	Text   *string  `json:"text,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// ChallanService is the pipeline as seen by the HTTP layer.
type ChallanService interface {
	Execute(ctx context.Context, img models.Image) (models.ChallanResult, error)
	Assess(out violation.ClassifierOutput) models.Assessment
}

// DocumentLoader fetches a stored challan document by id.
type DocumentLoader interface {
	Load(ctx context.Context, id string) ([]byte, error)
}
