package prechecks

import (
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
)

// Checker inspects an image before any model is called.
type Checker interface {
	Check(img models.Image) models.StageResult
}
