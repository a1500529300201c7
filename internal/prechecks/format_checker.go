package prechecks

import (
	"time"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/imaging"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
)

type FormatChecker struct {
}

func NewFormatChecker() *FormatChecker {
	return &FormatChecker{}
}

// Check accepts JPEG and PNG, judged by content rather than file name.
func (c *FormatChecker) Check(img models.Image) models.StageResult {
	now := time.Now()
	result := models.StageResult{
		Name: "format-checker",
	}

	mediaType, err := imaging.MediaType(img.Data)
	if err != nil {
		result.Reason = err.Error()
		result.Duration = time.Since(now)
		return result
	}

	result.Passed = true
	result.Reason = mediaType
	result.Duration = time.Since(now)
	return result
}
