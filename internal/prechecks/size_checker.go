package prechecks

import (
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
)

type SizeChecker struct {
	maxBytes int
}

// NewSizeChecker rejects empty images and, when maxBytes > 0, larger ones.
func NewSizeChecker(maxBytes int) *SizeChecker {
	return &SizeChecker{maxBytes: maxBytes}
}

func (c *SizeChecker) Check(img models.Image) models.StageResult {
	now := time.Now()
	result := models.StageResult{
		Name: "size-checker",
	}

	size := len(img.Data)
	switch {
	case size == 0:
		result.Reason = "Empty image"
	case c.maxBytes > 0 && size > c.maxBytes:
		result.Reason = fmt.Sprintf("Image is %d bytes, limit is %d", size, c.maxBytes)
	default:
		result.Passed = true
		result.Reason = fmt.Sprintf("%d bytes", size)
	}

	result.Duration = time.Since(now)
	return result
}
