package prechecks

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
)

// DimensionChecker reads only the image header and rejects images too small
// to show a plate or a rider.
type DimensionChecker struct {
	minEdge int
}

func NewDimensionChecker(minEdge int) *DimensionChecker {
	return &DimensionChecker{minEdge: minEdge}
}

func (c *DimensionChecker) Check(img models.Image) models.StageResult {
	now := time.Now()
	result := models.StageResult{
		Name: "dimension-checker",
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		result.Reason = "Unreadable image header"
		result.Duration = time.Since(now)
		return result
	}

	if cfg.Width < c.minEdge || cfg.Height < c.minEdge {
		result.Reason = fmt.Sprintf("Image is %dx%d, minimum edge is %d", cfg.Width, cfg.Height, c.minEdge)
		result.Duration = time.Since(now)
		return result
	}

	result.Passed = true
	result.Reason = fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
	result.Duration = time.Since(now)
	return result
}
