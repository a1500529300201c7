package aggregator

import (
	"errors"
	"sync"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
	"github.com/rs/zerolog"
)

// Summary describes a finished batch.
type Summary struct {
	Processed       int            `json:"processed"`
	Issued          int            `json:"issued"`
	Failed          int            `json:"failed"`
	Rejected        int            `json:"rejected"`
	WithViolations  int            `json:"with_violations"`
	NoViolations    int            `json:"no_violations"`
	UnreadPlates    int            `json:"unread_plates"`
	ViolationCounts map[string]int `json:"violation_counts"`
	TotalFines      int            `json:"total_fines"`
}

// Aggregator folds per-image outcomes into a Summary. Safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	summary Summary
	logger  *zerolog.Logger
}

func NewAggregator(logger *zerolog.Logger) *Aggregator {
	counts := make(map[string]int, len(violation.Codes()))
	for _, code := range violation.Codes() {
		counts[string(code)] = 0
	}
	return &Aggregator{
		summary: Summary{ViolationCounts: counts},
		logger:  logger,
	}
}

// Add records one image. err is the pipeline error for that image, if any.
func (a *Aggregator) Add(result models.ChallanResult, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.summary.Processed++

	if err != nil {
		if errors.Is(err, executor.ErrImageRejected) {
			a.summary.Rejected++
		} else {
			a.summary.Failed++
		}
		return
	}

	a.summary.Issued++
	if !result.PlateDetected {
		a.summary.UnreadPlates++
	}

	c := result.Citation
	if c.Violations.Empty() {
		a.summary.NoViolations++
	} else {
		a.summary.WithViolations++
	}
	for _, code := range c.Violations {
		a.summary.ViolationCounts[string(code)]++
	}
	a.summary.TotalFines += c.TotalFine
}

// Summary returns a snapshot.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.summary
	out.ViolationCounts = make(map[string]int, len(a.summary.ViolationCounts))
	for k, v := range a.summary.ViolationCounts {
		out.ViolationCounts[k] = v
	}

	a.logger.
		Info().
		Int("processed", out.Processed).
		Int("issued", out.Issued).
		Int("total_fines", out.TotalFines).
		Msg("aggregation complete")
	return out
}
