package prechecks

import (
	"sync"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
)

type StageRunner struct {
	Checkers []Checker
}

func NewStageRunner(checkers []Checker) *StageRunner {
	return &StageRunner{
		Checkers: checkers,
	}
}

// Run executes all checkers concurrently. Results come back in checker order.
func (r *StageRunner) Run(img models.Image) []models.StageResult {
	results := make([]models.StageResult, len(r.Checkers))
	var wg sync.WaitGroup

	for i, checker := range r.Checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			results[i] = c.Check(img)
		}(i, checker)
	}

	wg.Wait()
	return results
}

// Failed returns the results that did not pass.
func Failed(results []models.StageResult) []models.StageResult {
	var failed []models.StageResult
	for _, res := range results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}
