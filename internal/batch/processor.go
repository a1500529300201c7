package batch

import (
	"context"
	"sync"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/rs/zerolog"
)

// ChallanExecutor runs the pipeline for one image.
type ChallanExecutor interface {
	Execute(ctx context.Context, img models.Image) (models.ChallanResult, error)
}

type Result struct {
	Index  int
	Path   string
	Result models.ChallanResult
	Error  error
}

type Processor struct {
	executor ChallanExecutor
	workers  int
	logger   *zerolog.Logger
}

func NewProcessor(executor ChallanExecutor, workers int, logger *zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		executor: executor,
		workers:  workers,
		logger:   logger,
	}
}

// Process fans records out to the worker pool. Results arrive in completion
// order; records that failed to read are passed through as failures.
func (p *Processor) Process(ctx context.Context, records []InputRecord) <-chan Result {
	jobs := make(chan InputRecord)
	results := make(chan Result, p.workers)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for record := range jobs {
				results <- p.processOne(ctx, worker, record)
			}
		}(w)
	}

	go func() {
		defer close(jobs)
		for _, record := range records {
			select {
			case jobs <- record:
			case <-ctx.Done():
				p.logger.Warn().Msg("batch cancelled, not scheduling remaining images")
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

func (p *Processor) processOne(ctx context.Context, worker int, record InputRecord) Result {
	res := Result{Index: record.Index, Path: record.Path}
	if record.Error != nil {
		res.Error = record.Error
		return res
	}

	out, err := p.executor.Execute(ctx, record.Image)
	res.Result = out
	res.Error = err

	if err != nil {
		p.logger.Error().
			Err(err).
			Int("worker", worker).
			Str("file", record.Path).
			Msg("challan pipeline failed")
	}
	return res
}
