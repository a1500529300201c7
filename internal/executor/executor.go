package executor

//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/fine"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
	"github.com/rs/zerolog"
)

// PrecheckRunner runs the image intake checks
type PrecheckRunner interface {
	Run(img models.Image) []models.StageResult
}

// PlateExtractor reads the licence plate; "" means nothing was readable
type PlateExtractor interface {
	ExtractPlate(ctx context.Context, img models.Image) (string, error)
}

// ViolationAnalyzer produces raw classifier output for an image
type ViolationAnalyzer interface {
	Analyze(ctx context.Context, img models.Image, plateText string) (violation.ClassifierOutput, error)
}

// Formatter renders a citation into a document
type Formatter interface {
	Render(c models.Citation) ([]byte, error)
}

// DocumentStore persists rendered documents and returns where they went
type DocumentStore interface {
	Save(ctx context.Context, id string, document []byte) (string, error)
}

type IDGenerator interface {
	NewID() string
}

var ErrImageRejected = errors.New("image rejected")

type Executor struct {
	prechecks  PrecheckRunner
	plates     PlateExtractor
	analyzer   ViolationAnalyzer
	normalizer *violation.Normalizer
	calculator *fine.Calculator
	formatter  Formatter
	store      DocumentStore
	ids        IDGenerator
	now        func() time.Time
	logger     *zerolog.Logger
}

func NewExecutor(
	prechecks PrecheckRunner,
	plates PlateExtractor,
	analyzer ViolationAnalyzer,
	normalizer *violation.Normalizer,
	calculator *fine.Calculator,
	formatter Formatter,
	store DocumentStore,
	ids IDGenerator,
	logger *zerolog.Logger,
) *Executor {
	return &Executor{
		prechecks:  prechecks,
		plates:     plates,
		analyzer:   analyzer,
		normalizer: normalizer,
		calculator: calculator,
		formatter:  formatter,
		store:      store,
		ids:        ids,
		now:        time.Now,
		logger:     logger,
	}
}

// Execute runs one image through the whole pipeline and issues a challan.
// Every image gets a citation, including those with no violations.
func (e *Executor) Execute(ctx context.Context, img models.Image) (models.ChallanResult, error) {
	result := models.ChallanResult{
		Image:  img.Name,
		Stages: []models.StageResult{},
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	e.logger.Info().Str("image", img.Name).Msg("starting challan pipeline")

	if e.prechecks != nil {
		checks := e.prechecks.Run(img)
		result.Stages = append(result.Stages, checks...)

		var reasons []string
		for _, check := range checks {
			if !check.Passed {
				reasons = append(reasons, fmt.Sprintf("%s: %s", check.Name, check.Reason))
			}
		}
		if len(reasons) > 0 {
			e.logger.Info().
				Str("image", img.Name).
				Strs("reasons", reasons).
				Msg("image rejected by prechecks")
			return result, fmt.Errorf("%w: %s", ErrImageRejected, strings.Join(reasons, "; "))
		}
	}

	start := time.Now()
	plateText, err := e.plates.ExtractPlate(ctx, img)
	if err != nil {
		return result, fmt.Errorf("plate extraction: %w", err)
	}
	result.PlateDetected = plateText != ""
	result.Stages = append(result.Stages, passed("plate-extraction", plateText, start))

	start = time.Now()
	analysis, err := e.analyzer.Analyze(ctx, img, plateText)
	if err != nil {
		return result, fmt.Errorf("violation analysis: %w", err)
	}
	result.Analysis = analysis
	result.Stages = append(result.Stages, passed("violation-analysis", string(analysis.Kind), start))

	start = time.Now()
	violations := e.normalizer.Normalize(analysis)
	total := e.calculator.Total(violations)
	result.DisplayViolations = violation.DisplayNames(violations)
	result.Stages = append(result.Stages, passed("assessment", strings.Join(result.DisplayViolations, ", "), start))

	citation := models.NewCitation(e.ids.NewID(), plateText, violations, total, e.now())
	result.Citation = citation

	start = time.Now()
	document, err := e.formatter.Render(citation)
	if err != nil {
		return result, fmt.Errorf("citation rendering: %w", err)
	}
	result.Stages = append(result.Stages, passed("citation-rendering", "", start))

	if e.store != nil {
		start = time.Now()
		location, err := e.store.Save(ctx, citation.ID, document)
		if err != nil {
			return result, fmt.Errorf("citation storage: %w", err)
		}
		result.DocumentLocation = location
		result.Stages = append(result.Stages, passed("citation-storage", location, start))
	}

	e.logger.Info().
		Str("image", img.Name).
		Str("challan_id", citation.ID).
		Str("plate", citation.PlateText).
		Strs("violations", result.DisplayViolations).
		Int("total_fine", citation.TotalFine).
		Msg("challan issued")

	return result, nil
}

// Assess normalizes a classifier output and prices it without issuing a
// citation.
func (e *Executor) Assess(out violation.ClassifierOutput) models.Assessment {
	violations := e.normalizer.Normalize(out)
	return models.Assessment{
		Violations: violations,
		Display:    violation.DisplayNames(violations),
		TotalFine:  e.calculator.Total(violations),
	}
}

func passed(name, reason string, start time.Time) models.StageResult {
	return models.StageResult{
		Name:     name,
		Passed:   true,
		Reason:   reason,
		Duration: time.Since(start),
	}
}
