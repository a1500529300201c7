package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/aggregator"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
	"github.com/rs/zerolog"
)

const (
	FormatJSONL   = "jsonl"
	FormatSummary = "summary"
)

// Line is one JSONL output record.
type Line struct {
	File       string        `json:"file"`
	ChallanID  string        `json:"challan_id,omitempty"`
	PlateText  string        `json:"plate_text,omitempty"`
	Violations violation.Set `json:"violations,omitempty"`
	Display    []string      `json:"display,omitempty"`
	TotalFine  int           `json:"total_fine"`
	Document   string        `json:"document,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Writer emits one JSON line per result, or a single summary on Close.
type Writer struct {
	w       io.Writer
	format  string
	enc     *json.Encoder
	summary *aggregator.Aggregator
	logger  *zerolog.Logger
}

func NewWriter(w io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	if format != FormatJSONL && format != FormatSummary {
		return nil, fmt.Errorf("unsupported format %q: use %s or %s", format, FormatJSONL, FormatSummary)
	}

	return &Writer{
		w:       w,
		format:  format,
		enc:     json.NewEncoder(w),
		summary: aggregator.NewAggregator(logger),
		logger:  logger,
	}, nil
}

func (w *Writer) Write(res Result) error {
	w.summary.Add(res.Result, res.Error)

	if w.format != FormatJSONL {
		return nil
	}

	line := Line{File: res.Path}
	if res.Error != nil {
		line.Error = res.Error.Error()
	} else {
		c := res.Result.Citation
		line.ChallanID = c.ID
		line.PlateText = c.PlateText
		line.Violations = c.Violations
		line.Display = res.Result.DisplayViolations
		line.TotalFine = c.TotalFine
		line.Document = res.Result.DocumentLocation
	}

	if err := w.enc.Encode(line); err != nil {
		return fmt.Errorf("write result for %s: %w", res.Path, err)
	}
	return nil
}

// Summary returns the running totals.
func (w *Writer) Summary() aggregator.Summary {
	return w.summary.Summary()
}

// Close flushes the summary in summary format.
func (w *Writer) Close() error {
	if w.format != FormatSummary {
		return nil
	}

	enc := json.NewEncoder(w.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(w.summary.Summary()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
