package models

import (
	"time"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
)

// PlatePlaceholder stands in for a plate the OCR step could not read.
const PlatePlaceholder = "UNKNOWN"

// Image is one vehicle photo as received from an upload, a directory or a job.
type Image struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// Citation is the issued challan. It is created once and never modified.
type Citation struct {
	ID          string        `json:"id"`
	PlateText   string        `json:"plate_text"`
	Violations  violation.Set `json:"violations"`
	TotalFine   int           `json:"total_fine"`
	GeneratedAt time.Time     `json:"generated_at"`
}

func NewCitation(id, plateText string, violations violation.Set, totalFine int, generatedAt time.Time) Citation {
	if plateText == "" {
		plateText = PlatePlaceholder
	}
	codes := make(violation.Set, len(violations))
	copy(codes, violations)

	return Citation{
		ID:          id,
		PlateText:   plateText,
		Violations:  codes,
		TotalFine:   totalFine,
		GeneratedAt: generatedAt,
	}
}

// One pipeline stage or intake check
type StageResult struct {
	Name     string        `json:"name"`
	Passed   bool          `json:"passed"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// ChallanResult is the full outcome of processing one image.
type ChallanResult struct {
	Image             string                     `json:"image"`
	Citation          Citation                   `json:"citation"`
	PlateDetected     bool                       `json:"plate_detected"`
	Analysis          violation.ClassifierOutput `json:"analysis"`
	DisplayViolations []string                   `json:"display_violations"`
	DocumentLocation  string                     `json:"document_location,omitempty"`
	Stages            []StageResult              `json:"stages"`
}

// Assessment is the normalized reading of one classifier output.
type Assessment struct {
	Violations violation.Set `json:"violations"`
	Display    []string      `json:"display"`
	TotalFine  int           `json:"total_fine"`
}

// ChallanJob is the message published to the work stream.
type ChallanJob struct {
	JobID     string `json:"job_id"`
	ImagePath string `json:"image_path"`
}
