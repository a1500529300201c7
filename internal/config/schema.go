package config

import "github.com/povarna/generative-ai-agents/challan-agent/internal/violation"

// ChallanConfig is the policy file: fines, matching rules and the tunable
// thresholds of every pipeline stage.
type ChallanConfig struct {
	Fines    map[string]int        `yaml:"fines"`
	Phrases  violation.PhraseTable `yaml:"phrases,omitempty"`
	Labels   violation.LabelPolicy `yaml:"labels"`
	Plate    PlateConfig           `yaml:"plate"`
	Analyzer AnalyzerConfig        `yaml:"analyzer"`
	Detector DetectorConfig        `yaml:"detector"`
	Intake   IntakeConfig          `yaml:"intake"`
	Document DocumentConfig        `yaml:"document"`
}

// PlateConfig tunes licence plate OCR.
type PlateConfig struct {
	// MinConfidence is a fraction in [0,1]; text below it is dropped.
	MinConfidence float64 `yaml:"min_confidence"`
	// Pattern optionally restricts which OCR lines count as plate text.
	Pattern string `yaml:"pattern,omitempty"`
}

// AnalyzerConfig drives the vision LLM classifier.
type AnalyzerConfig struct {
	Prompt       string      `yaml:"prompt"`
	Model        ModelConfig `yaml:"model"`
	MaxImageEdge int         `yaml:"max_image_edge"`
}

type ModelConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Retry       bool    `yaml:"retry"`
}

// DetectorConfig tunes the object-detector backends.
type DetectorConfig struct {
	MinConfidence float64 `yaml:"min_confidence"`
	IoUThreshold  float64 `yaml:"iou_threshold"`
}

// IntakeConfig bounds what images are accepted.
type IntakeConfig struct {
	MaxBytes int `yaml:"max_bytes"`
	MinEdge  int `yaml:"min_edge"`
}

type DocumentConfig struct {
	Title      string `yaml:"title"`
	Currency   string `yaml:"currency"`
	Disclaimer string `yaml:"disclaimer"`
}
