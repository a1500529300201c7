package config

import (
	"fmt"
	"os"
	"regexp"
	"text/template"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/fine"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
	"gopkg.in/yaml.v3"
)

const DefaultPrompt = `You are assisting a traffic police officer reviewing a roadside photo.
The number plate read from the image is: "{{.PlateText}}".
Describe any traffic violations you can see. Look for riders not wearing a helmet,
drivers or passengers without a seatbelt, and more than two riders on a two-wheeler
(triple riding). Use short plain sentences such as "no helmet", "without seatbelt"
or "triple riding". If nobody is breaking these rules, say that all riders are compliant.`

func LoadChallanConfig() (*ChallanConfig, error) {
	path := os.Getenv("CHALLAN_CONFIG_PATH")
	if path == "" {
		path = "configs/challan.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Decode over the defaults so keys missing from the file keep their
	// default while an explicit zero is kept as written.
	cfg := Default()
	cfg.Fines = nil
	cfg.Phrases = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used when the file sets nothing.
func Default() *ChallanConfig {
	cfg := &ChallanConfig{
		Labels: violation.DefaultLabelPolicy(),
		Plate:  PlateConfig{MinConfidence: 0.4},
		Analyzer: AnalyzerConfig{
			Model:        ModelConfig{MaxTokens: 512},
			MaxImageEdge: 1568,
		},
		Detector: DetectorConfig{MinConfidence: 0.5, IoUThreshold: 0.45},
		Intake:   IntakeConfig{MaxBytes: 10 << 20, MinEdge: 64},
	}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills empty strings and collections. Numeric fields are
// never touched here because zero is a valid setting for each of them.
func applyDefaults(cfg *ChallanConfig) {
	if len(cfg.Fines) == 0 {
		cfg.Fines = map[string]int{}
		for code, amount := range fine.DefaultSchedule().Amounts() {
			cfg.Fines[string(code)] = amount
		}
	}
	if len(cfg.Phrases) == 0 {
		cfg.Phrases = violation.DefaultPhraseTable()
	}

	labels := violation.DefaultLabelPolicy()
	if cfg.Labels.PersonLabel == "" {
		cfg.Labels.PersonLabel = labels.PersonLabel
	}
	if cfg.Labels.HelmetLabel == "" {
		cfg.Labels.HelmetLabel = labels.HelmetLabel
	}
	if cfg.Labels.SeatbeltLabel == "" {
		cfg.Labels.SeatbeltLabel = labels.SeatbeltLabel
	}
	if cfg.Analyzer.Prompt == "" {
		cfg.Analyzer.Prompt = DefaultPrompt
	}

	if cfg.Document.Title == "" {
		cfg.Document.Title = "Traffic Violation Challan"
	}
	if cfg.Document.Currency == "" {
		cfg.Document.Currency = "Rs."
	}
	if cfg.Document.Disclaimer == "" {
		cfg.Document.Disclaimer = "Please pay your challan online or at the nearest traffic police station."
	}
}

func (c *ChallanConfig) Validate() error {
	if _, err := fine.ParseSchedule(c.Fines); err != nil {
		return fmt.Errorf("invalid fines: %w", err)
	}

	if err := c.Phrases.Validate(); err != nil {
		return fmt.Errorf("invalid phrases: %w", err)
	}

	if c.Labels.MaxRiders < 0 {
		return fmt.Errorf("invalid labels: negative max_riders %d", c.Labels.MaxRiders)
	}
	if c.Labels.PersonLabel == c.Labels.HelmetLabel ||
		c.Labels.PersonLabel == c.Labels.SeatbeltLabel ||
		c.Labels.HelmetLabel == c.Labels.SeatbeltLabel {
		return fmt.Errorf("invalid labels: person, helmet and seatbelt labels must differ")
	}

	if err := checkFraction("plate.min_confidence", c.Plate.MinConfidence); err != nil {
		return err
	}
	if c.Plate.Pattern != "" {
		if _, err := regexp.Compile(c.Plate.Pattern); err != nil {
			return fmt.Errorf("invalid plate.pattern: %w", err)
		}
	}

	if _, err := template.New("analyzer").Parse(c.Analyzer.Prompt); err != nil {
		return fmt.Errorf("invalid prompt template: %w", err)
	}
	if c.Analyzer.Model.MaxTokens <= 0 {
		return fmt.Errorf("invalid max_tokens %d: must be positive", c.Analyzer.Model.MaxTokens)
	}
	if c.Analyzer.Model.Temperature < 0 || c.Analyzer.Model.Temperature > 1 {
		return fmt.Errorf("invalid temperature %f: must be within [0, 1]", c.Analyzer.Model.Temperature)
	}
	if c.Analyzer.MaxImageEdge < 0 {
		return fmt.Errorf("negative analyzer.max_image_edge %d", c.Analyzer.MaxImageEdge)
	}

	if err := checkFraction("detector.min_confidence", c.Detector.MinConfidence); err != nil {
		return err
	}
	if err := checkFraction("detector.iou_threshold", c.Detector.IoUThreshold); err != nil {
		return err
	}

	if c.Intake.MaxBytes < 0 {
		return fmt.Errorf("negative intake.max_bytes %d", c.Intake.MaxBytes)
	}
	if c.Intake.MinEdge < 0 {
		return fmt.Errorf("negative intake.min_edge %d", c.Intake.MinEdge)
	}

	return nil
}

// Schedule returns the validated fine schedule.
func (c *ChallanConfig) Schedule() (fine.Schedule, error) {
	return fine.ParseSchedule(c.Fines)
}

// Normalizer builds the normalizer for this configuration.
func (c *ChallanConfig) Normalizer() *violation.Normalizer {
	return violation.NewNormalizer(c.Phrases, c.Labels)
}

func checkFraction(name string, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("invalid %s %f: must be within [0, 1]", name, value)
	}
	return nil
}
