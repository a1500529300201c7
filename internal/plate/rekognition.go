package plate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/rs/zerolog"
)

// TextDetector is the Rekognition call used for OCR.
type TextDetector interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// RekognitionExtractor reads plate text with AWS Rekognition. Every LINE
// detection above the confidence threshold is kept, in reading order, and
// joined with single spaces. An optional pattern narrows the lines to those
// that look like plates.
type RekognitionExtractor struct {
	client        TextDetector
	minConfidence float64
	pattern       *regexp.Regexp
	logger        *zerolog.Logger
}

// NewRekognitionExtractor builds an extractor. minConfidence is a fraction
// in [0, 1]; pattern may be empty.
func NewRekognitionExtractor(client TextDetector, minConfidence float64, pattern string, logger *zerolog.Logger) (*RekognitionExtractor, error) {
	if client == nil {
		return nil, fmt.Errorf("rekognition client is required")
	}

	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid plate pattern: %w", err)
		}
	}

	return &RekognitionExtractor{
		client:        client,
		minConfidence: minConfidence,
		pattern:       re,
		logger:        logger,
	}, nil
}

// ExtractPlate returns the plate text, or "" when nothing usable was read.
func (e *RekognitionExtractor) ExtractPlate(ctx context.Context, img models.Image) (string, error) {
	result, err := e.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: img.Data},
	})
	if err != nil {
		return "", fmt.Errorf("rekognition detect text: %w", err)
	}

	threshold := float32(e.minConfidence * 100)

	var lines []string
	for _, detection := range result.TextDetections {
		if detection.Type != types.TextTypesLine || detection.DetectedText == nil || detection.Confidence == nil {
			continue
		}
		if *detection.Confidence <= threshold {
			continue
		}

		text := strings.TrimSpace(*detection.DetectedText)
		if text == "" {
			continue
		}
		if e.pattern != nil && !e.pattern.MatchString(compact(text)) {
			e.logger.Debug().
				Str("image", img.Name).
				Str("text", text).
				Msg("OCR line does not match plate pattern")
			continue
		}
		lines = append(lines, text)
	}

	plate := strings.Join(lines, " ")
	e.logger.Debug().
		Str("image", img.Name).
		Int("detections", len(result.TextDetections)).
		Str("plate", plate).
		Msg("Plate text extracted")

	return plate, nil
}

// compact upper-cases text and drops spaces and dots so one pattern covers
// the common ways plates are printed.
func compact(text string) string {
	text = strings.ToUpper(text)
	text = strings.ReplaceAll(text, " ", "")
	return strings.ReplaceAll(text, ".", "")
}
