// Package analyzer holds the violation classifiers. Each one looks at a
// vehicle photo and returns raw classifier output: free text from a vision
// LLM, or one label per detected object from a detector.
package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/povarna/generative-ai-agents/challan-agent/internal/config"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/imaging"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
	"github.com/rs/zerolog"
)

type promptData struct {
	PlateText string
}

// VisionAnalyzer asks a multimodal LLM to describe the violations in a photo.
type VisionAnalyzer struct {
	promptTemplate *template.Template
	modelConfig    config.ModelConfig
	maxImageEdge   int
	llmClient      llm.LLMClient
	logger         *zerolog.Logger
}

func NewVisionAnalyzer(cfg config.AnalyzerConfig, llmClient llm.LLMClient, logger *zerolog.Logger) (*VisionAnalyzer, error) {
	if llmClient == nil {
		return nil, fmt.Errorf("llm client is required")
	}

	tmpl, err := template.New("analyzer").Parse(cfg.Prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse analyzer prompt template: %w", err)
	}

	return &VisionAnalyzer{
		promptTemplate: tmpl,
		modelConfig:    cfg.Model,
		maxImageEdge:   cfg.MaxImageEdge,
		llmClient:      llmClient,
		logger:         logger,
	}, nil
}

func (a *VisionAnalyzer) Analyze(ctx context.Context, img models.Image, plateText string) (violation.ClassifierOutput, error) {
	data, mediaType, err := imaging.Fit(img.Data, a.maxImageEdge)
	if err != nil {
		return violation.ClassifierOutput{}, fmt.Errorf("prepare image: %w", err)
	}

	var buf bytes.Buffer
	if err := a.promptTemplate.Execute(&buf, promptData{PlateText: plateText}); err != nil {
		return violation.ClassifierOutput{}, fmt.Errorf("template execution failed: %w", err)
	}

	request := llm.LLMRequest{
		Prompt:      buf.String(),
		Images:      []llm.Image{{MediaType: mediaType, Data: data}},
		MaxTokens:   a.modelConfig.MaxTokens,
		Temperature: a.modelConfig.Temperature,
	}

	var resp *llm.LLMResponse
	if a.modelConfig.Retry {
		resp, err = a.llmClient.InvokeModelWithRetry(ctx, request)
	} else {
		resp, err = a.llmClient.InvokeModel(ctx, request)
	}
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("image", img.Name).
			Msg("LLM call failed")
		return violation.ClassifierOutput{}, fmt.Errorf("vision model: %w", err)
	}

	text := stripMarkdownCodeBlock(resp.Content)

	a.logger.Debug().
		Str("image", img.Name).
		Str("stop_reason", resp.StopReason).
		Int("chars", len(text)).
		Msg("vision analysis complete")

	return violation.TextOutput(text), nil
}

// stripMarkdownCodeBlock removes a surrounding ``` fence if the model added one.
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "```") {
		return content
	}

	firstNewline := strings.Index(content, "\n")
	if firstNewline == -1 {
		return content
	}

	closing := strings.LastIndex(content, "```")
	if closing <= firstNewline {
		return content
	}

	return strings.TrimSpace(content[firstNewline+1 : closing])
}
