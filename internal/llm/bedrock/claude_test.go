package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/llm"
)

type fakeRuntime struct {
	calls   int
	errs    []error
	body    string
	lastReq claudeMessageRequest
}

func (f *fakeRuntime) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.calls++
	_ = json.Unmarshal(params.Body, &f.lastReq)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func newTestClient(rt *fakeRuntime) *Client {
	return &Client{
		Client:       rt,
		ModelID:      "anthropic.claude-test",
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
	}
}

func TestBuildMessageRequest_ImageBeforeText(t *testing.T) {
	req := buildMessageRequest(llm.LLMRequest{
		Prompt:    "describe",
		MaxTokens: 100,
		Images:    []llm.Image{{MediaType: "image/jpeg", Data: []byte{0xff, 0xd8}}},
	})

	if req.AnthropicVersion != "bedrock-2023-05-31" {
		t.Errorf("unexpected anthropic version %q", req.AnthropicVersion)
	}
	blocks := req.Messages[0].Content
	if len(blocks) != 2 {
		t.Fatalf("expected 2 content blocks, got %d", len(blocks))
	}
	if blocks[0].Type != "image" || blocks[0].Source == nil {
		t.Fatalf("expected image block first, got %+v", blocks[0])
	}
	if blocks[0].Source.Data != "/9g=" || blocks[0].Source.MediaType != "image/jpeg" {
		t.Errorf("unexpected image source %+v", blocks[0].Source)
	}
	if blocks[1].Type != "text" || blocks[1].Text != "describe" {
		t.Errorf("unexpected text block %+v", blocks[1])
	}
}

func TestInvokeModel_JoinsTextBlocks(t *testing.T) {
	rt := &fakeRuntime{body: `{"content":[{"type":"text","text":"no helmet"},{"type":"text","text":"triple riding"}],"stop_reason":"end_turn"}`}
	client := newTestClient(rt)

	resp, err := client.InvokeModel(context.Background(), llm.LLMRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("InvokeModel() error = %v", err)
	}
	if resp.Content != "no helmet\ntriple riding" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("StopReason = %q", resp.StopReason)
	}
}

func TestInvokeModelWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantErr   bool
		wantCalls int
	}{
		{
			name:      "succeeds first time",
			wantCalls: 1,
		},
		{
			name:      "retries throttling",
			errs:      []error{errors.New("ThrottlingException: slow down"), nil},
			wantCalls: 2,
		},
		{
			name:      "gives up on validation error",
			errs:      []error{errors.New("ValidationException: bad input")},
			wantErr:   true,
			wantCalls: 1,
		},
		{
			name: "max retries exceeded",
			errs: []error{
				errors.New("ServiceUnavailableException"),
				errors.New("ServiceUnavailableException"),
				errors.New("ServiceUnavailableException"),
			},
			wantErr:   true,
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &fakeRuntime{errs: tt.errs, body: `{"content":[{"type":"text","text":"ok"}]}`}
			client := newTestClient(rt)

			_, err := client.InvokeModelWithRetry(context.Background(), llm.LLMRequest{Prompt: "p"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("InvokeModelWithRetry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if rt.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", rt.calls, tt.wantCalls)
			}
		})
	}
}

func TestCalculateBackoff_Capped(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := calculateBackoff(attempt, 100*time.Millisecond, time.Second)
		if d > 1200*time.Millisecond {
			t.Errorf("attempt %d: backoff %v exceeds cap plus jitter", attempt, d)
		}
		if d <= 0 {
			t.Errorf("attempt %d: backoff %v not positive", attempt, d)
		}
	}
}
