package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/fine"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
)

type fakePipeline struct {
	normalizer *violation.Normalizer
	calculator *fine.Calculator
	err        error
	got        models.Image
}

func newFakePipeline() *fakePipeline {
	return &fakePipeline{
		normalizer: violation.NewDefaultNormalizer(),
		calculator: fine.NewCalculator(fine.DefaultSchedule()),
	}
}

func (f *fakePipeline) Execute(ctx context.Context, img models.Image) (models.ChallanResult, error) {
	f.got = img
	if f.err != nil {
		return models.ChallanResult{}, f.err
	}
	set := violation.Set{violation.TripleRiding}
	return models.ChallanResult{
		Image:             img.Name,
		Analysis:          violation.LabelOutput([]string{"person", "person", "person"}),
		DisplayViolations: violation.DisplayNames(set),
		Citation:          models.NewCitation("id-1", "", set, 700, time.Unix(0, 0).UTC()),
		Stages:            []models.StageResult{},
	}, nil
}

func (f *fakePipeline) Assess(out violation.ClassifierOutput) models.Assessment {
	set := f.normalizer.Normalize(out)
	return models.Assessment{Violations: set, Display: violation.DisplayNames(set), TotalFine: f.calculator.Total(set)}
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bike.png")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIssueChallan(t *testing.T) {
	pipeline := newFakePipeline()
	path := writeImage(t)

	_, result, err := IssueChallan(context.Background(), pipeline, nil, IssueChallanInput{ImagePath: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pipeline.got.Name != "bike.png" || len(pipeline.got.Data) != 8 {
		t.Errorf("pipeline received %q (%d bytes)", pipeline.got.Name, len(pipeline.got.Data))
	}
	if result.Citation.PlateText != models.PlatePlaceholder {
		t.Errorf("PlateText = %q, want placeholder", result.Citation.PlateText)
	}
}

func TestIssueChallan_Errors(t *testing.T) {
	pipelineErr := errors.New("bedrock throttled")

	tests := []struct {
		name    string
		path    string
		execErr error
		wantErr error
	}{
		{name: "missing path", wantErr: ErrMissingPath},
		{name: "unreadable file", path: filepath.Join(t.TempDir(), "missing.jpg"), wantErr: os.ErrNotExist},
		{name: "pipeline failure", path: writeImage(t), execErr: pipelineErr, wantErr: pipelineErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := newFakePipeline()
			pipeline.err = tt.execErr

			_, _, err := IssueChallan(context.Background(), pipeline, nil, IssueChallanInput{ImagePath: tt.path})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeViolations(t *testing.T) {
	text := "The rider is not wearing a helmet"

	tests := []struct {
		name      string
		input     NormalizeInput
		wantErr   error
		wantCodes violation.Set
		wantTotal int
	}{
		{name: "text", input: NormalizeInput{Text: &text}, wantCodes: violation.Set{violation.NoHelmet}, wantTotal: 500},
		{
			name:      "labels",
			input:     NormalizeInput{Labels: []string{"person", "person", "person", "helmet", "seatbelt"}},
			wantCodes: violation.Set{violation.TripleRiding},
			wantTotal: 700,
		},
		{name: "both", input: NormalizeInput{Text: &text, Labels: []string{"person"}}, wantErr: ErrAmbiguousOutput},
		{name: "neither", input: NormalizeInput{}, wantErr: ErrAmbiguousOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := NormalizeViolations(context.Background(), newFakePipeline(), nil, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(got.Violations) != len(tt.wantCodes) {
				t.Fatalf("violations = %v, want %v", got.Violations, tt.wantCodes)
			}
			for i := range tt.wantCodes {
				if got.Violations[i] != tt.wantCodes[i] {
					t.Errorf("violations = %v, want %v", got.Violations, tt.wantCodes)
				}
			}
			if got.TotalFine != tt.wantTotal {
				t.Errorf("TotalFine = %d, want %d", got.TotalFine, tt.wantTotal)
			}
		})
	}
}

func connect(t *testing.T, pipeline Pipeline) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "challan-agent", Version: "test"}, nil)
	RegisterTools(server, pipeline)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestRegisterTools_OverTransport(t *testing.T) {
	session := connect(t, newFakePipeline())
	ctx := context.Background()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "normalize_violations",
		Arguments: map[string]any{"text": "no seatbelt on the driver"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool returned error: %+v", res.Content)
	}

	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatal(err)
	}
	var got models.Assessment
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode structured content: %v", err)
	}
	if got.TotalFine != 300 || len(got.Violations) != 1 || got.Violations[0] != violation.NoSeatbelt {
		t.Errorf("unexpected assessment %+v", got)
	}

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "issue_challan",
		Arguments: map[string]any{"image_path": writeImage(t)},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool returned error: %+v", res.Content)
	}
}

func TestRegisterTools_ToolError(t *testing.T) {
	session := connect(t, newFakePipeline())

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "issue_challan",
		Arguments: map[string]any{"image_path": filepath.Join(t.TempDir(), "nope.jpg")},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Error("expected IsError for unreadable image")
	}
}
