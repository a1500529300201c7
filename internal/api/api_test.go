package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/api"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/citation"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/fine"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
	"github.com/rs/zerolog"
)

type fakeService struct {
	normalizer *violation.Normalizer
	calculator *fine.Calculator
	err        error
	gotImage   models.Image
}

func newFakeService() *fakeService {
	return &fakeService{
		normalizer: violation.NewDefaultNormalizer(),
		calculator: fine.NewCalculator(fine.DefaultSchedule()),
	}
}

func (f *fakeService) Execute(ctx context.Context, img models.Image) (models.ChallanResult, error) {
	f.gotImage = img
	if f.err != nil {
		return models.ChallanResult{Image: img.Name}, f.err
	}
	set := violation.Set{violation.NoHelmet}
	return models.ChallanResult{
		Image:             img.Name,
		PlateDetected:     true,
		Analysis:          violation.TextOutput("rider with no helmet"),
		DisplayViolations: violation.DisplayNames(set),
		Citation:          models.NewCitation("8d7e3c1a-1111-4222-8333-944455556666", "KA01AB1234", set, 500, time.Now()),
	}, nil
}

func (f *fakeService) Assess(out violation.ClassifierOutput) models.Assessment {
	set := f.normalizer.Normalize(out)
	return models.Assessment{Violations: set, Display: violation.DisplayNames(set), TotalFine: f.calculator.Total(set)}
}

type fakeDocuments map[string][]byte

func (f fakeDocuments) Load(ctx context.Context, id string) ([]byte, error) {
	doc, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", citation.ErrNotFound, id)
	}
	return doc, nil
}

func setupTestAPI(t *testing.T, service api.ChallanService, docs api.DocumentLoader) *restful.Container {
	t.Helper()
	logger := zerolog.Nop()

	handler := api.NewHandler(service, docs, 1<<20, "Rs.", &logger)
	container := restful.NewContainer()
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)
	api.RegisterOpenAPI(container)
	return container
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestAPI_Health(t *testing.T) {
	container := setupTestAPI(t, newFakeService(), fakeDocuments{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", recorder.Code)
	}

	var response api.HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Expected status 'ok', got '%s'", response.Status)
	}
}

func TestAPI_IssueChallan(t *testing.T) {
	service := newFakeService()
	container := setupTestAPI(t, service, fakeDocuments{})

	body, contentType := multipartBody(t, "image", "bike.jpg", []byte{0xff, 0xd8, 0xff})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/challans", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var result models.ChallanResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if result.Citation.TotalFine != 500 || result.Citation.PlateText != "KA01AB1234" {
		t.Errorf("unexpected citation %+v", result.Citation)
	}
	if service.gotImage.Name != "bike.jpg" || len(service.gotImage.Data) != 3 {
		t.Errorf("upload not forwarded: %+v", service.gotImage)
	}
}

func TestAPI_IssueChallan_Errors(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		serviceErr error
		wantStatus int
	}{
		{name: "missing image field", field: "photo", wantStatus: http.StatusBadRequest},
		{name: "rejected image", field: "image", serviceErr: fmt.Errorf("%w: format-checker", executor.ErrImageRejected), wantStatus: http.StatusUnprocessableEntity},
		{name: "upstream failure", field: "image", serviceErr: errors.New("plate extraction: AccessDenied"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newFakeService()
			service.err = tt.serviceErr
			container := setupTestAPI(t, service, fakeDocuments{})

			body, contentType := multipartBody(t, tt.field, "x.jpg", []byte("x"))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/challans", body)
			req.Header.Set("Content-Type", contentType)
			recorder := httptest.NewRecorder()
			container.ServeHTTP(recorder, req)

			if recorder.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, recorder.Code, recorder.Body.String())
			}

			var errResp middleware.ErrorResponse
			if err := json.Unmarshal(recorder.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("Failed to parse error response: %v", err)
			}
			if errResp.Code != tt.wantStatus || errResp.Message == "" {
				t.Errorf("unexpected error body %+v", errResp)
			}
		})
	}
}

func TestAPI_DownloadChallan(t *testing.T) {
	id := uuid.NewString()
	container := setupTestAPI(t, newFakeService(), fakeDocuments{id: []byte("%PDF-1.3 doc")})

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{name: "found", id: id, wantStatus: http.StatusOK},
		{name: "unknown", id: uuid.NewString(), wantStatus: http.StatusNotFound},
		{name: "not a uuid", id: "abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/challans/"+tt.id+"/pdf", nil)
			recorder := httptest.NewRecorder()
			container.ServeHTTP(recorder, req)

			if recorder.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, recorder.Code, recorder.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := recorder.Header().Get("Content-Type"); ct != "application/pdf" {
				t.Errorf("Content-Type = %q", ct)
			}
			if !strings.Contains(recorder.Header().Get("Content-Disposition"), "challan_"+id+".pdf") {
				t.Errorf("Content-Disposition = %q", recorder.Header().Get("Content-Disposition"))
			}
			if recorder.Body.String() != "%PDF-1.3 doc" {
				t.Errorf("body = %q", recorder.Body.String())
			}
		})
	}
}

func TestAPI_Normalize(t *testing.T) {
	container := setupTestAPI(t, newFakeService(), fakeDocuments{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCodes  []violation.Code
		wantTotal  int
	}{
		{
			name:       "text",
			body:       `{"text":"Rider without helmet; triple riding observed"}`,
			wantStatus: http.StatusOK,
			wantCodes:  []violation.Code{violation.NoHelmet, violation.TripleRiding},
			wantTotal:  1200,
		},
		{
			name:       "labels",
			body:       `{"labels":["person","helmet"]}`,
			wantStatus: http.StatusOK,
			wantCodes:  []violation.Code{violation.NoSeatbelt},
			wantTotal:  300,
		},
		{
			name:       "empty text",
			body:       `{"text":""}`,
			wantStatus: http.StatusOK,
			wantCodes:  []violation.Code{},
			wantTotal:  0,
		},
		{name: "both", body: `{"text":"x","labels":["person"]}`, wantStatus: http.StatusBadRequest},
		{name: "neither", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{"text":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/violations/normalize", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()
			container.ServeHTTP(recorder, req)

			if recorder.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, recorder.Code, recorder.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var got models.Assessment
			if err := json.Unmarshal(recorder.Body.Bytes(), &got); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
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

func TestAPI_UploadForm(t *testing.T) {
	container := setupTestAPI(t, newFakeService(), fakeDocuments{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `enctype="multipart/form-data"`) {
		t.Error("form page missing upload form")
	}
}

func TestAPI_SubmitForm(t *testing.T) {
	container := setupTestAPI(t, newFakeService(), fakeDocuments{})

	body, contentType := multipartBody(t, "image", "bike.jpg", []byte{0xff, 0xd8})
	req := httptest.NewRequest(http.MethodPost, "/form", body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	page := recorder.Body.String()
	for _, want := range []string{
		"KA01AB1234",
		"rider with no helmet",
		"<li>No Helmet</li>",
		"Rs. 500",
		"/api/v1/challans/8d7e3c1a-1111-4222-8333-944455556666/pdf",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("result page missing %q", want)
		}
	}
}

func TestAPI_OpenAPI(t *testing.T) {
	container := setupTestAPI(t, newFakeService(), fakeDocuments{})

	req := httptest.NewRequest(http.MethodGet, "/apidocs.json", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "/api/v1/violations/normalize") {
		t.Error("OpenAPI document missing normalize route")
	}
}
