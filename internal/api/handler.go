package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/citation"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
	"github.com/rs/zerolog"
)

const Version = "1.0.0"

type Handler struct {
	service   ChallanService
	documents DocumentLoader
	maxUpload int64
	currency  string
	logger    *zerolog.Logger
}

func NewHandler(service ChallanService, documents DocumentLoader, maxUpload int64, currency string, logger *zerolog.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Handler{
		service:   service,
		documents: documents,
		maxUpload: maxUpload,
		currency:  currency,
		logger:    logger,
	}
}

// Health handler GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// POST /api/v1/challans
// Body: multipart form with an "image" file
// Returns: ChallanResult
func (h *Handler) IssueChallan(req *restful.Request, resp *restful.Response) {
	img, err := h.readUpload(req.Request)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read upload")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("image", img.Name).
		Int("bytes", len(img.Data)).
		Msg("Start challan pipeline")

	result, err := h.service.Execute(req.Request.Context(), img)
	if err != nil {
		h.logger.Error().Err(err).Str("image", img.Name).Msg("Challan pipeline failed")
		middleware.HandleError(resp, err, statusFor(err))
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /api/v1/challans/{challan_id}/pdf
func (h *Handler) DownloadChallan(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("challan_id")
	if _, err := uuid.Parse(id); err != nil {
		middleware.HandleError(resp, fmt.Errorf("%w: %s", middleware.ErrInvalidID, id), http.StatusBadRequest)
		return
	}

	document, err := h.documents.Load(req.Request.Context(), id)
	if errors.Is(err, citation.ErrNotFound) {
		middleware.HandleError(resp, err, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("challan_id", id).Msg("Failed to load challan")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.Header().Set("Content-Type", citation.ContentType)
	resp.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", citation.FileName(id)))
	resp.WriteHeader(http.StatusOK)
	if _, err := resp.Write(document); err != nil {
		h.logger.Error().Err(err).Str("challan_id", id).Msg("Failed to write challan")
	}
}

// POST /api/v1/violations/normalize
// Body: NormalizeRequest
// Returns: Assessment
func (h *Handler) Normalize(req *restful.Request, resp *restful.Response) {
	var body NormalizeRequest
	if err := req.ReadEntity(&body); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	out, err := body.classifierOutput()
	if err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	assessment := h.service.Assess(out)
	h.logger.Info().
		Str("kind", string(out.Kind)).
		Strs("violations", assessment.Display).
		Int("total_fine", assessment.TotalFine).
		Msg("Classifier output normalized")

	resp.WriteHeaderAndEntity(http.StatusOK, assessment)
}

func (r NormalizeRequest) classifierOutput() (violation.ClassifierOutput, error) {
	switch {
	case r.Text != nil && r.Labels == nil:
		return violation.TextOutput(*r.Text), nil
	case r.Text == nil && r.Labels != nil:
		return violation.LabelOutput(r.Labels), nil
	default:
		return violation.ClassifierOutput{}, middleware.ErrAmbiguousOutput
	}
}

func (h *Handler) readUpload(r *http.Request) (models.Image, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, h.maxUpload+(1<<20))
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return models.Image{}, fmt.Errorf("failed to parse form: %w", err)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return models.Image{}, middleware.ErrMissingImage
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to read image: %w", err)
	}

	return models.Image{Name: header.Filename, Data: data}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, executor.ErrImageRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusBadGateway
	}
}
