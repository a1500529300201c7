package api

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
)

const MIME_HTML = "text/html"

var pages = template.Must(template.New("upload").Funcs(template.FuncMap{"analysis": analysisText}).Parse(`<!DOCTYPE html>
<html>
<head><title>Traffic Violation Challan</title></head>
<body>
<h1>Traffic Violation Challan</h1>
{{if .Error}}<p style="color:#c00">{{.Error}}</p>{{end}}
<form action="/form" method="post" enctype="multipart/form-data">
  <input type="file" name="image" accept="image/jpeg,image/png" required>
  <button type="submit">Generate Challan</button>
</form>
{{with .Result}}
<h2>Result</h2>
<p><strong>Vehicle Number:</strong> {{.Citation.PlateText}}</p>
<p><strong>Analysis:</strong> {{analysis .Analysis}}</p>
<p><strong>Violations Detected:</strong></p>
<ul>{{range .DisplayViolations}}<li>{{.}}</li>{{end}}</ul>
<p><strong>Total Fine:</strong> {{$.Currency}} {{.Citation.TotalFine}}</p>
<p><a href="/api/v1/challans/{{.Citation.ID}}/pdf">Download Challan</a></p>
{{end}}
</body>
</html>
`))

type pageData struct {
	Error    string
	Result   *models.ChallanResult
	Currency string
}

func analysisText(out violation.ClassifierOutput) string {
	if out.Kind == violation.KindLabels {
		return strings.Join(out.Labels, ", ")
	}
	return out.Text
}

// GET /
func (h *Handler) UploadForm(req *restful.Request, resp *restful.Response) {
	h.renderPage(resp, http.StatusOK, pageData{})
}

// POST /form
func (h *Handler) SubmitForm(req *restful.Request, resp *restful.Response) {
	img, err := h.readUpload(req.Request)
	if err != nil {
		h.renderPage(resp, http.StatusBadRequest, pageData{Error: err.Error()})
		return
	}

	result, err := h.service.Execute(req.Request.Context(), img)
	if err != nil {
		h.logger.Error().Err(err).Str("image", img.Name).Msg("Challan pipeline failed")
		h.renderPage(resp, statusFor(err), pageData{Error: err.Error()})
		return
	}

	h.renderPage(resp, http.StatusOK, pageData{Result: &result})
}

func (h *Handler) renderPage(resp *restful.Response, status int, data pageData) {
	if data.Currency == "" {
		data.Currency = h.currency
	}
	resp.Header().Set("Content-Type", MIME_HTML+"; charset=utf-8")
	resp.WriteHeader(status)
	if err := pages.Execute(resp, data); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render page")
	}
}
