package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"finsight/internal/analytics"
	apierrors "finsight/internal/errors"
	"finsight/internal/workflow"
)

// statementFormField is the multipart form field carrying the statement.
const statementFormField = "statement"

// AnalysisHandler serves statement analysis requests.
type AnalysisHandler struct {
	service        AnalysisServiceInterface
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewAnalysisHandler creates an analysis handler.
func NewAnalysisHandler(service AnalysisServiceInterface, logger *slog.Logger, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "analysis_handler")),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the analysis routes.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.RunDashboard)
	r.Post("/summary", h.Summarize)
	r.Post("/metrics/{metric}", h.AnalyzeMetric)

	return r
}

// DashboardResponse wraps a completed dashboard run.
type DashboardResponse struct {
	Success   bool               `json:"success"`
	Dashboard workflow.Dashboard `json:"dashboard"`
	Report    *workflow.Report   `json:"report"`
}

// Render implements render.Renderer.
func (*DashboardResponse) Render(http.ResponseWriter, *http.Request) error { return nil }

// RunDashboard executes the full analysis workflow over an uploaded
// statement and returns the assembled dashboard.
func (h *AnalysisHandler) RunDashboard(w http.ResponseWriter, r *http.Request) {
	file, name, apiErr := h.statementFile(w, r)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	defer file.Close()

	state, report := h.service.RunDashboard(r.Context(), name, file)
	if state.ErrorMessage != "" {
		h.renderError(w, r, apierrors.AnalysisError(state.ErrorMessage))
		return
	}

	render.Render(w, r, &DashboardResponse{Success: true, Dashboard: state.Dashboard, Report: report})
}

// Summarize returns the lightweight overview for an uploaded statement.
func (h *AnalysisHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	file, name, apiErr := h.statementFile(w, r)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	defer file.Close()

	summary, err := h.service.Summarize(r.Context(), name, file)
	if err != nil {
		h.renderError(w, r, apierrors.StatementError(err))
		return
	}
	render.Respond(w, r, summary)
}

// AnalyzeMetric returns the focused analysis for one metric.
func (h *AnalysisHandler) AnalyzeMetric(w http.ResponseWriter, r *http.Request) {
	metricName := chi.URLParam(r, "metric")

	file, name, apiErr := h.statementFile(w, r)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	defer file.Close()

	detail, err := h.service.AnalyzeMetric(r.Context(), name, file, metricName)
	if err != nil {
		var invalid *analytics.InvalidMetricError
		if errors.As(err, &invalid) {
			h.renderError(w, r, apierrors.UnknownMetricError(metricName))
			return
		}
		h.renderError(w, r, apierrors.StatementError(err))
		return
	}
	render.Respond(w, r, detail)
}

// statementFile extracts the uploaded statement from the multipart form.
func (h *AnalysisHandler) statementFile(w http.ResponseWriter, r *http.Request) (multipart.File, string, *apierrors.APIError) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, "", apierrors.InvalidRequestWithError(fmt.Errorf("parsing multipart form: %w", err))
	}

	file, header, err := r.FormFile(statementFormField)
	if err != nil {
		return nil, "", apierrors.InvalidRequestWithError(fmt.Errorf("missing %q form file: %w", statementFormField, err))
	}
	return file, header.Filename, nil
}

func (h *AnalysisHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	h.logger.WarnContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", apiErr.StatusCode),
		slog.String("error_code", apiErr.ErrorCode))
	render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}
