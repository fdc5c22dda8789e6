package resultshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"resultados/internal/domain/results"
	"resultados/internal/transport/http/api"
	"resultados/internal/transport/http/middleware"
	"resultados/internal/transport/http/shared"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// ExportRecorder counts exports served. The metrics collector implements it.
type ExportRecorder interface {
	ExportServed(format string)
}

type Handler struct {
	Results *results.Service
	Exports ExportRecorder
}

func NewHandler(svc *results.Service, exports ExportRecorder) *Handler {
	return &Handler{Results: svc, Exports: exports}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/results", func(r chi.Router) {
		r.Get("/", h.handleView)
		r.Get("/records", h.handleRecords)
		r.Get("/options", h.handleOptions)
		r.Get("/timeline", h.handleTimeline)
		r.Get("/export/{format}", h.handleExport)
	})
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	sel := shared.ParseSelection(r, v)
	if v.Reject(w, requestID) {
		return
	}
	view, err := h.Results.View(sel)
	if err != nil {
		shared.FailDataset(w, err, requestID)
		return
	}
	api.Success(w, view, requestID)
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	records, err := h.Results.Records()
	if err != nil {
		shared.FailDataset(w, err, requestID)
		return
	}
	page := shared.ParsePagination(r, defaultPageSize, maxPageSize)
	start, end := page.Window(len(records))
	shared.SetTotal(w, len(records))
	api.Success(w, records[start:end], requestID)
}

func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	records, err := h.Results.Records()
	if err != nil {
		shared.FailDataset(w, err, requestID)
		return
	}
	sel := results.Selection{Sector: r.URL.Query().Get("sector")}.Normalize()
	api.Success(w, results.BuildOptions(records, sel), requestID)
}

type timelineResponse struct {
	Name     string              `json:"name"`
	Timeline []results.Record    `json:"timeline"`
	Chart    results.ChartSeries `json:"chart"`
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	name := r.URL.Query().Get("name")
	v.Required("name", name, "is required")
	if v.Reject(w, requestID) {
		return
	}
	records, err := h.Results.Records()
	if err != nil {
		shared.FailDataset(w, err, requestID)
		return
	}
	timeline := results.Timeline(records, name)
	if timeline == nil {
		timeline = []results.Record{}
	}
	api.Success(w, timelineResponse{
		Name:     name,
		Timeline: timeline,
		Chart:    results.Chart(timeline),
	}, requestID)
}

// handleExport renders the rows currently matching the query filters.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	format, ok := shared.ParseFormat(w, chi.URLParam(r, "format"), requestID)
	if !ok {
		return
	}
	v := shared.NewValidator()
	sel := shared.ParseSelection(r, v)
	if v.Reject(w, requestID) {
		return
	}
	view, err := h.Results.View(sel)
	if err != nil {
		shared.FailDataset(w, err, requestID)
		return
	}
	if shared.WriteExport(w, format, view.Records(), requestID) && h.Exports != nil {
		h.Exports.ExportServed(string(format))
	}
}
