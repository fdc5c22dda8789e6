package datasethandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"resultados/internal/domain/auth"
	"resultados/internal/domain/results"
	"resultados/internal/platform/jobs"
	"resultados/internal/transport/http/api"
	"resultados/internal/transport/http/middleware"
	"resultados/internal/transport/http/shared"
)

type Handler struct {
	Results     *results.Service
	Jobs        *jobs.Service
	AuthEnabled bool
}

func NewHandler(svc *results.Service, jobsSvc *jobs.Service, authEnabled bool) *Handler {
	return &Handler{Results: svc, Jobs: jobsSvc, AuthEnabled: authEnabled}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dataset", func(r chi.Router) {
		r.Get("/", h.handleStatus)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleOperator, h.AuthEnabled))
			r.Post("/reload", h.handleReload)
			r.Post("/import", h.handleImport)
			r.Get("/runs", h.handleRuns)
		})
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Results.Snapshot(), middleware.GetRequestID(r.Context()))
}

type reloadResponse struct {
	Run     jobs.Run        `json:"run"`
	Dataset results.Dataset `json:"dataset"`
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	run, err := h.Jobs.RunNow(r.Context(), jobs.JobDatasetReload, h.ReloadJob())
	if err != nil {
		api.FailWithDetails(w, http.StatusBadGateway, "reload_failed", "dataset source could not be loaded",
			reloadResponse{Run: run, Dataset: h.Results.Snapshot()}, requestID)
		return
	}
	api.Success(w, reloadResponse{Run: run, Dataset: h.Results.Snapshot()}, requestID)
}

// ReloadJob is the dataset_reload job body, shared with the scheduler.
func (h *Handler) ReloadJob() jobs.RunFunc {
	return func(ctx context.Context) (any, error) {
		if err := h.Results.Load(ctx); err != nil {
			return nil, err
		}
		ds := h.Results.Snapshot()
		return map[string]any{"records": ds.Count, "source": ds.Source}, nil
	}
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	ds, err := h.Results.Import(r.Context(), r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large",
				"dataset exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes", requestID)
		case errors.Is(err, results.ErrInvalidDataset):
			api.Fail(w, http.StatusBadRequest, "invalid_dataset", err.Error(), requestID)
		default:
			slog.Error("dataset import failed", "err", err, "requestId", requestID)
			api.Fail(w, http.StatusInternalServerError, "import_failed", "dataset could not be stored", requestID)
		}
		return
	}
	user, _ := middleware.GetUser(r.Context())
	slog.Info("dataset import accepted", "count", ds.Count, "user", user.Username, "requestId", requestID)
	api.Success(w, ds, requestID)
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 20, 50)
	api.Success(w, h.Jobs.Runs(page.Limit), middleware.GetRequestID(r.Context()))
}
