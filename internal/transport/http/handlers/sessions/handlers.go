package sessionshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"resultados/internal/domain/results"
	"resultados/internal/domain/session"
	"resultados/internal/transport/http/api"
	"resultados/internal/transport/http/middleware"
	"resultados/internal/transport/http/shared"
)

// ExportRecorder counts exports served.
type ExportRecorder interface {
	ExportServed(format string)
}

type Handler struct {
	Sessions *session.Manager
	Results  *results.Service
	Exports  ExportRecorder
}

func NewHandler(sessions *session.Manager, svc *results.Service, exports ExportRecorder) *Handler {
	return &Handler{Sessions: sessions, Results: svc, Exports: exports}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleDelete)
			r.Post("/events", h.handleEvent)
			r.Get("/export/{format}", h.handleExport)
		})
	})
}

// sessionResponse carries the session state and, once the dataset is
// available, the view derived from its selection.
type sessionResponse struct {
	ID      string               `json:"id"`
	State   session.State        `json:"state"`
	View    *results.DerivedView `json:"view,omitempty"`
	Dataset results.Dataset      `json:"dataset"`
}

func (h *Handler) respond(id string, state session.State) sessionResponse {
	resp := sessionResponse{ID: id, State: state, Dataset: h.Results.Snapshot()}
	if view, err := h.Results.View(state.Selection); err == nil {
		resp.View = &view
	}
	return resp
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, state := h.Sessions.Create()
	api.Created(w, h.respond(id, state), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")
	state, err := h.Sessions.Get(id)
	if err != nil {
		failSession(w, err, requestID)
		return
	}
	api.Success(w, h.respond(id, state), requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Delete(chi.URLParam(r, "id")); err != nil {
		failSession(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type eventRequest struct {
	Type  string `json:"type"`
	Field string `json:"field"`
	Value string `json:"value"`
	// Row indexes the rows of the session's current view for open_detail.
	Row *int `json:"row"`
}

var eventTypes = []string{
	string(session.EventSelect),
	string(session.EventClear),
	string(session.EventOpenDetail),
	string(session.EventCloseDetail),
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")

	var payload eventRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("type", payload.Type, "is required")
	v.Enum("type", payload.Type, eventTypes, "must be one of "+strings.Join(eventTypes, ", "))
	evType := session.EventType(strings.ToLower(strings.TrimSpace(payload.Type)))
	switch evType {
	case session.EventSelect:
		v.Required("field", payload.Field, "is required")
		v.Enum("field", payload.Field, session.Fields, "must be one of "+strings.Join(session.Fields, ", "))
		v.MaxLen("value", payload.Value, 200)
	case session.EventOpenDetail:
		if payload.Row == nil || *payload.Row < 0 {
			v.Add("row", "must be a non-negative row index")
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	ev := session.Event{Type: evType, Field: payload.Field, Value: payload.Value}
	if evType == session.EventOpenDetail {
		detail, ok := h.detailFor(w, id, *payload.Row, requestID)
		if !ok {
			return
		}
		ev.Detail = &detail
	}

	state, err := h.Sessions.Dispatch(id, ev)
	if err != nil {
		failSession(w, err, requestID)
		return
	}
	api.Success(w, h.respond(id, state), requestID)
}

// detailFor resolves a row of the session's current view into popup content.
func (h *Handler) detailFor(w http.ResponseWriter, id string, row int, requestID string) (session.Detail, bool) {
	state, err := h.Sessions.Get(id)
	if err != nil {
		failSession(w, err, requestID)
		return session.Detail{}, false
	}
	view, err := h.Results.View(state.Selection)
	if err != nil {
		shared.FailDataset(w, err, requestID)
		return session.Detail{}, false
	}
	if row >= len(view.Rows) {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "row", Reason: "is out of range"}})
		return session.Detail{}, false
	}
	return session.DetailFor(view.Rows[row].Record), true
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	format, ok := shared.ParseFormat(w, chi.URLParam(r, "format"), requestID)
	if !ok {
		return
	}
	state, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		failSession(w, err, requestID)
		return
	}
	view, err := h.Results.View(state.Selection)
	if err != nil {
		shared.FailDataset(w, err, requestID)
		return
	}
	if shared.WriteExport(w, format, view.Records(), requestID) && h.Exports != nil {
		h.Exports.ExportServed(string(format))
	}
}

func failSession(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, session.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "session_not_found", "session not found", requestID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", requestID)
}
