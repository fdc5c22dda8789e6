package shared

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"resultados/internal/domain/results"
	"resultados/internal/transport/http/api"
)

// FailDataset maps dataset lifecycle errors to envelope responses.
func FailDataset(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, results.ErrDatasetLoading):
		w.Header().Set("Retry-After", "1")
		api.Fail(w, http.StatusServiceUnavailable, "dataset_loading", "dataset is still loading", requestID)
	case errors.Is(err, results.ErrDatasetUnavailable):
		api.Fail(w, http.StatusServiceUnavailable, "dataset_unavailable", err.Error(), requestID)
	default:
		slog.Error("dataset access failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", requestID)
	}
}

// WriteExport renders records into memory first so a rendering failure can
// still be reported as JSON, then streams the file as an attachment.
func WriteExport(w http.ResponseWriter, format results.Format, records []results.Record, requestID string) bool {
	var buf bytes.Buffer
	if err := results.Export(&buf, format, records); err != nil {
		slog.Error("export failed", "format", format, "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "export_failed", "could not render export", requestID)
		return false
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.FileName()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("export write failed", "format", format, "err", err, "requestId", requestID)
	}
	return true
}

// ParseFormat validates the {format} path parameter.
func ParseFormat(w http.ResponseWriter, raw, requestID string) (results.Format, bool) {
	format, err := results.ParseFormat(raw)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "unsupported_format", "format must be csv, pdf or xlsx", requestID)
		return "", false
	}
	return format, true
}
