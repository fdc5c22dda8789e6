package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := New()
	c.Record("/api/v1/results", http.MethodGet, 200, 15*time.Millisecond)
	c.Record("/api/v1/results", http.MethodGet, 200, 5*time.Millisecond)
	c.Record("", http.MethodGet, 404, time.Millisecond)
	c.DatasetLoaded(42, nil)
	c.DatasetLoaded(0, errors.New("boom"))
	c.ViewDerived()
	c.SessionsActive(3)
	c.ExportServed("pdf")
	c.JobRun("dataset_reload", "completed")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("/api/v1/results", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.datasetLoads.WithLabelValues("failed")))
	assert.Equal(t, 42.0, testutil.ToFloat64(c.datasetRecords), "failed load keeps the last count")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.viewsDerived))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.sessionsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.exportsServed.WithLabelValues("pdf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.jobRuns.WithLabelValues("dataset_reload", "completed")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.ExportServed("csv")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `resultados_exports_total{format="csv"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ViewDerived()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.viewsDerived))
}
