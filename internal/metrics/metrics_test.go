package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordReload(t *testing.T) {
	m := NewRegistry()
	m.RecordReload("cron", nil)
	m.RecordReload("cron", nil)
	m.RecordReload("api", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Reloads.WithLabelValues("cron", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reloads.WithLabelValues("api", "error")))
}

func TestSetPayload(t *testing.T) {
	m := NewRegistry()
	m.SetPayload(120, 14, 3, time.Unix(1760616300, 0))

	assert.Equal(t, 120.0, testutil.ToFloat64(m.Rows))
	assert.Equal(t, 14.0, testutil.ToFloat64(m.PassRows))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Version))
	assert.Equal(t, 1760616300.0, testutil.ToFloat64(m.LoadedAt))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewRegistry()
	m.ObserveRequest("/api/metadata", http.StatusOK, 2*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mtts_http_requests_total{code="200",route="/api/metadata"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
