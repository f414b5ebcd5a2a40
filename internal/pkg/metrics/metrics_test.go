package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func TestRecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("GET", "/api/events", 200, 15*time.Millisecond)
	c.RecordRequest("GET", "/api/events", 200, 5*time.Millisecond)
	c.RecordRequest("POST", "/api/auth/login", 401, time.Millisecond)

	mf := family(t, reg, "barangaylink_http_requests_total")
	assert.Len(t, mf.GetMetric(), 2)

	total := 0.0
	for _, m := range mf.GetMetric() {
		total += m.GetCounter().GetValue()
	}
	assert.Equal(t, 3.0, total)
}

func TestRecordJob(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordJob("purge_tokens", nil)
	c.RecordJob("purge_tokens", errors.New("db down"))

	mf := family(t, reg, "barangaylink_job_runs_total")
	results := map[string]float64{}
	for _, m := range mf.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "result" {
				results[l.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, map[string]float64{"ok": 1, "error": 1}, results)
}

func TestWSGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.WSConnected()
	c.WSConnected()
	c.WSDisconnected()

	mf := family(t, reg, "barangaylink_ws_connections")
	assert.Equal(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue())
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordRequest("GET", "/", 200, time.Millisecond)
		c.RecordUpstream("chat", "ok", time.Millisecond)
		c.RecordJob("x", nil)
		c.WSConnected()
		c.WSDisconnected()
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordUpstream("priority", "ok", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `barangaylink_ai_upstream_total{outcome="ok",service="priority"} 1`)
}
