package obs_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buriane/taghiane/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("taghiane", []float64{1, 10}, registry)

	r := chi.NewRouter()
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Get("/bills/{billID}/export.html", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bills/abc/export.html", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/bills/{billID}/export.html", "204"))
	assert.Equal(t, 1.0, total)
	assert.NotZero(t, testutil.CollectAndCount(metrics.ReqDur))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.InFlight))
}

func TestRegisterReusesExistingCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewDomainMetrics("taghiane", registry)
	second := obs.NewDomainMetrics("taghiane", registry)

	second.ObserveAllocation()
	assert.Equal(t, 1.0, testutil.ToFloat64(first.Allocations))
}

func TestDomainMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := obs.NewDomainMetrics("taghiane", registry)

	m.ObserveRPC("/taghiane.v1.BillService/Allocate", "ok", 3*time.Millisecond)
	m.ObserveBillSaved("create")
	m.ObserveScan("failed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCTotal.WithLabelValues("/taghiane.v1.BillService/Allocate", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BillsSaved.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Scans.WithLabelValues("failed")))

	var nilMetrics *obs.DomainMetrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveRPC("x", "ok", time.Second)
		nilMetrics.ObserveAllocation()
		nilMetrics.ObserveBillSaved("update")
		nilMetrics.ObserveScan("ok")
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, `"route":"/healthz"`)
	assert.Contains(t, out, `"status":503`)
}
