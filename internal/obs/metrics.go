// Package obs wires Prometheus metrics, OpenTelemetry tracing and request
// logging into the HTTP server.
package obs

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics groups Prometheus collectors for HTTP observability.
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics registers and returns HTTP metrics collectors.
func NewHTTPMetrics(namespace string, buckets []float64, reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 10000}
	} else {
		sort.Float64s(buckets)
	}
	return &HTTPMetrics{
		ReqTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"})),
		ReqDur: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   buckets,
		}, []string{"method", "route"})),
		InFlight: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		})),
	}
}

// DomainMetrics counts bill-splitting events. A nil *DomainMetrics is valid
// and records nothing.
type DomainMetrics struct {
	RPCTotal    *prometheus.CounterVec
	RPCDur      *prometheus.HistogramVec
	Allocations prometheus.Counter
	BillsSaved  *prometheus.CounterVec
	Scans       *prometheus.CounterVec
}

// NewDomainMetrics registers and returns the domain collectors.
func NewDomainMetrics(namespace string, reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &DomainMetrics{
		RPCTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"})),
		RPCDur: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_ms",
			Help:      "Connect RPC latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 1000, 5000, 30000},
		}, []string{"procedure"})),
		Allocations: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Receipts run through the allocation engine.",
		})),
		BillsSaved: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_saved_total",
			Help:      "Split bills written, by operation.",
		}, []string{"op"})),
		Scans: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_scans_total",
			Help:      "Receipt scans, by result.",
		}, []string{"result"})),
	}
}

// ObserveRPC records one finished RPC.
func (m *DomainMetrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.RPCTotal.WithLabelValues(procedure, code).Inc()
	m.RPCDur.WithLabelValues(procedure).Observe(DurationMillis(d))
}

// ObserveAllocation records one allocation run.
func (m *DomainMetrics) ObserveAllocation() {
	if m == nil {
		return
	}
	m.Allocations.Inc()
}

// ObserveBillSaved records a create or update; op is "create" or "update".
func (m *DomainMetrics) ObserveBillSaved(op string) {
	if m == nil {
		return
	}
	m.BillsSaved.WithLabelValues(op).Inc()
}

// ObserveScan records a scan outcome such as "ok", "rejected" or "failed".
func (m *DomainMetrics) ObserveScan(result string) {
	if m == nil {
		return
	}
	m.Scans.WithLabelValues(result).Inc()
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// register registers c, or returns the already registered collector of the same type.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
	return c
}
