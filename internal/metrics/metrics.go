package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the server's Prometheus metrics
type Registry struct {
	reg *prometheus.Registry

	// Payload reloads by trigger and result
	Reloads *prometheus.CounterVec
	// Rows and passing rows of the current payload
	Rows      prometheus.Gauge
	PassRows  prometheus.Gauge
	Version   prometheus.Gauge
	LoadedAt  prometheus.Gauge
	Requests  *prometheus.CounterVec
	Durations *prometheus.HistogramVec
}

// NewRegistry creates a registry with process and Go collectors attached
func NewRegistry() *Registry {
	m := &Registry{
		reg: prometheus.NewRegistry(),

		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mtts_payload_reloads_total",
				Help: "Payload reload attempts by trigger and result",
			},
			[]string{"trigger", "result"},
		),

		Rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtts_payload_rows",
			Help: "Rows in the current payload",
		}),

		PassRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtts_payload_pass_rows",
			Help: "Rows with status PASS in the current payload",
		}),

		Version: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtts_payload_version",
			Help: "Number of payloads swapped in since start",
		}),

		LoadedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mtts_payload_loaded_timestamp_seconds",
			Help: "Unix time the current payload was loaded",
		}),

		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mtts_http_requests_total",
				Help: "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),

		Durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mtts_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
			[]string{"route"},
		),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Reloads,
		m.Rows,
		m.PassRows,
		m.Version,
		m.LoadedAt,
		m.Requests,
		m.Durations,
	)
	return m
}

// RecordReload counts one reload attempt
func (m *Registry) RecordReload(trigger string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Reloads.WithLabelValues(trigger, result).Inc()
}

// SetPayload publishes the shape of the active payload
func (m *Registry) SetPayload(rows, pass int, version uint64, loadedAt time.Time) {
	m.Rows.Set(float64(rows))
	m.PassRows.Set(float64(pass))
	m.Version.Set(float64(version))
	m.LoadedAt.Set(float64(loadedAt.Unix()))
}

// ObserveRequest records one served request
func (m *Registry) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.Durations.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler for Prometheus metrics
func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
