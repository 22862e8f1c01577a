// Package observability exposes the gateway's Prometheus metrics.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	OpenConnections     prometheus.Gauge
	EventsTotal         *prometheus.CounterVec
	ErrorsTotal         *prometheus.CounterVec
	ActiveTrips         prometheus.Gauge
	CollaboratorLatency *prometheus.HistogramVec
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics registers the collectors once with the default registry
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			OpenConnections: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "navsocket_open_connections",
				Help: "Current number of open websocket connections",
			}),
			EventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "navsocket_events_total",
				Help: "Total number of inbound events by type",
			}, []string{"type"}),
			ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "navsocket_errors_total",
				Help: "Total number of error events sent to clients by code",
			}, []string{"code"}),
			ActiveTrips: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "navsocket_active_trips",
				Help: "Current number of users with a trip in progress",
			}),
			CollaboratorLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "navsocket_route_service_duration_seconds",
				Help:    "Duration of calls to the route and trip service",
				Buckets: prometheus.DefBuckets,
			}, []string{"op", "status"}),
		}
	})
	return metricsInstance
}

func (m *Metrics) ConnectionOpened() {
	if m == nil || m.OpenConnections == nil {
		return
	}
	m.OpenConnections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil || m.OpenConnections == nil {
		return
	}
	m.OpenConnections.Dec()
}

func (m *Metrics) RecordEvent(eventType string) {
	if m == nil || m.EventsTotal == nil {
		return
	}
	m.EventsTotal.WithLabelValues(eventType).Inc()
}

func (m *Metrics) RecordError(code string) {
	if m == nil || m.ErrorsTotal == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) SetActiveTrips(n int) {
	if m == nil || m.ActiveTrips == nil {
		return
	}
	m.ActiveTrips.Set(float64(n))
}

// ObserveCall records one collaborator call; a non-nil err marks it failed
func (m *Metrics) ObserveCall(op string, started time.Time, err error) {
	if m == nil || m.CollaboratorLatency == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.CollaboratorLatency.WithLabelValues(op, status).Observe(time.Since(started).Seconds())
}
