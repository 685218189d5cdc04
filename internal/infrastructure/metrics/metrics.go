// Package metrics métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/evraklab-api/internal/application/ports"
)

var _ ports.Recorder = (*Metrics)(nil)

// Metrics contadores HTTP y de negocio.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AccessDeniedTotal          *prometheus.CounterVec
	InvitationTransitionsTotal *prometheus.CounterVec
}

// New registra las métricas en un registro propio (más las de proceso y runtime de Go).
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evraklab_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "evraklab_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AccessDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evraklab_access_denied_total",
				Help: "Authorization decisions that denied an operation",
			},
			[]string{"operation"},
		),
		InvitationTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evraklab_invitation_transitions_total",
				Help: "Invitation and join-request state transitions",
			},
			[]string{"transition"},
		),
	}
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AccessDeniedTotal,
		m.InvitationTransitionsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterGauge métrica calculada al hacer scrape (p. ej. tamaño de la caché de sesiones).
func (m *Metrics) RegisterGauge(name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn))
}

func (m *Metrics) AccessDenied(operation string) {
	m.AccessDeniedTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) InvitationTransition(transition string) {
	m.InvitationTransitionsTotal.WithLabelValues(transition).Inc()
}

// ObserveRequest route es la plantilla de la ruta, no la URL concreta.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler exposición en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
