// Package metrics exposes the Prometheus collectors for the intake service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes.
const (
	OutcomeCreated     = "created"
	OutcomeInvalid     = "invalid"
	OutcomeConflict    = "conflict"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// Notification outcomes.
const (
	NotifySent    = "sent"
	NotifyFailed  = "failed"
	NotifySkipped = "skipped"
)

type Metrics struct {
	registry *prometheus.Registry

	SubmissionsTotal   *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	RenderFailures     *prometheus.CounterVec
	QueueDepth         prometheus.Gauge
	QueueDropped       prometheus.Counter
	HTTPDuration       *prometheus.HistogramVec
}

// New registers all collectors on a private registry, so tests can create
// as many instances as they need.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		SubmissionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nursery_submissions_total",
			Help: "Form submissions by form type and outcome",
		}, []string{"form", "outcome"}),
		NotificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nursery_notifications_total",
			Help: "Notification emails by audience and outcome",
		}, []string{"audience", "outcome"}),
		RenderFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nursery_render_failures_total",
			Help: "PDF render failures by form type",
		}, []string{"form"}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "nursery_notify_queue_depth",
			Help: "Notification jobs waiting for a worker",
		}),
		QueueDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "nursery_notify_queue_dropped_total",
			Help: "Notification jobs dropped because the queue was full or closed",
		}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nursery_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

func (m *Metrics) ObserveSubmission(form, outcome string) {
	m.SubmissionsTotal.WithLabelValues(form, outcome).Inc()
}

func (m *Metrics) ObserveNotification(audience, outcome string) {
	m.NotificationsTotal.WithLabelValues(audience, outcome).Inc()
}

func (m *Metrics) ObserveRenderFailure(form string) {
	m.RenderFailures.WithLabelValues(form).Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	m.QueueDepth.Set(float64(n))
}

func (m *Metrics) IncQueueDropped() {
	m.QueueDropped.Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.HTTPDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
