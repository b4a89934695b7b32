// Package prometheus provides a Prometheus implementation of actor.Metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lwmacct/251220-go-pkg-resource/pkg/actor"
)

// Default histogram buckets for request latency (in seconds).
var defaultBuckets = []float64{
	.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1,
}

// timer wraps a Prometheus observer to implement actor.Timer.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) actor.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// workerMetrics implements actor.Metrics using Prometheus.
type workerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	panicsTotal     *prometheus.CounterVec
	storeSize       *prometheus.GaugeVec
	mailboxDepth    *prometheus.GaugeVec
}

// NewMetrics creates a Prometheus implementation of actor.Metrics and
// registers its collectors with reg. One instance can be shared by all workers;
// series are labelled by entity name.
func NewMetrics(reg prometheus.Registerer) actor.Metrics {
	m := &workerMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resource_actor_request_duration_seconds",
			Help:    "Request handling time in seconds, hooks included",
			Buckets: defaultBuckets,
		}, []string{"entity", "op"}),

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resource_actor_requests_total",
			Help: "Total number of requests processed",
		}, []string{"entity", "op", "outcome"}),

		panicsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resource_actor_hook_panics_total",
			Help: "Total number of recovered hook panics",
		}, []string{"entity", "op"}),

		storeSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "resource_actor_store_size",
			Help: "Number of entities held by the worker",
		}, []string{"entity"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "resource_actor_mailbox_depth",
			Help: "Current mailbox queue depth",
		}, []string{"entity"}),
	}

	reg.MustRegister(
		m.requestDuration,
		m.requestsTotal,
		m.panicsTotal,
		m.storeSize,
		m.mailboxDepth,
	)

	return m
}

func (m *workerMetrics) RequestDuration(entity string, op actor.Op) actor.Timer {
	return newTimer(m.requestDuration.WithLabelValues(entity, op.String()))
}

func (m *workerMetrics) RequestProcessed(entity string, op actor.Op, outcome actor.Outcome) {
	m.requestsTotal.WithLabelValues(entity, op.String(), string(outcome)).Inc()
}

func (m *workerMetrics) HookPanic(entity string, op actor.Op) {
	m.panicsTotal.WithLabelValues(entity, op.String()).Inc()
}

func (m *workerMetrics) StoreSize(entity string, size int) {
	m.storeSize.WithLabelValues(entity).Set(float64(size))
}

func (m *workerMetrics) MailboxDepth(entity string, depth int) {
	m.mailboxDepth.WithLabelValues(entity).Set(float64(depth))
}

var _ actor.Metrics = (*workerMetrics)(nil)
