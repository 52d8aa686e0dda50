package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/tablebot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tablebot"

// Metrics holds the Prometheus collectors fed by the dialog engine.
type Metrics struct {
	Turns          *prometheus.CounterVec
	TurnDuration   *prometheus.HistogramVec
	RemoteCalls    *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec
	InFlight       prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors on reg. A nil reg uses a fresh
// private registry, which keeps tests isolated from the global one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	factory := promauto.With(reg)

	return &Metrics{
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns handled, by intent and outcome.",
		}, []string{"intent", "outcome"}),
		TurnDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time spent handling a turn, including remote calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
		RemoteCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Booking API calls, by operation and result.",
		}, []string{"op", "result"}),
		RemoteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Booking API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "remote_calls_in_flight",
			Help:      "Booking API calls currently running.",
		}),
		gatherer: gatherer,
	}
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			in := e.Intent.String()
			m.Turns.WithLabelValues(in, e.Outcome).Inc()
			m.TurnDuration.WithLabelValues(in).Observe(e.Duration.Seconds())
		},
		OnRemoteCall: func(_ context.Context, _ *domain.RemoteEvent) {
			m.InFlight.Inc()
		},
		OnRemoteReturn: func(_ context.Context, e *domain.RemoteEvent) {
			m.InFlight.Dec()
			result := "ok"
			if e.IsError {
				result = "error"
			}
			m.RemoteCalls.WithLabelValues(e.Op, result).Inc()
			m.RemoteDuration.WithLabelValues(e.Op).Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry m was created on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
