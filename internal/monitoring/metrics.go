// Package monitoring exposes Prometheus metrics and a JSON activity snapshot
// for the ordering assistant.
package monitoring

import (
	"net/http"
	"time"

	"maitred/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects assistant metrics on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry
	monitor  *Monitor

	turns           *prometheus.CounterVec
	llmCalls        *prometheus.CounterVec
	llmLatency      *prometheus.HistogramVec
	ordersConfirmed prometheus.Counter
	orderValue      prometheus.Histogram
	persistFailures prometheus.Counter
	activeSessions  prometheus.Gauge
}

// NewMetrics creates and registers the assistant metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		monitor:  NewMonitor(),
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maitred_turns_total",
				Help: "Chat turns handled, by resolved intent",
			},
			[]string{"intent"},
		),
		llmCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maitred_llm_calls_total",
				Help: "Language model calls, by capability and outcome",
			},
			[]string{"capability", "outcome"},
		),
		llmLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maitred_llm_call_duration_seconds",
				Help:    "Language model call latency",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"capability"},
		),
		ordersConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maitred_orders_confirmed_total",
			Help: "Orders confirmed and persisted",
		}),
		orderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "maitred_order_value_dollars",
			Help:    "Total value of confirmed orders",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maitred_order_persist_failures_total",
			Help: "Order confirmations that failed to persist",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "maitred_active_sessions",
			Help: "Chat sessions currently open",
		}),
	}

	registry.MustRegister(
		m.turns,
		m.llmCalls,
		m.llmLatency,
		m.ordersConfirmed,
		m.orderValue,
		m.persistFailures,
		m.activeSessions,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Monitor returns the JSON snapshot monitor
func (m *Metrics) Monitor() *Monitor {
	if m == nil {
		return nil
	}
	return m.monitor
}

// RecordTurn counts a handled chat turn
func (m *Metrics) RecordTurn(intent string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(intent).Inc()
	m.monitor.Increment("turns_total")
	m.monitor.Increment("turns_" + intent)
	m.monitor.SetLabel("last_intent", intent)
}

// RecordLLMCall counts a language model call and observes its latency
func (m *Metrics) RecordLLMCall(capability, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(capability, outcome).Inc()
	m.llmLatency.WithLabelValues(capability).Observe(elapsed.Seconds())
	m.monitor.Increment("llm_" + capability + "_" + outcome)
}

// RecordOrderConfirmed counts a persisted order
func (m *Metrics) RecordOrderConfirmed(total models.Cents) {
	if m == nil {
		return
	}
	m.ordersConfirmed.Inc()
	m.orderValue.Observe(total.Float())
	m.monitor.Increment("orders_confirmed")
}

// RecordPersistFailure counts an order that could not be persisted
func (m *Metrics) RecordPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
	m.monitor.Increment("order_persist_failures")
}

// SetActiveSessions records the number of open sessions
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
	m.monitor.SetGauge("active_sessions", n)
}
