// Package metrics содержит Prometheus-коллекторы журнала вызовов.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics объединяет коллекторы. nil *Metrics допустим и ничего не считает.
type Metrics struct {
	Calls        *prometheus.CounterVec
	CallDuration prometheus.Histogram
	SinkFailures prometheus.Counter
}

// New создаёт коллекторы и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calllog_calls_total",
			Help: "Total number of intercepted calls by outcome.",
		}, []string{"outcome"}),
		CallDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "calllog_call_duration_seconds",
			Help:    "Duration of intercepted calls.",
			Buckets: prometheus.DefBuckets,
		}),
		SinkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "calllog_sink_failures_total",
			Help: "Total number of call records the sink failed to write.",
		}),
	}
	reg.MustRegister(m.Calls, m.CallDuration, m.SinkFailures)
	return m
}

// RecordCall учитывает завершённый вызов.
func (m *Metrics) RecordCall(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(outcome).Inc()
	m.CallDuration.Observe(d.Seconds())
}

// RecordSinkFailure учитывает потерянную запись.
func (m *Metrics) RecordSinkFailure() {
	if m == nil {
		return
	}
	m.SinkFailures.Inc()
}
