package spanz

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	SpansCreated    prometheus.Counter
	SpansClosed     prometheus.Counter
	Violations      *prometheus.CounterVec
	SpansetsWritten prometheus.Counter
	FailedSpans     prometheus.Counter
	SpansetsDropped *prometheus.CounterVec
	SpansetBytes    prometheus.Histogram
}

// NewMetrics builds the collectors and registers them with reg.
// Pass nil to build collectors without registering them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SpansCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spanz_spans_created_total",
			Help: "Spans appended to any recorder.",
		}),
		SpansClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spanz_spans_closed_total",
			Help: "Spans closed explicitly or by status.",
		}),
		Violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spanz_contract_violations_total",
			Help: "Usage-contract violations raised as panics.",
		}, []string{"op"}),
		SpansetsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spanz_spansets_written_total",
			Help: "Spansets encoded from closed recorders.",
		}),
		FailedSpans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spanz_failed_spans_total",
			Help: "Spans serialized with the failed flag after propagation.",
		}),
		SpansetsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spanz_spansets_dropped_total",
			Help: "Spansets dropped before delivery.",
		}, []string{"reason"}), // worker_queue | collector_buffer
		SpansetBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "spanz_spanset_bytes",
			Help:    "Encoded spanset size in bytes.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SpansCreated, m.SpansClosed, m.Violations,
			m.SpansetsWritten, m.FailedSpans, m.SpansetsDropped,
			m.SpansetBytes,
		)
	}
	return m
}

func (m *Metrics) incSpanCreated() {
	if m != nil {
		m.SpansCreated.Inc()
	}
}

func (m *Metrics) incSpanClosed() {
	if m != nil {
		m.SpansClosed.Inc()
	}
}

func (m *Metrics) incViolation(op string) {
	if m != nil {
		m.Violations.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) incDropped(reason string) {
	if m != nil {
		m.SpansetsDropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) observeSpanset(stats writeStats) {
	if m == nil {
		return
	}
	m.SpansetsWritten.Inc()
	m.FailedSpans.Add(float64(stats.failed))
	m.SpansetBytes.Observe(float64(stats.bytes))
}
