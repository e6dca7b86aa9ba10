// Package metrics registers the prometheus collectors for the scoring
// pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mentions"

// Metrics holds the pipeline collectors.
type Metrics struct {
	MessagesTotal       *prometheus.CounterVec
	MentionsTotal       prometheus.Counter
	SkippedGroupsTotal  prometheus.Counter
	ScorerFailuresTotal prometheus.Counter
	MessageDuration     prometheus.Histogram
	BatchSize           prometheus.Histogram

	gatherer prometheus.Gatherer
}

// DefaultDurationBuckets suits per-message latency: tens of microseconds up
// to a second.
var DefaultDurationBuckets = []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .05, .1, .5, 1}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors with reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	m := &Metrics{
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Messages processed, by outcome (mentions, empty, malformed).",
		}, []string{"outcome"}),
		MentionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mentions_total",
			Help:      "Entity mentions recorded.",
		}),
		SkippedGroupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_groups_total",
			Help:      "Segmented phrases that could not be resolved during substitution.",
		}),
		ScorerFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scorer_failures_total",
			Help:      "Context windows the scorer failed on.",
		}),
		MessageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_duration_seconds",
			Help:      "Time to segment, extract and score one message.",
			Buckets:   DefaultDurationBuckets,
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Messages per scoring batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		gatherer: g,
	}
	reg.MustRegister(
		m.MessagesTotal,
		m.MentionsTotal,
		m.SkippedGroupsTotal,
		m.ScorerFailuresTotal,
		m.MessageDuration,
		m.BatchSize,
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Message outcomes.
const (
	OutcomeMentions  = "mentions"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
)

// ObserveMessage records one processed message.
func (m *Metrics) ObserveMessage(outcome string, mentions, skipped int, took time.Duration) {
	if m == nil {
		return
	}
	m.MessagesTotal.WithLabelValues(outcome).Inc()
	m.MentionsTotal.Add(float64(mentions))
	m.SkippedGroupsTotal.Add(float64(skipped))
	m.MessageDuration.Observe(took.Seconds())
}

// ObserveBatch records the size of a scoring batch.
func (m *Metrics) ObserveBatch(n int) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(n))
}

// ScorerFailed records one failed window.
func (m *Metrics) ScorerFailed() {
	if m == nil {
		return
	}
	m.ScorerFailuresTotal.Inc()
}
