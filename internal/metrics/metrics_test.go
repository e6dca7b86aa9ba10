package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveMessage(t *testing.T) {
	m := New()
	m.ObserveMessage(OutcomeMentions, 3, 1, time.Millisecond)
	m.ObserveMessage(OutcomeEmpty, 0, 0, time.Microsecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues(OutcomeMentions)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesTotal.WithLabelValues(OutcomeEmpty)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MentionsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedGroupsTotal))
}

func TestScorerFailed(t *testing.T) {
	m := New()
	m.ScorerFailed()
	m.ScorerFailed()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScorerFailuresTotal))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveMessage(OutcomeMalformed, 0, 0, 0)
		m.ObserveBatch(10)
		m.ScorerFailed()
	})
	assert.NotNil(t, m.Handler())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveBatch(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "mentions_batch_size_count 1")
}
