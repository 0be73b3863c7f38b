package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncPublished("LogCreate")
	m.IncPublished("LogCreate")
	m.ObserveBatch("LogCreate", 3)
	m.IncBatchFailure("MappingTouch", "forbidden")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("LogCreate")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.EventsDelivered.WithLabelValues("LogCreate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchFailures.WithLabelValues("MappingTouch", "forbidden")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncPublished("LogCreate")
		m.ObserveBatch("LogCreate", 1)
		m.IncAccessDenied("check")
	})
}
