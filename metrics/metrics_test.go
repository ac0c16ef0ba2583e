package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementLeadsCreated()
	m.IncrementLeadsCreated()
	m.IncrementConflicts()
	m.ObserveEnrichment(true)
	m.ObserveEnrichment(false)
	m.ObserveEnrichment(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LeadsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LeadConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnrichmentCalls.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EnrichmentCalls.WithLabelValues("failure")))

	count, err := testutil.GatherAndCount(reg)
	assert.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementLeadsCreated()
		m.IncrementConflicts()
		m.ObserveEnrichment(true)
	})
}
