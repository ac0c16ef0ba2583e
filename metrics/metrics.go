// Package metrics holds the Prometheus collectors of the leads API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	LeadsCreated    prometheus.Counter
	LeadConflicts   prometheus.Counter
	EnrichmentCalls *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LeadsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads stored",
		}),
		LeadConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "leads_conflicts_total",
			Help: "Total number of lead submissions rejected for a duplicated email",
		}),
		EnrichmentCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leads_enrichment_calls_total",
			Help: "Total number of birth date lookups by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementLeadsCreated() {
	if m == nil {
		return
	}
	m.LeadsCreated.Inc()
}

func (m *Metrics) IncrementConflicts() {
	if m == nil {
		return
	}
	m.LeadConflicts.Inc()
}

// ObserveEnrichment records a lookup outcome: "success" or "failure".
func (m *Metrics) ObserveEnrichment(ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.EnrichmentCalls.WithLabelValues(outcome).Inc()
}
