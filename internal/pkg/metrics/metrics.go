// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "maf"

// Suggestion outcomes
const (
	SuggestionHit     = "hit"
	SuggestionEmpty   = "empty"
	SuggestionMissing = "missing_keyword"
	SuggestionError   = "error"
)

// Filter outcomes besides types.FilterOutcome.String()
const (
	FilterInactive = "inactive"
	FilterError    = "error"
)

var (
	// Suggestions counts suggestion lookups by outcome
	Suggestions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suggestions_total",
		Help:      "Attached-to suggestion lookups by outcome.",
	}, []string{"outcome"})

	// FilterOutcomes counts main listing queries by attachment filter decision
	FilterOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "filter_outcomes_total",
		Help:      "Attachment filter decisions on main listing queries.",
	}, []string{"outcome"})

	// Uploads counts attachment uploads by result
	Uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Attachment uploads by result.",
	}, []string{"result"})
)

// Registry 服务使用的独立注册表，避免与全局默认注册表互相干扰
var Registry = newRegistry()

func newRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		Suggestions,
		FilterOutcomes,
		Uploads,
	)
	return r
}
