// Package metrics holds the Prometheus collectors of the tabulation server.
// Collectors live on a private registry so tests and multiple servers in one
// process never collide on the global default.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search results
const (
	SearchFeasible   = "feasible"
	SearchInfeasible = "infeasible"
	SearchTruncated  = "truncated"
)

// Ballot actions
const (
	BallotEntered = "entered"
	BallotRemoved = "removed"
)

// Mutation results
const (
	MutationCommitted = "committed"
	MutationRejected  = "rejected"
	MutationFailed    = "failed"
)

// Metrics is a set of collectors bound to one registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	searches    *prometheus.CounterVec
	searchNodes prometheus.Histogram
	ballots     *prometheus.CounterVec
	mutations   *prometheus.CounterVec
}

// New registers every collector on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pairing_searches_total",
			Help: "Judge and room assignment searches by result.",
		}, []string{"result"}),
		searchNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pairing_search_nodes",
			Help:    "States visited per assignment search.",
			Buckets: prometheus.ExponentialBuckets(16, 4, 8),
		}),
		ballots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ballots_total",
			Help: "Ballot changes by action.",
		}, []string{"action"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mutations_total",
			Help: "Tournament mutations by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(m.searches, m.searchNodes, m.ballots, m.mutations)
	return m
}

// Search records one finished assignment search
func (m *Metrics) Search(result string, nodes int) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(result).Inc()
	m.searchNodes.Observe(float64(nodes))
}

// Ballot records a ballot entered or removed
func (m *Metrics) Ballot(action string) {
	if m == nil {
		return
	}
	m.ballots.WithLabelValues(action).Inc()
}

// Mutation records the result of one store update
func (m *Metrics) Mutation(result string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
