package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Search(SearchFeasible, 40)
	m.Search(SearchFeasible, 12)
	m.Search(SearchInfeasible, 900)
	m.Ballot("entered")
	m.Mutation(MutationCommitted)
	m.Mutation(MutationRejected)
	m.Mutation(MutationRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.searches.WithLabelValues(SearchFeasible)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues(SearchInfeasible)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ballots.WithLabelValues("entered")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues(MutationRejected)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.searchNodes))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Search(SearchTruncated, 5)
		m.Ballot("removed")
		m.Mutation(MutationFailed)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.Ballot("entered")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `ballots_total{action="entered"} 1`))
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Mutation(MutationCommitted)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.mutations.WithLabelValues(MutationCommitted)))
}
