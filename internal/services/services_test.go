package services

import (
	"sync"
	"testing"

	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/metrics"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/repository/mock"
	"github.com/kcoltin/SWSDITAB-sub001/internal/state"
	"github.com/kcoltin/SWSDITAB-sub001/internal/testutil"
)

// fixture is a store over a tournament built by the test
type fixture struct {
	*testutil.Builder
	store   *state.Store
	repo    *mock.Repository
	metrics *metrics.Metrics
	log     logger.Logger
}

// newFixture lets build shape the tournament before the store takes it over.
// build may be nil.
func newFixture(t *testing.T, build func(b *testutil.Builder)) *fixture {
	t.Helper()
	b := testutil.NewBuilder(t)
	if build != nil {
		build(b)
	}
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	m := metrics.New()
	log := logger.Discard()
	return &fixture{
		Builder: b,
		store:   state.New(log, repo, m, b.Tournament().Clone()),
		repo:    repo,
		metrics: m,
		log:     log,
	}
}

// read runs fn against the committed tournament
func (f *fixture) read(t *testing.T, fn func(tour *models.Tournament)) {
	t.Helper()
	if err := f.store.Read(func(tour *models.Tournament) error {
		fn(tour)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func startRound(tour *models.Tournament, roundID int) error {
	return lifecycle.Start(tour, roundID)
}

type message struct {
	Kind     string
	RoundID  int
	DebateID int
	Status   models.RoundStatus
}

// recorder is a Broadcaster that remembers every message
type recorder struct {
	mu       sync.Mutex
	messages []message
}

func (r *recorder) BroadcastRoundStatus(roundID int, status models.RoundStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message{Kind: "round_status", RoundID: roundID, Status: status})
}

func (r *recorder) BroadcastPairingUpdated(roundID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message{Kind: "pairing_updated", RoundID: roundID})
}

func (r *recorder) BroadcastBallotEntered(roundID, debateID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message{Kind: "ballot_entered", RoundID: roundID, DebateID: debateID})
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Kind
	}
	return out
}

func (r *recorder) find(kind string) (message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.Kind == kind {
			return m, true
		}
	}
	return message{}, false
}
