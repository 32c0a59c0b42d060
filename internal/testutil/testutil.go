package testutil

import (
	"fmt"
	"testing"

	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/ranking"
	"github.com/kcoltin/SWSDITAB-sub001/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// Builder assembles small tournaments for tests. Every helper fails the test
// on error so call sites stay flat.
type Builder struct {
	t    testing.TB
	tour *models.Tournament
}

// NewBuilder starts a solo-entry tournament with a fixed seed
func NewBuilder(t testing.TB) *Builder {
	return &Builder{t: t, tour: models.NewTournament("test", "Test Tournament", 1, 42)}
}

// Tournament returns the tournament under construction
func (b *Builder) Tournament() *models.Tournament { return b.tour }

// Entries adds n solo entries named "Entry 1" ... "Entry n"
func (b *Builder) Entries(n int) []*models.Entry {
	out := make([]*models.Entry, n)
	for i := range n {
		out[i] = b.tour.AddEntry([]models.Competitor{{Name: fmt.Sprintf("Entry %d", i+1)}})
	}
	return out
}

// Judges adds n unaffiliated judges
func (b *Builder) Judges(n int) []*models.Judge {
	out := make([]*models.Judge, n)
	for i := range n {
		out[i] = b.tour.AddJudge(fmt.Sprintf("Judge %d", i+1), 0)
	}
	return out
}

// Rooms adds n rooms
func (b *Builder) Rooms(n int) []*models.Room {
	out := make([]*models.Room, n)
	for i := range n {
		out[i] = b.tour.AddRoom(fmt.Sprintf("Room %d", 100+i+1))
	}
	return out
}

// Prelim adds a preliminary round with one judge per debate
func (b *Builder) Prelim(number int) *models.Round {
	return b.tour.AddRound(models.Round{
		Name:            fmt.Sprintf("Round %d", number),
		Kind:            models.Prelim,
		Number:          number,
		JudgesPerDebate: 1,
	})
}

// Pair appends a debate between aff and neg to the round
func (b *Builder) Pair(r *models.Round, aff, neg *models.Entry) *models.Debate {
	b.t.Helper()
	d := models.NewDebate(aff.ID, neg.ID)
	if err := lifecycle.InsertItem(b.tour, r.ID, d, -1); err != nil {
		b.t.Fatalf("pair %d v %d: %v", aff.ID, neg.ID, err)
	}
	return d
}

// Decide starts the debate's round if needed, records winner's win and
// refreshes every record and round status
func (b *Builder) Decide(d *models.Debate, winner *models.Entry) {
	b.t.Helper()
	r, _ := b.tour.Round(d.RoundID())
	if r.Status == models.NotStarted {
		if err := lifecycle.Start(b.tour, r.ID); err != nil {
			b.t.Fatalf("start %s: %v", r.Name, err)
		}
	}
	if err := lifecycle.EnterBallot(b.tour, lifecycle.Ballot{DebateID: d.ID(), EntryID: winner.ID, Outcome: models.Win}); err != nil {
		b.t.Fatalf("ballot %d: %v", d.ID(), err)
	}
	ranking.Recompute(b.tour)
	lifecycle.RecomputeAll(b.tour)
}
