package bracket

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

func TestNumWhoBreak_NonClean(t *testing.T) {
	for _, capacity := range []int{2, 4, 8, 16, 32} {
		for n := 0; n <= 40; n += 3 {
			wins := make([]int, n)
			for i := range wins {
				wins[i] = (n - i) / 2
			}
			t.Run(fmt.Sprintf("C=%d/n=%d", capacity, n), func(t *testing.T) {
				assert.Equal(t, min(capacity, n), NumWhoBreak(wins, capacity, false))
			})
		}
	}
}

func TestNumWhoBreak_Clean(t *testing.T) {
	tests := []struct {
		name     string
		wins     []int
		capacity int
		want     int
		// min and max seeds tied: the cut falls wherever capacity puts it
		splits bool
	}{
		{"tie group straddles the cut", []int{5, 5, 5, 4, 4, 3}, 4, 3, false},
		{"min and max tied degenerates to full bracket", []int{4, 4, 4, 4, 4, 2}, 4, 4, true},
		{"exactly capacity entries", []int{5, 4, 3, 2}, 4, 4, false},
		{"tied pair above a drop", []int{5, 5, 4, 4, 3, 3}, 4, 4, false},
		{"drop well above capacity", []int{6, 6, 6, 6, 6, 4, 4, 4, 4, 2}, 8, 5, false},
		{"drop at min", []int{6, 6, 6, 6, 6, 5, 5, 5, 5, 5}, 8, 5, false},
		{"fewer entries than capacity", []int{3, 2, 1}, 8, 3, false},
		{"no entries", nil, 4, 0, false},
		{"finals with a tie for second", []int{3, 2, 2}, 2, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NumWhoBreak(tt.wins, tt.capacity, true)
			assert.Equal(t, tt.want, got)
			if !tt.splits && len(tt.wins) > got && got > 0 {
				assert.Greater(t, tt.wins[got-1], tt.wins[got], "a clean break never splits a win group")
			}
		})
	}
}

// Seed-ordered input always ends the scan with a strict drop, so the final
// fallback is only reachable with out-of-order input. It returns min.
func TestNumWhoBreak_FallbackReturnsMin(t *testing.T) {
	wins := []int{3, 1, 1, 2, 2, 0}
	assert.Equal(t, 3, NumWhoBreak(wins, 4, true))
}

func newTournament(t *testing.T, wins ...int) *models.Tournament {
	t.Helper()
	tour := models.NewTournament("t", "T", 1, 11)
	for _, w := range wins {
		e := tour.AddEntry([]models.Competitor{{Name: "x"}})
		e.Wins = w
	}
	return tour
}

func TestBreak(t *testing.T) {
	tour := newTournament(t, 5, 4, 5, 3, 4, 5)
	_, err := Break(tour)
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition), "level not set")

	_, err = SetLevel(tour, models.Semifinals, false)
	require.NoError(t, err)
	tour.CleanBreak = true

	breaks, err := Break(tour)
	require.NoError(t, err)
	require.Len(t, breaks, 3)
	for _, id := range breaks {
		e, _ := tour.Entry(id)
		assert.Equal(t, 5, e.Wins)
	}
	assert.Equal(t, breaks, tour.Breaks)

	tour.CleanBreak = false
	breaks, err = Break(tour)
	require.NoError(t, err)
	assert.Len(t, breaks, 4)
}

func TestBreak_SkipsIneligibleEntries(t *testing.T) {
	tour := newTournament(t, 9, 1, 1)
	top := tour.Entries()[0]
	top.EligibleToBreak = false
	_, err := SetLevel(tour, models.Finals, false)
	require.NoError(t, err)

	breaks, err := Break(tour)
	require.NoError(t, err)
	assert.NotContains(t, breaks, top.ID)
	assert.Len(t, breaks, 2)
}

func TestBreak_BlockedOnceFirstElimHasResults(t *testing.T) {
	tour := newTournament(t, 3, 2, 1, 0)
	final := tour.AddRound(models.Round{Name: "Finals", Kind: models.Elim, Level: models.Finals})
	_, err := SetLevel(tour, models.Finals, false)
	require.NoError(t, err)
	_, err = Break(tour)
	require.NoError(t, err)
	require.NoError(t, SeedElimination(tour, final.ID))
	require.NoError(t, lifecycle.Start(tour, final.ID))

	d := tour.Debates(final.ID)[0]
	require.NoError(t, lifecycle.EnterBallot(tour, lifecycle.Ballot{DebateID: d.ID(), EntryID: d.Aff, Outcome: models.Win}))

	before := append([]int(nil), tour.Breaks...)
	_, err = Break(tour)
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition))
	assert.Equal(t, before, tour.Breaks)
}

func TestSetLevel_RenumbersAndRequiresConfirmation(t *testing.T) {
	tour := newTournament(t)
	a := tour.AddRound(models.Round{Kind: models.Elim, Number: 1})
	b := tour.AddRound(models.Round{Kind: models.Elim, Number: 2})
	c := tour.AddRound(models.Round{Kind: models.Elim, Number: 3})

	_, err := SetLevel(tour, models.Quarterfinals, false)
	require.NoError(t, err)
	assert.Equal(t, models.Quarterfinals, a.Level)
	assert.Equal(t, models.Semifinals, b.Level)
	assert.Equal(t, models.Finals, c.Level)
	assert.Equal(t, "Semifinals", b.Name)
	assert.True(t, tour.BreakLevelSet)

	_, err = SetLevel(tour, models.Semifinals, false)
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition))
	assert.Len(t, tour.Rounds(), 3, "nothing discarded without confirmation")
	assert.Equal(t, models.Quarterfinals, tour.BreakLevel)

	discarded, err := SetLevel(tour, models.Semifinals, true)
	require.NoError(t, err)
	assert.Equal(t, []int{c.ID}, discarded)
	assert.Equal(t, models.Semifinals, a.Level)
	assert.Equal(t, models.Finals, b.Level)
	_, ok := tour.Round(c.ID)
	assert.False(t, ok)
}

func TestSetLevel_Rejections(t *testing.T) {
	tour := newTournament(t)
	r := tour.AddRound(models.Round{Kind: models.Elim, Number: 1})

	_, err := SetLevel(tour, models.Outround(3), false)
	assert.True(t, errors.IsKind(err, errors.ErrInvalidInput))

	r.Status = models.InProgress
	_, err = SetLevel(tour, models.Finals, true)
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition))
	assert.False(t, tour.BreakLevelSet)
}

func TestFillGaps_IsIdempotent(t *testing.T) {
	tour := newTournament(t)
	tour.AddRound(models.Round{Kind: models.Elim, Level: models.Octofinals, JudgesPerDebate: 3})
	tour.AddRound(models.Round{Kind: models.Elim, Level: models.Finals})

	created := FillGaps(tour)
	require.Len(t, created, 2)
	assert.Equal(t, models.Quarterfinals, created[0].Level)
	assert.Equal(t, models.Semifinals, created[1].Level)
	assert.Equal(t, 3, created[0].JudgesPerDebate)

	assert.Empty(t, FillGaps(tour))
	assert.Len(t, lifecycle.ElimRounds(tour), 4)
}

func TestOrder(t *testing.T) {
	assert.Equal(t, []int{1, 2}, Order(2))
	assert.Equal(t, []int{1, 4, 2, 3}, Order(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, Order(8))
}

func TestSeedEliminationAndAdvance(t *testing.T) {
	tour := newTournament(t, 6, 5, 4, 3, 2, 1)
	quarters := tour.AddRound(models.Round{Kind: models.Elim, Number: 1})
	semis := tour.AddRound(models.Round{Kind: models.Elim, Number: 2})
	_, err := SetLevel(tour, models.Quarterfinals, false)
	require.NoError(t, err)

	breaks, err := Break(tour)
	require.NoError(t, err)
	require.Len(t, breaks, 6)

	require.NoError(t, SeedElimination(tour, quarters.ID))
	debates := tour.Debates(quarters.ID)
	require.Len(t, debates, 4)
	// 1 v 8 and 2 v 7 are byes, 4 v 5 and 3 v 6 are contested
	assert.True(t, debates[0].IsPseudo())
	assert.Equal(t, breaks[0], debates[0].Aff)
	assert.Equal(t, []int{breaks[3], breaks[4]}, debates[1].EntryIDs())
	assert.True(t, debates[2].IsPseudo())
	assert.Equal(t, []int{breaks[2], breaks[5]}, debates[3].EntryIDs())

	assert.True(t, errors.IsKind(SeedElimination(tour, quarters.ID), errors.ErrPrecondition), "already paired")

	require.NoError(t, lifecycle.Start(tour, quarters.ID))
	err = Advance(tour, quarters.ID, semis.ID)
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition), "undecided debates")

	require.NoError(t, lifecycle.EnterBallot(tour, lifecycle.Ballot{DebateID: debates[1].ID(), EntryID: breaks[4], Outcome: models.Win}))
	require.NoError(t, lifecycle.EnterBallot(tour, lifecycle.Ballot{DebateID: debates[3].ID(), EntryID: breaks[2], Outcome: models.Win}))
	require.NoError(t, Advance(tour, quarters.ID, semis.ID))

	semiDebates := tour.Debates(semis.ID)
	require.Len(t, semiDebates, 2)
	assert.Equal(t, []int{breaks[0], breaks[4]}, semiDebates[0].EntryIDs())
	assert.Equal(t, []int{breaks[1], breaks[2]}, semiDebates[1].EntryIDs())
}

func TestSeedElimination_Rejections(t *testing.T) {
	tour := newTournament(t, 3, 2)
	prelim := tour.AddRound(models.Round{Kind: models.Prelim, Number: 1})
	unleveled := tour.AddRound(models.Round{Kind: models.Elim, Number: 1})

	assert.True(t, errors.IsKind(SeedElimination(tour, prelim.ID), errors.ErrValidation))
	assert.True(t, errors.IsKind(SeedElimination(tour, unleveled.ID), errors.ErrPrecondition))
	assert.True(t, errors.IsKind(SeedElimination(tour, 999), errors.ErrNotFound))

	_, err := SetLevel(tour, models.Finals, false)
	require.NoError(t, err)
	assert.True(t, errors.IsKind(SeedElimination(tour, unleveled.ID), errors.ErrPrecondition), "nobody broke")
}
