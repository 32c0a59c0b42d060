package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/testutil"
)

// fourWithResults pairs four entries in one decided prelim: 1 and 3 win
func fourWithResults(es *[]*models.Entry) func(b *testutil.Builder) {
	return func(b *testutil.Builder) {
		*es = b.Entries(4)
		r := b.Prelim(1)
		e := *es
		b.Decide(b.Pair(r, e[0], e[1]), e[0])
		b.Decide(b.Pair(r, e[2], e[3]), e[2])
	}
}

func TestBreak(t *testing.T) {
	var es []*models.Entry
	f := newFixture(t, fourWithResults(&es))
	svc := NewBracketService(f.log, f.store)
	ctx := context.Background()

	_, err := svc.Break(ctx)
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition), "break level not set")

	_, err = svc.SetBreakLevel(ctx, models.Finals, false)
	require.NoError(t, err)
	res, err := svc.Break(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Finals, res.Level)
	assert.ElementsMatch(t, []int{es[0].ID, es[2].ID}, res.Entries)

	f.read(t, func(tour *models.Tournament) {
		assert.Equal(t, res.Entries, tour.Breaks)
	})
}

func TestSetBreakLevel_DiscardNeedsConfirmation(t *testing.T) {
	f := newFixture(t, nil)
	rounds := NewRoundService(f.log, f.store)
	svc := NewBracketService(f.log, f.store)
	ctx := context.Background()

	for n := 1; n <= 3; n++ {
		_, err := rounds.CreateRound(ctx, Round{Kind: models.Elim, Number: n})
		require.NoError(t, err)
	}

	_, err := svc.SetBreakLevel(ctx, models.Semifinals, false)
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition), "got %v", err)

	discarded, err := svc.SetBreakLevel(ctx, models.Semifinals, true)
	require.NoError(t, err)
	assert.Len(t, discarded, 1)

	list, _ := rounds.ListRounds(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "Semifinals", list[0].Name)
	assert.Equal(t, "Finals", list[1].Name)
}

func TestFillGaps_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	rounds := NewRoundService(f.log, f.store)
	svc := NewBracketService(f.log, f.store)
	ctx := context.Background()

	_, err := svc.SetBreakLevel(ctx, models.Octofinals, false)
	require.NoError(t, err)
	for _, l := range []models.Outround{models.Octofinals, models.Finals} {
		_, err := rounds.CreateRound(ctx, Round{Kind: models.Elim, Level: l})
		require.NoError(t, err)
	}

	created, err := svc.FillGaps(ctx)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, models.Quarterfinals, created[0].Level)
	assert.Equal(t, models.Semifinals, created[1].Level)

	created, err = svc.FillGaps(ctx)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestSeedEliminationAndAdvance(t *testing.T) {
	var es []*models.Entry
	f := newFixture(t, fourWithResults(&es))
	rounds := NewRoundService(f.log, f.store)
	ballots := NewBallotService(f.log, f.store, nil)
	svc := NewBracketService(f.log, f.store)
	rec := &recorder{}
	svc.SetBroadcaster(rec)
	ctx := context.Background()

	_, err := svc.SetBreakLevel(ctx, models.Semifinals, false)
	require.NoError(t, err)
	semis, err := rounds.CreateRound(ctx, Round{Kind: models.Elim, Level: models.Semifinals, JudgesPerDebate: 1})
	require.NoError(t, err)
	finals, err := rounds.CreateRound(ctx, Round{Kind: models.Elim, Level: models.Finals, JudgesPerDebate: 1})
	require.NoError(t, err)

	err = svc.SeedElimination(ctx, semis.ID)
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition), "nobody has broken")

	require.NoError(t, svc.SetCleanBreak(ctx, false))
	_, err = svc.Break(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.SeedElimination(ctx, semis.ID))
	assert.Contains(t, rec.kinds(), "pairing_updated")

	var debates []*models.Debate
	f.read(t, func(tour *models.Tournament) {
		for _, d := range tour.Debates(semis.ID) {
			debates = append(debates, &models.Debate{Aff: d.Aff, Neg: d.Neg})
		}
		require.Len(t, debates, 2)
		seeds := tour.Breaks
		assert.Equal(t, seeds[0], debates[0].Aff, "top seed meets the bottom seed")
		assert.Equal(t, seeds[3], debates[0].Neg)
	})

	_, err = rounds.StartRound(ctx, semis.ID)
	require.NoError(t, err)
	var ids []int
	f.read(t, func(tour *models.Tournament) {
		for _, d := range tour.Debates(semis.ID) {
			ids = append(ids, d.ID())
		}
	})
	err = svc.Advance(ctx, semis.ID, finals.ID)
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition), "no winners yet")

	for i, id := range ids {
		require.NoError(t, ballots.EnterBallot(ctx, lifecycle.Ballot{DebateID: id, EntryID: debates[i].Aff, Outcome: models.Win}))
	}
	require.NoError(t, svc.Advance(ctx, semis.ID, finals.ID))
	f.read(t, func(tour *models.Tournament) {
		final := tour.Debates(finals.ID)
		require.Len(t, final, 1)
		assert.Equal(t, debates[0].Aff, final[0].Aff)
		assert.Equal(t, debates[1].Aff, final[0].Neg)
	})
}
