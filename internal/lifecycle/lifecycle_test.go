package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// fixture builds a tournament with n entries and one prelim round
func fixture(t *testing.T, n int) (*models.Tournament, *models.Round, []*models.Entry) {
	t.Helper()
	tour := models.NewTournament("t", "T", 1, 3)
	var entries []*models.Entry
	for range n {
		entries = append(entries, tour.AddEntry([]models.Competitor{{Name: "x"}}))
	}
	r := tour.AddRound(models.Round{Name: "R1", Kind: models.Prelim, Number: 1, JudgesPerDebate: 1})
	return tour, r, entries
}

func pairAll(t *testing.T, tour *models.Tournament, roundID int, entries []*models.Entry) []*models.Debate {
	t.Helper()
	var out []*models.Debate
	for i := 0; i+1 < len(entries); i += 2 {
		d := models.NewDebate(entries[i].ID, entries[i+1].ID)
		require.NoError(t, InsertItem(tour, roundID, d, -1))
		out = append(out, d)
	}
	return out
}

func TestRoundStatus_CompletesOnlyWhenEveryDebateIsDecided(t *testing.T) {
	tour, r, entries := fixture(t, 8)
	debates := pairAll(t, tour, r.ID, entries)
	require.NoError(t, Start(tour, r.ID))
	assert.Equal(t, models.InProgress, r.Status)

	for _, d := range debates[:3] {
		require.NoError(t, EnterBallot(tour, Ballot{DebateID: d.ID(), EntryID: d.Aff, Outcome: models.Win}))
		RecomputeStatus(tour, r.ID)
	}
	decided, total := DecidedCount(tour, r.ID)
	assert.Equal(t, 3, decided)
	assert.Equal(t, 4, total)
	assert.Equal(t, models.InProgress, r.Status)

	require.NoError(t, EnterBallot(tour, Ballot{DebateID: debates[3].ID(), EntryID: debates[3].Neg, Outcome: models.Win}))
	RecomputeStatus(tour, r.ID)
	assert.Equal(t, models.Completed, r.Status)

	require.NoError(t, RemoveBallot(tour, debates[1].ID()))
	RecomputeStatus(tour, r.ID)
	assert.Equal(t, models.InProgress, r.Status, "removing a result never returns to NOT_STARTED")
}

func TestRemoveBallot_LaterRoundStarted(t *testing.T) {
	tour, r, entries := fixture(t, 2)
	d := pairAll(t, tour, r.ID, entries)[0]
	require.NoError(t, Start(tour, r.ID))
	require.NoError(t, EnterBallot(tour, Ballot{DebateID: d.ID(), EntryID: d.Aff, Outcome: models.Win}))

	next := tour.AddRound(models.Round{Name: "Round 2", Kind: models.Prelim, Number: r.Number + 1, JudgesPerDebate: 1})
	require.NoError(t, Start(tour, next.ID))

	err := RemoveBallot(tour, d.ID())
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition), "got %v", err)
	assert.True(t, d.IsDecided())

	require.NoError(t, EnterBallot(tour, Ballot{DebateID: d.ID(), EntryID: d.Neg, Outcome: models.Win}))
	assert.Equal(t, models.Win, d.OutcomeFor(d.Neg))
}

func TestRoundStatus_NotStartedIsSticky(t *testing.T) {
	tour, r, entries := fixture(t, 2)
	pairAll(t, tour, r.ID, entries)

	RecomputeStatus(tour, r.ID)
	assert.Equal(t, models.NotStarted, r.Status)
	assert.False(t, r.Status.HasHappened())
}

func TestRoundStatus_UnassignedEntryBlocksCompletion(t *testing.T) {
	tour, r, entries := fixture(t, 3)
	debates := pairAll(t, tour, r.ID, entries)
	require.NoError(t, Start(tour, r.ID))
	require.NoError(t, EnterBallot(tour, Ballot{DebateID: debates[0].ID(), EntryID: debates[0].Aff, Outcome: models.Win}))
	RecomputeStatus(tour, r.ID)
	assert.Equal(t, models.InProgress, r.Status)
	require.Len(t, UnassignedEntries(tour, r.ID), 1)

	require.NoError(t, InsertItem(tour, r.ID, models.NewPseudoDebate(entries[2].ID, models.Bye), -1))
	RecomputeStatus(tour, r.ID)
	assert.Equal(t, models.Completed, r.Status)
	assert.Len(t, PseudoDebates(tour, r.ID), 1)
}

func TestRoundStatus_EmptyTournamentNeverCompletes(t *testing.T) {
	tour, r, _ := fixture(t, 0)
	require.NoError(t, Start(tour, r.ID))
	assert.Equal(t, models.InProgress, r.Status)
}

func TestEnterBallot_KeepsPairwiseInvariant(t *testing.T) {
	tests := []struct {
		name            string
		outcomeForFirst models.Outcome
		wantFirst       models.Outcome
		wantSecond      models.Outcome
	}{
		{"win", models.Win, models.Win, models.Loss},
		{"loss", models.Loss, models.Loss, models.Win},
		{"bye", models.Bye, models.Bye, models.Forfeit},
		{"forfeit", models.Forfeit, models.Forfeit, models.Bye},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour, r, entries := fixture(t, 2)
			d := pairAll(t, tour, r.ID, entries)[0]
			require.NoError(t, Start(tour, r.ID))

			// a prior ballot the other way round is overwritten consistently
			require.NoError(t, EnterBallot(tour, Ballot{DebateID: d.ID(), EntryID: d.Neg, Outcome: models.Win}))
			require.NoError(t, EnterBallot(tour, Ballot{DebateID: d.ID(), EntryID: d.Aff, Outcome: tt.outcomeForFirst}))
			assert.Equal(t, tt.wantFirst, d.AffOutcome)
			assert.Equal(t, tt.wantSecond, d.NegOutcome)
		})
	}
}

func TestEnterBallot_Rejections(t *testing.T) {
	tour, r, entries := fixture(t, 4)
	debates := pairAll(t, tour, r.ID, entries)
	d := debates[0]

	err := EnterBallot(tour, Ballot{DebateID: d.ID(), EntryID: d.Aff, Outcome: models.Win})
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition), "round not started")

	require.NoError(t, Start(tour, r.ID))

	tests := []struct {
		name   string
		ballot Ballot
		kind   errors.Kind
	}{
		{"unknown debate", Ballot{DebateID: 999, EntryID: d.Aff, Outcome: models.Win}, errors.ErrNotFound},
		{"entry not in debate", Ballot{DebateID: d.ID(), EntryID: debates[1].Aff, Outcome: models.Win}, errors.ErrValidation},
		{"non competing on contested debate", Ballot{DebateID: d.ID(), EntryID: d.Aff, Outcome: models.NonCompeting}, errors.ErrInvalidInput},
		{"no decision", Ballot{DebateID: d.ID(), EntryID: d.Aff, Outcome: models.NoDecision}, errors.ErrInvalidInput},
		{"aff not in debate", Ballot{DebateID: d.ID(), EntryID: d.Aff, Outcome: models.Win, Aff: debates[1].Neg}, errors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnterBallot(tour, tt.ballot)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			assert.Equal(t, models.NoDecision, d.AffOutcome)
			assert.Equal(t, models.NoDecision, d.NegOutcome)
		})
	}
}

func TestEnterBallot_SideSelection(t *testing.T) {
	tour, r, entries := fixture(t, 2)
	d := pairAll(t, tour, r.ID, entries)[0]
	require.NoError(t, Start(tour, r.ID))
	first, second := d.Aff, d.Neg

	require.NoError(t, EnterBallot(tour, Ballot{DebateID: d.ID(), EntryID: first, Outcome: models.Win, Aff: second}))
	assert.True(t, d.SidesResolved)
	assert.Equal(t, second, d.Aff)
	assert.Equal(t, models.Loss, d.AffOutcome)
	assert.Equal(t, models.Win, d.NegOutcome)
}

func TestEnterBallot_PlaceholderTakesPseudoOutcome(t *testing.T) {
	tour, r, entries := fixture(t, 1)
	bye := models.NewPseudoDebate(entries[0].ID, models.Bye)
	require.NoError(t, InsertItem(tour, r.ID, bye, -1))
	require.NoError(t, Start(tour, r.ID))

	require.NoError(t, EnterBallot(tour, Ballot{DebateID: bye.ID(), EntryID: entries[0].ID, Outcome: models.Forfeit}))
	assert.Equal(t, models.Forfeit, bye.AffOutcome)
	assert.Error(t, EnterBallot(tour, Ballot{DebateID: bye.ID(), EntryID: entries[0].ID, Outcome: models.Win}))
	assert.True(t, errors.IsKind(RemoveBallot(tour, bye.ID()), errors.ErrValidation))
}

func TestInsertItem_Validation(t *testing.T) {
	tour, r, entries := fixture(t, 3)
	pairAll(t, tour, r.ID, entries[:2])

	tests := []struct {
		name   string
		debate *models.Debate
		kind   errors.Kind
	}{
		{"entry already placed", models.NewDebate(entries[0].ID, entries[2].ID), errors.ErrConflict},
		{"self pairing", models.NewDebate(entries[2].ID, entries[2].ID), errors.ErrValidation},
		{"unknown entry", models.NewDebate(entries[2].ID, 999), errors.ErrNotFound},
		{"win on placeholder", models.NewPseudoDebate(entries[2].ID, models.Win), errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InsertItem(tour, r.ID, tt.debate, -1)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			assert.Len(t, r.Items, 1)
		})
	}
}

func TestRemoveItem(t *testing.T) {
	tour, r, entries := fixture(t, 4)
	debates := pairAll(t, tour, r.ID, entries)
	require.NoError(t, Start(tour, r.ID))
	require.NoError(t, EnterBallot(tour, Ballot{DebateID: debates[0].ID(), EntryID: debates[0].Aff, Outcome: models.Win}))

	_, err := RemoveItem(tour, debates[0].ID())
	assert.True(t, errors.IsKind(err, errors.ErrPrecondition))

	pos, err := RemoveItem(tour, debates[1].ID())
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Len(t, UnassignedEntries(tour, r.ID), 2)

	require.NoError(t, InsertItem(tour, r.ID, models.NewDebate(entries[3].ID, entries[2].ID), pos))
	assert.Empty(t, UnassignedEntries(tour, r.ID))
}

func TestFlights_AStaysAheadOfB(t *testing.T) {
	tour, r, entries := fixture(t, 8)
	debates := pairAll(t, tour, r.ID, entries)

	assert.True(t, errors.IsKind(ToggleFlight(tour, debates[0].ID()), errors.ErrPrecondition))

	require.NoError(t, SetFlighted(tour, r.ID, true))
	assert.Equal(t, 4, CountFlightA(tour, r.ID))

	require.NoError(t, ToggleFlight(tour, debates[0].ID()))
	require.NoError(t, ToggleFlight(tour, debates[2].ID()))
	assert.Equal(t, []int{debates[1].ID(), debates[3].ID(), debates[2].ID(), debates[0].ID()}, r.Items)
	assert.Equal(t, 2, CountFlightA(tour, r.ID))
	assert.Len(t, FlightDebates(tour, r.ID, models.FlightB), 2)

	// moving a B debate to the front does not break the ordering
	require.NoError(t, MoveItem(tour, debates[2].ID(), 0))
	assert.Equal(t, 2, CountFlightA(tour, r.ID))

	require.NoError(t, ToggleFlight(tour, debates[0].ID()))
	assert.Equal(t, 3, CountFlightA(tour, r.ID))

	extra := models.NewContainer(models.KindJudgeAssignment)
	require.NoError(t, InsertItem(tour, r.ID, extra, -1))
	assert.Equal(t, models.FlightA, extra.Flight())

	require.NoError(t, SetFlighted(tour, r.ID, false))
	assert.Empty(t, FlightDebates(tour, r.ID, models.FlightB))
}

func TestFullyPaired(t *testing.T) {
	tour, r, entries := fixture(t, 2)
	assert.False(t, FullyPaired(tour, r.ID), "entries unassigned")

	d := pairAll(t, tour, r.ID, entries)[0]
	assert.False(t, FullyPaired(tour, r.ID), "no room or judge")

	room := tour.AddRoom("A")
	require.NoError(t, tour.SetRoom(d.ID(), room.ID))
	assert.False(t, FullyPaired(tour, r.ID), "no judge")

	j1, j2 := tour.AddJudge("J1", 0), tour.AddJudge("J2", 0)
	require.NoError(t, tour.AssignJudge(d.ID(), j1.ID))
	assert.True(t, FullyPaired(tour, r.ID))

	require.NoError(t, tour.AssignJudge(d.ID(), j2.ID))
	assert.False(t, FullyPaired(tour, r.ID), "judge count must match exactly")
}

func TestCompare_RoundOrder(t *testing.T) {
	tour := models.NewTournament("t", "T", 1, 1)
	final := tour.AddRound(models.Round{Kind: models.Elim, Level: models.Finals})
	semi := tour.AddRound(models.Round{Kind: models.Elim, Level: models.Semifinals})
	r2 := tour.AddRound(models.Round{Kind: models.Prelim, Number: 2})
	r1 := tour.AddRound(models.Round{Kind: models.Prelim, Number: 1})
	practice := tour.AddRound(models.Round{Kind: models.Practice, Number: 9})

	var got []int
	for _, r := range Ordered(tour) {
		got = append(got, r.ID)
	}
	assert.Equal(t, []int{practice.ID, r1.ID, r2.ID, semi.ID, final.ID}, got)

	assert.False(t, LaterRoundStarted(tour, r1.ID))
	semi.Status = models.InProgress
	assert.True(t, LaterRoundStarted(tour, r1.ID))
	assert.False(t, LaterRoundStarted(tour, final.ID))
}

func TestContenders_ElimRoundsExpectSurvivingBreaks(t *testing.T) {
	tour := models.NewTournament("t", "T", 1, 1)
	var ids []int
	for range 5 {
		ids = append(ids, tour.AddEntry([]models.Competitor{{Name: "x"}}).ID)
	}
	tour.Breaks = ids[:4]
	semi := tour.AddRound(models.Round{Kind: models.Elim, Level: models.Semifinals})
	final := tour.AddRound(models.Round{Kind: models.Elim, Level: models.Finals})

	assert.Len(t, Contenders(tour, semi.ID), 4)

	d1 := &models.Debate{Aff: ids[0], Neg: ids[3], AffOutcome: models.Win, NegOutcome: models.Loss}
	d2 := &models.Debate{Aff: ids[1], Neg: ids[2], AffOutcome: models.Loss, NegOutcome: models.Win}
	require.NoError(t, tour.InsertContainer(semi.ID, d1, -1))
	require.NoError(t, tour.InsertContainer(semi.ID, d2, -1))

	var got []int
	for _, e := range Contenders(tour, final.ID) {
		got = append(got, e.ID)
	}
	assert.Equal(t, []int{ids[0], ids[2]}, got)
}
