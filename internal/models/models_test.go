package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*Tournament, *Round, *Judge, *Room) {
	t.Helper()
	tour := NewTournament("t1", "Invitational", 2, 42)
	round := tour.AddRound(Round{Name: "Round 1", Kind: Prelim, Number: 1, JudgesPerDebate: 1})
	judge := tour.AddJudge("Pat Judge", 0)
	room := tour.AddRoom("101")
	return tour, round, judge, room
}

func TestOutcome_Complement(t *testing.T) {
	tests := []struct {
		in, want Outcome
	}{
		{Win, Loss},
		{Loss, Win},
		{Bye, Forfeit},
		{Forfeit, Bye},
		{NonCompeting, NoDecision},
		{NoDecision, NoDecision},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Complement())
		})
	}
}

func TestFlight_Overlaps(t *testing.T) {
	assert.True(t, FlightNone.Overlaps(FlightA))
	assert.True(t, FlightB.Overlaps(FlightNone))
	assert.True(t, FlightA.Overlaps(FlightA))
	assert.False(t, FlightA.Overlaps(FlightB))
	assert.Equal(t, FlightB, FlightNone.Toggle())
	assert.Equal(t, FlightA, FlightB.Toggle())
}

func TestOutround_Levels(t *testing.T) {
	assert.Equal(t, Semifinals, Quarterfinals.Next())
	assert.Equal(t, Outround(0), Finals.Next())
	assert.Equal(t, 3, Quarterfinals.Remaining())
	assert.Equal(t, 5, DoubleOctofinals.Remaining())
	assert.False(t, Outround(0).Valid())
	assert.False(t, Outround(6).Valid())
	assert.Equal(t, 8, Quarterfinals.Capacity())
}

func TestEnums_TextEncoding(t *testing.T) {
	type payload struct {
		Outcome  Outcome     `json:"outcome"`
		Status   RoundStatus `json:"status"`
		Level    Outround    `json:"level"`
		Priority Priority    `json:"priority"`
	}
	in := payload{Outcome: NonCompeting, Status: InProgress, Level: Octofinals, Priority: PriorityUnavailable}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"outcome":"non_competing","status":"IN_PROGRESS","level":"octofinals","priority":"unavailable"}`, string(data))

	var out payload
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`{"outcome":"draw"}`), &out))
}

func TestDebate_Classification(t *testing.T) {
	tests := []struct {
		name    string
		debate  *Debate
		isTrue  bool
		pseudo  bool
		decided bool
	}{
		{"empty slot", NewDebate(0, 0), false, false, false},
		{"undecided", NewDebate(1, 2), true, false, false},
		{"decided", &Debate{Aff: 1, Neg: 2, AffOutcome: Win, NegOutcome: Loss}, true, false, true},
		{"bye", NewPseudoDebate(1, Bye), false, true, false},
		{"non competing", NewPseudoDebate(1, NonCompeting), false, true, false},
		{"half filled", NewDebate(1, 0), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTrue, tt.debate.IsTrue())
			assert.Equal(t, tt.pseudo, tt.debate.IsPseudo())
			assert.Equal(t, tt.decided, tt.debate.IsDecided())
		})
	}

	d := &Debate{Aff: 3, Neg: 4, AffOutcome: Loss, NegOutcome: Win}
	assert.Equal(t, 4, d.Winner())
	assert.Equal(t, 3, d.Opponent(4))
	assert.Equal(t, Loss, d.OutcomeFor(3))
	assert.Equal(t, NoDecision, d.OutcomeFor(9))
}

func TestJudge_Strikes(t *testing.T) {
	j := &Judge{ID: 1, SchoolID: 10, SchoolStrikes: []int{11}, CompetitorStrikes: []int{99}}
	assert.True(t, j.StrikesSchool(10), "affiliation is an implicit strike")
	assert.True(t, j.StrikesSchool(11))
	assert.False(t, j.StrikesSchool(12))
	assert.False(t, j.StrikesSchool(0))
	assert.True(t, j.StrikesCompetitor(99))
	assert.Equal(t, PriorityNormal, j.PriorityFor(5))
}

func TestTournament_AddEntryDrawsStableTiebreak(t *testing.T) {
	a := NewTournament("a", "A", 2, 7)
	b := NewTournament("b", "B", 2, 7)
	ea := a.AddEntry([]Competitor{{Name: "Ann"}, {Name: "Bo"}})
	eb := b.AddEntry([]Competitor{{Name: "Cy"}, {Name: "Di"}})

	assert.Equal(t, ea.Tiebreak, eb.Tiebreak, "same seed and id give the same draw")
	assert.GreaterOrEqual(t, ea.Tiebreak, 0.0)
	assert.Less(t, ea.Tiebreak, 1.0)
	assert.True(t, ea.EligibleToBreak)
	assert.Equal(t, "Ann & Bo", ea.Name())
	assert.NotZero(t, ea.Competitors[0].ID)
	assert.NotEqual(t, ea.Competitors[0].ID, ea.Competitors[1].ID)
}

func TestTournament_InsertAndRemoveContainer(t *testing.T) {
	tour, round, judge, room := newFixture(t)

	first := NewDebate(0, 0)
	require.NoError(t, tour.InsertContainer(round.ID, first, -1))
	second := NewContainer(KindJudgeRoomAssignment)
	require.NoError(t, tour.InsertContainer(round.ID, second, 0))
	assert.Equal(t, []int{second.ID(), first.ID()}, round.Items)

	require.NoError(t, tour.AssignJudge(first.ID(), judge.ID))
	require.NoError(t, tour.SetRoom(first.ID(), room.ID))
	assert.Equal(t, []int{first.ID()}, tour.Usage(ResourceJudge, judge.ID))
	assert.Equal(t, []int{first.ID()}, tour.Usage(ResourceRoom, room.ID))

	require.NoError(t, tour.Lock(first.ID(), ResourceKey{ResourceJudge, judge.ID}))
	pos, err := tour.RemoveContainer(first.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Empty(t, tour.Usage(ResourceJudge, judge.ID))
	assert.Empty(t, tour.Usage(ResourceRoom, room.ID))
	assert.False(t, tour.IsLocked(first.ID(), ResourceKey{ResourceJudge, judge.ID}))
	assert.Equal(t, []int{second.ID()}, round.Items)

	assert.Error(t, tour.InsertContainer(round.ID, second, 0), "already registered")
}

func TestTournament_JudgeAssignmentCannotHoldRoom(t *testing.T) {
	tour, round, _, room := newFixture(t)
	c := NewContainer(KindJudgeAssignment)
	require.NoError(t, tour.InsertContainer(round.ID, c, -1))
	assert.Error(t, tour.SetRoom(c.ID(), room.ID))
}

func TestTournament_LocksFollowResources(t *testing.T) {
	tour, round, judge, room := newFixture(t)
	d := NewDebate(0, 0)
	require.NoError(t, tour.InsertContainer(round.ID, d, -1))

	assert.Error(t, tour.Lock(d.ID(), ResourceKey{ResourceJudge, judge.ID}), "judge not in container")

	require.NoError(t, tour.AssignJudge(d.ID(), judge.ID))
	require.NoError(t, tour.SetRoom(d.ID(), room.ID))
	require.NoError(t, tour.Lock(d.ID(), ResourceKey{ResourceJudge, judge.ID}))
	require.NoError(t, tour.Lock(d.ID(), ResourceKey{ResourceRoom, room.ID}))
	assert.Equal(t, []int{judge.ID}, tour.LockedJudges(d.ID()))
	assert.True(t, tour.RoomLocked(d.ID()))

	other := tour.AddRoom("102")
	require.NoError(t, tour.SetRoom(d.ID(), other.ID))
	assert.False(t, tour.RoomLocked(d.ID()), "replacing the room drops its lock")

	require.NoError(t, tour.RemoveJudge(d.ID(), judge.ID))
	assert.Empty(t, tour.LockedJudges(d.ID()))
}

func TestTournament_DeleteJudgeUnlinksContainers(t *testing.T) {
	tour, round, judge, _ := newFixture(t)
	d := NewDebate(0, 0)
	require.NoError(t, tour.InsertContainer(round.ID, d, -1))
	require.NoError(t, tour.AssignJudge(d.ID(), judge.ID))

	tour.DeleteJudge(judge.ID)
	assert.Zero(t, d.JudgeCount())
	_, ok := tour.Judge(judge.ID)
	assert.False(t, ok)
}

func TestTournament_SnapshotRestoreIsLossless(t *testing.T) {
	tour, round, judge, room := newFixture(t)
	school := tour.AddSchool("North")
	a := tour.AddEntry([]Competitor{{Name: "A1", SchoolID: school.ID}, {Name: "A2"}})
	b := tour.AddEntry([]Competitor{{Name: "B1"}, {Name: "B2"}})
	judge.SchoolStrikes = []int{school.ID}
	judge.Priorities = map[int]Priority{round.ID: PriorityHigh}
	room.Priorities = map[int]Priority{round.ID: PriorityLow}

	d := NewDebate(a.ID, b.ID)
	d.AffOutcome, d.NegOutcome = Win, Loss
	require.NoError(t, tour.InsertContainer(round.ID, d, -1))
	require.NoError(t, tour.SetFlight(d.ID(), FlightB))
	require.NoError(t, tour.AssignJudge(d.ID(), judge.ID))
	require.NoError(t, tour.SetRoom(d.ID(), room.ID))
	require.NoError(t, tour.Lock(d.ID(), ResourceKey{ResourceRoom, room.ID}))
	tour.BreakLevelSet, tour.BreakLevel, tour.Breaks = true, Semifinals, []int{a.ID}

	snap := tour.Snapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := Restore(decoded)
	require.NoError(t, err)
	if diff := cmp.Diff(snap, restored.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, restored.RoomLocked(d.ID()))
	assert.Equal(t, []int{d.ID()}, restored.Usage(ResourceJudge, judge.ID))

	next := restored.AddSchool("South")
	assert.Greater(t, next.ID, d.ID(), "restored sequence continues past existing ids")
}

func TestTournament_CloneIsIndependent(t *testing.T) {
	tour, round, judge, _ := newFixture(t)
	d := NewDebate(0, 0)
	require.NoError(t, tour.InsertContainer(round.ID, d, -1))

	c := tour.Clone()
	require.NoError(t, c.AssignJudge(d.ID(), judge.ID))
	cj, _ := c.Judge(judge.ID)
	cj.Name = "Changed"

	assert.Zero(t, d.JudgeCount())
	assert.Equal(t, "Pat Judge", judge.Name)
	assert.Empty(t, tour.Usage(ResourceJudge, judge.ID))
}

func TestRestore_RejectsDanglingReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"missing container", func(s *Snapshot) { s.Rounds[0].Items = append(s.Rounds[0].Items, 999) }},
		{"orphan container", func(s *Snapshot) { s.Rounds[0].Items = nil }},
		{"missing judge", func(s *Snapshot) { s.Containers[0].JudgeIDs = []int{999} }},
		{"missing entry", func(s *Snapshot) { s.Containers[0].Aff = 999 }},
		{"missing break", func(s *Snapshot) { s.Tournament.Breaks = []int{999} }},
		{"lock on absent judge", func(s *Snapshot) {
			s.Locks = append(s.Locks, LockRecord{ContainerID: s.Containers[0].ID, Kind: ResourceJudge, ResourceID: 999})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour, round, _, _ := newFixture(t)
			require.NoError(t, tour.InsertContainer(round.ID, NewDebate(0, 0), -1))
			snap := tour.Snapshot()
			tt.mutate(&snap)
			_, err := Restore(snap)
			assert.Error(t, err)
		})
	}
}
