package repository

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// newTestRepo creates a new in-memory repository for testing.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

var snapshotOpts = cmp.Options{
	cmpopts.EquateEmpty(),
	cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) }),
}

// sampleTournament exercises every column of every snapshot table
func sampleTournament(t *testing.T) *models.Tournament {
	t.Helper()
	tour := models.NewTournament("3f0c8f5e-0d3a-4d43-9d3e-1b8f6c7a2a11", "Spring Invitational", 2, 1<<63+7)
	north := tour.AddSchool("North High")
	south := tour.AddSchool("South High")
	a := tour.AddEntry([]models.Competitor{{Name: "Ann", SchoolID: north.ID}, {Name: "Al", SchoolID: north.ID}})
	b := tour.AddEntry([]models.Competitor{{Name: "Bo", SchoolID: south.ID}, {Name: "Bea"}})
	c := tour.AddEntry([]models.Competitor{{Name: "Cy"}, {Name: "Cat"}})
	c.EligibleToBreak = false

	judge := tour.AddJudge("Judge Judy", south.ID)
	judge.SchoolStrikes = []int{north.ID}
	judge.CompetitorStrikes = []int{c.Competitors[1].ID}
	other := tour.AddJudge("Judge Dredd", 0)
	room := tour.AddRoom("101")

	r1 := tour.AddRound(models.Round{
		Name: "Round 1", Kind: models.Prelim, Number: 1, Status: models.InProgress,
		JudgesPerDebate: 1, SidePolicy: models.SidesFlip, Flighted: true,
		Start:        time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC),
		FlightBStart: time.Date(2026, 3, 7, 10, 30, 0, 0, time.UTC),
		Remarks:      "bring timers",
	})
	judge.Priorities = map[int]models.Priority{r1.ID: models.PriorityHigh}
	room.Priorities = map[int]models.Priority{r1.ID: models.PriorityLow}
	final := tour.AddRound(models.Round{Name: "Finals", Kind: models.Elim, Level: models.Finals, JudgesPerDebate: 3, ASAP: true})

	d := models.NewDebate(a.ID, b.ID)
	if err := tour.InsertContainer(r1.ID, d, -1); err != nil {
		t.Fatal(err)
	}
	d.AffOutcome, d.NegOutcome, d.SidesResolved = models.Win, models.Loss, true
	if err := tour.SetFlight(d.ID(), models.FlightA); err != nil {
		t.Fatal(err)
	}
	if err := tour.AssignJudge(d.ID(), judge.ID); err != nil {
		t.Fatal(err)
	}
	if err := tour.SetRoom(d.ID(), room.ID); err != nil {
		t.Fatal(err)
	}
	if err := tour.Lock(d.ID(), models.ResourceKey{Kind: models.ResourceRoom, ID: room.ID}); err != nil {
		t.Fatal(err)
	}

	bye := models.NewPseudoDebate(c.ID, models.Bye)
	if err := tour.InsertContainer(r1.ID, bye, 0); err != nil {
		t.Fatal(err)
	}
	ja := models.NewContainer(models.KindJudgeAssignment)
	if err := tour.InsertContainer(r1.ID, ja, -1); err != nil {
		t.Fatal(err)
	}
	if err := tour.SetFlight(ja.ID(), models.FlightB); err != nil {
		t.Fatal(err)
	}
	if err := tour.AssignJudge(ja.ID(), other.ID); err != nil {
		t.Fatal(err)
	}
	if err := tour.Lock(ja.ID(), models.ResourceKey{Kind: models.ResourceJudge, ID: other.ID}); err != nil {
		t.Fatal(err)
	}
	jra := models.NewContainer(models.KindJudgeRoomAssignment)
	if err := tour.InsertContainer(final.ID, jra, -1); err != nil {
		t.Fatal(err)
	}

	tour.BreakLevelSet, tour.BreakLevel = true, models.Finals
	tour.Breaks = []int{a.ID, b.ID}
	a.Wins, b.Losses, a.OpponentWins = 1, 1, 0
	return tour
}

// ==================== Snapshot Tests ====================

func TestSaveLoadSnapshot_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	want := sampleTournament(t).Snapshot()

	if err := repo.SaveSnapshot(ctx, want); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	got, err := repo.LoadSnapshot(ctx, want.Tournament.ID)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if diff := cmp.Diff(want, *got, snapshotOpts); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	restored, err := models.Restore(*got)
	if err != nil {
		t.Fatalf("Restore of loaded snapshot failed: %v", err)
	}
	if diff := cmp.Diff(want, restored.Snapshot(), snapshotOpts); diff != "" {
		t.Errorf("restored snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveSnapshot_ReplacesPreviousRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tour := sampleTournament(t)
	if err := repo.SaveSnapshot(ctx, tour.Snapshot()); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	for _, r := range tour.Rounds() {
		tour.DeleteRound(r.ID)
	}
	tour.Name = "Renamed"
	if err := repo.SaveSnapshot(ctx, tour.Snapshot()); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, err := repo.LoadSnapshot(ctx, tour.ID)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if got.Tournament.Name != "Renamed" {
		t.Errorf("expected renamed tournament, got %q", got.Tournament.Name)
	}
	if len(got.Rounds) != 0 || len(got.Containers) != 0 || len(got.Locks) != 0 {
		t.Errorf("expected rounds, containers and locks to be gone, got %d/%d/%d",
			len(got.Rounds), len(got.Containers), len(got.Locks))
	}
	if len(got.Entries) != 3 {
		t.Errorf("expected 3 entries, got %d", len(got.Entries))
	}
}

func TestSaveSnapshot_KeepsTournamentsApart(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := models.NewTournament("a", "A", 1, 1)
	first.AddSchool("Only In A")
	second := models.NewTournament("b", "B", 1, 2)
	if err := repo.SaveSnapshot(ctx, first.Snapshot()); err != nil {
		t.Fatal(err)
	}
	if err := repo.SaveSnapshot(ctx, second.Snapshot()); err != nil {
		t.Fatal(err)
	}

	got, err := repo.LoadSnapshot(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Schools) != 0 {
		t.Errorf("tournament b picked up %d schools from a", len(got.Schools))
	}
}

func TestLoadSnapshot_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.LoadSnapshot(context.Background(), "missing")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadSnapshot_CorruptEnum(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tour := models.NewTournament("t", "T", 1, 1)
	tour.AddRound(models.Round{Name: "R1", Kind: models.Prelim, Number: 1})
	if err := repo.SaveSnapshot(ctx, tour.Snapshot()); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.DB().ExecContext(ctx, `UPDATE rounds SET status = 'HALFWAY'`); err != nil {
		t.Fatal(err)
	}

	_, err := repo.LoadSnapshot(ctx, "t")
	if !stderrors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestListTournaments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	list, err := repo.ListTournaments(ctx)
	if err != nil {
		t.Fatalf("ListTournaments failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}

	tour := sampleTournament(t)
	if err := repo.SaveSnapshot(ctx, tour.Snapshot()); err != nil {
		t.Fatal(err)
	}
	list, err = repo.ListTournaments(ctx)
	if err != nil {
		t.Fatalf("ListTournaments failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 tournament, got %d", len(list))
	}
	got := list[0]
	if got.ID != tour.ID || got.Name != "Spring Invitational" || got.Entries != 3 || got.Rounds != 2 {
		t.Errorf("unexpected summary %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be set")
	}
}

func TestDeleteTournament(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tour := sampleTournament(t)
	if err := repo.SaveSnapshot(ctx, tour.Snapshot()); err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteTournament(ctx, tour.ID); err != nil {
		t.Fatalf("DeleteTournament failed: %v", err)
	}
	if _, err := repo.LoadSnapshot(ctx, tour.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	var orphans int
	if err := repo.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM containers`).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("expected child rows to cascade, found %d containers", orphans)
	}

	if err := repo.DeleteTournament(ctx, tour.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

// ==================== Settings Tests ====================

func TestSettings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetSetting(ctx, "base_url"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	tests := []struct {
		name  string
		value string
	}{
		{"set", "http://192.168.1.10:8080"},
		{"overwrite", "http://tab.local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.SetSetting(ctx, "base_url", tt.value); err != nil {
				t.Fatalf("SetSetting failed: %v", err)
			}
			got, err := repo.GetSetting(ctx, "base_url")
			if err != nil {
				t.Fatalf("GetSetting failed: %v", err)
			}
			if got != tt.value {
				t.Errorf("expected %q, got %q", tt.value, got)
			}
		})
	}
}

func TestPing(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
