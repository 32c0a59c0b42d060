package state

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/metrics"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/repository/mock"
	tu "github.com/kcoltin/SWSDITAB-sub001/internal/testutil"
)

func newStore(t *testing.T) (*Store, *mock.Repository) {
	t.Helper()
	repo := mock.NewRepository(tu.NewTestRepository(t))
	return New(logger.Discard(), repo, metrics.New(), models.NewTournament("t1", "Test", 1, 7)), repo
}

func schoolCount(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	require.NoError(t, s.Read(func(tour *models.Tournament) error {
		n = len(tour.Schools())
		return nil
	}))
	return n
}

func TestUpdate_CommitsAndPersists(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	err := s.Update(ctx, "add school", func(tour *models.Tournament) error {
		tour.AddSchool("North")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, schoolCount(t, s))
	assert.Equal(t, uint64(1), s.Version())
	assert.Equal(t, 1, repo.Saves)

	snap, err := repo.LoadSnapshot(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, snap.Schools, 1)
	assert.Equal(t, "North", snap.Schools[0].Name)
}

func TestUpdate_RejectedMutationLeavesStateUntouched(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	err := s.Update(ctx, "half done", func(tour *models.Tournament) error {
		tour.AddSchool("North")
		return errors.Validation("second half failed")
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ErrValidation))
	assert.Zero(t, schoolCount(t, s))
	assert.Zero(t, s.Version())
	assert.Zero(t, repo.Saves)
	expected := `
# HELP mutations_total Tournament mutations by result.
# TYPE mutations_total counter
mutations_total{result="rejected"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(s.metrics.Registry(), strings.NewReader(expected), "mutations_total"))
}

func TestUpdate_SaveFailureKeepsMemoryConsistent(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()
	repo.SaveSnapshotError = stderrors.New("disk full")

	err := s.Update(ctx, "add school", func(tour *models.Tournament) error {
		tour.AddSchool("North")
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.ErrIO))
	assert.Zero(t, schoolCount(t, s), "nothing committed when the save failed")

	repo.SaveSnapshotError = nil
	require.NoError(t, s.Update(ctx, "add school", func(tour *models.Tournament) error {
		tour.AddSchool("North")
		return nil
	}))
	assert.Equal(t, 1, schoolCount(t, s))
}

func TestUpdate_CancelledContext(t *testing.T) {
	s, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Update(ctx, "noop", func(*models.Tournament) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestUpdate_SerialisesWriters(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, "add school", func(tour *models.Tournament) error {
				tour.AddSchool("S")
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, schoolCount(t, s))
	assert.Equal(t, uint64(20), s.Version())
}

func TestOpen(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, "add school", func(tour *models.Tournament) error {
		tour.AddSchool("North")
		return nil
	}))

	reopened, err := Open(ctx, logger.Discard(), repo, nil, "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", reopened.ID())
	assert.Equal(t, 1, schoolCount(t, reopened))

	_, err = Open(ctx, logger.Discard(), repo, nil, "nope")
	assert.True(t, errors.IsKind(err, errors.ErrNotFound))

	repo.LoadSnapshotError = stderrors.New("unreadable")
	_, err = Open(ctx, logger.Discard(), repo, nil, "t1")
	assert.True(t, errors.IsKind(err, errors.ErrIO))
}

func TestReplace(t *testing.T) {
	s, _ := newStore(t)
	other := models.NewTournament("t1", "Imported", 2, 9)
	other.AddSchool("A")
	other.AddSchool("B")

	require.NoError(t, s.Replace(context.Background(), other))
	assert.Equal(t, 2, schoolCount(t, s))
	assert.Equal(t, "Imported", s.Snapshot().Tournament.Name)

	other.AddSchool("C")
	assert.Equal(t, 2, schoolCount(t, s), "store holds its own copy")
}
