// Package state owns the in-memory tournament. Every mutation runs on a
// private copy under a single writer lock; the copy replaces the live
// tournament only after the mutation succeeded and the snapshot was saved.
package state

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/metrics"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/repository"
)

// Persister saves committed snapshots
type Persister interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
}

// Loader reads a stored snapshot
type Loader interface {
	LoadSnapshot(ctx context.Context, id string) (*models.Snapshot, error)
}

// Store serialises access to one tournament
type Store struct {
	mu      sync.RWMutex
	tour    *models.Tournament
	version uint64

	log     logger.Logger
	repo    Persister
	metrics *metrics.Metrics
}

// New wraps a tournament. repo and m may be nil.
func New(log logger.Logger, repo Persister, m *metrics.Metrics, tour *models.Tournament) *Store {
	return &Store{tour: tour, log: log, repo: repo, metrics: m}
}

// Open loads tournament id from repo
func Open(ctx context.Context, log logger.Logger, repo interface {
	Persister
	Loader
}, m *metrics.Metrics, id string) (*Store, error) {
	snap, err := repo.LoadSnapshot(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFoundf("tournament %s not found", id)
	}
	if err != nil {
		return nil, errors.IO("loading tournament", err)
	}
	tour, err := models.Restore(*snap)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "stored tournament is inconsistent")
	}
	log.Info("Tournament loaded", "tournament_id", id, "entries", tour.EntryCount(), "rounds", len(tour.Rounds()))
	return New(log, repo, m, tour), nil
}

// ID returns the tournament's identifier
func (s *Store) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tour.ID
}

// Version counts committed mutations
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Read runs fn against the live tournament. fn must neither modify t nor
// keep references to it after returning.
func (s *Store) Read(fn func(t *models.Tournament) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.tour)
}

// Snapshot copies the live tournament
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tour.Snapshot()
}

// Update applies fn to a copy of the tournament. When fn fails, or the copy
// cannot be saved, the live tournament is left exactly as it was.
func (s *Store) Update(ctx context.Context, op string, fn func(t *models.Tournament) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrPrecondition, "request cancelled")
	}

	work := s.tour.Clone()
	if err := fn(work); err != nil {
		s.metrics.Mutation(metrics.MutationRejected)
		if errors.KindOf(err) == errors.ErrInternal {
			s.log.Error("Mutation failed", "op", op, "error", err)
		} else {
			s.log.Warn("Mutation rejected", "op", op, "error", err)
		}
		return err
	}

	if s.repo != nil {
		if err := s.repo.SaveSnapshot(ctx, work.Snapshot()); err != nil {
			s.metrics.Mutation(metrics.MutationFailed)
			s.log.Error("Failed to save tournament", "op", op, "error", err)
			return errors.IO("saving tournament", err)
		}
	}

	s.tour = work
	s.version++
	s.metrics.Mutation(metrics.MutationCommitted)
	s.log.Debug("Mutation committed", "op", op, "version", s.version)
	return nil
}

// Replace swaps in a whole tournament, as when importing
func (s *Store) Replace(ctx context.Context, tour *models.Tournament) error {
	return s.Update(ctx, "replace", func(t *models.Tournament) error {
		*t = *tour.Clone()
		return nil
	})
}
