package services

import (
	"context"

	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/metrics"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/ranking"
)

// BallotService records debate results
type BallotService struct {
	notifier
	log     logger.Logger
	store   Store
	metrics *metrics.Metrics
}

// NewBallotService creates a new BallotService. m may be nil.
func NewBallotService(log logger.Logger, store Store, m *metrics.Metrics) *BallotService {
	return &BallotService{log: log, store: store, metrics: m}
}

// recompute refreshes every record and every started round's status
func recompute(t *models.Tournament) {
	ranking.Recompute(t)
	lifecycle.RecomputeAll(t)
}

func (s *BallotService) apply(ctx context.Context, op string, debateID int, fn func(t *models.Tournament) error) error {
	var roundID int
	var changes []statusChange
	err := s.store.Update(ctx, op, func(t *models.Tournament) error {
		before := statuses(t)
		if err := fn(t); err != nil {
			return err
		}
		d, _ := t.Debate(debateID)
		roundID = d.RoundID()
		recompute(t)
		changes = changedStatuses(t, before)
		return nil
	})
	if err != nil {
		return err
	}
	s.ballotEntered(roundID, debateID)
	s.statusChanges(changes)
	return nil
}

// EnterBallot records a result. On a contested debate the opponent receives
// the complementary outcome.
func (s *BallotService) EnterBallot(ctx context.Context, b lifecycle.Ballot) error {
	err := s.apply(ctx, "enter ballot", b.DebateID, func(t *models.Tournament) error {
		return lifecycle.EnterBallot(t, b)
	})
	if err != nil {
		return err
	}
	s.metrics.Ballot(metrics.BallotEntered)
	s.log.Info("Ballot entered", "debate_id", b.DebateID, "entry_id", b.EntryID, "outcome", b.Outcome)
	return nil
}

// RemoveBallot clears a debate's result
func (s *BallotService) RemoveBallot(ctx context.Context, debateID int) error {
	err := s.apply(ctx, "remove ballot", debateID, func(t *models.Tournament) error {
		return lifecycle.RemoveBallot(t, debateID)
	})
	if err != nil {
		return err
	}
	s.metrics.Ballot(metrics.BallotRemoved)
	s.log.Info("Ballot removed", "debate_id", debateID)
	return nil
}
