package services

import (
	"context"
	"time"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/metrics"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/pairing"
)

// PairingService runs automated judge and room assignment
type PairingService struct {
	notifier
	log      logger.Logger
	store    Store
	metrics  *metrics.Metrics
	defaults pairing.Options
}

// NewPairingService creates a new PairingService. The node budget and timeout
// apply when a request leaves them at zero. m may be nil.
func NewPairingService(log logger.Logger, store Store, m *metrics.Metrics, nodeBudget int, timeout time.Duration) *PairingService {
	return &PairingService{
		log:      log,
		store:    store,
		metrics:  m,
		defaults: pairing.Options{NodeBudget: nodeBudget, Timeout: timeout},
	}
}

// AutoAssign fills the open judge seats and rooms of a round. The round is
// left untouched when the search fails or is cancelled.
func (s *PairingService) AutoAssign(ctx context.Context, roundID int, opts pairing.Options) (*pairing.Plan, error) {
	if opts.NodeBudget == 0 {
		opts.NodeBudget = s.defaults.NodeBudget
	}
	if opts.Timeout == 0 {
		opts.Timeout = s.defaults.Timeout
	}

	var plan pairing.Plan
	var changes []statusChange
	start := time.Now()
	err := s.store.Update(ctx, "auto assign", func(t *models.Tournament) error {
		before := statuses(t)
		p, err := pairing.AutoAssign(ctx, t, roundID, opts)
		plan = p
		if err != nil {
			return err
		}
		lifecycle.RecomputeStatus(t, roundID)
		changes = changedStatuses(t, before)
		return nil
	})

	switch {
	case plan.Nodes == 0 && err != nil:
		// rejected before searching
	case errors.IsKind(err, errors.ErrInfeasible) && plan.Truncated:
		s.metrics.Search(metrics.SearchTruncated, plan.Nodes)
	case errors.IsKind(err, errors.ErrInfeasible):
		s.metrics.Search(metrics.SearchInfeasible, plan.Nodes)
	case plan.Nodes > 0:
		s.metrics.Search(metrics.SearchFeasible, plan.Nodes)
	}
	if err != nil {
		return &plan, err
	}

	s.log.Info("Round auto-assigned",
		"round_id", roundID,
		"placements", len(plan.Placements),
		"conflicts", plan.Conflicts,
		"penalty", plan.Penalty,
		"nodes", plan.Nodes,
		"pruned", plan.Pruned,
		"elapsed", time.Since(start))
	s.pairingUpdated(roundID)
	s.statusChanges(changes)
	return &plan, nil
}

// Consolidate merges standalone assignments into the round's debates
func (s *PairingService) Consolidate(ctx context.Context, roundID int) (int, error) {
	var merged int
	err := s.store.Update(ctx, "consolidate", func(t *models.Tournament) error {
		n, err := pairing.Consolidate(t, roundID)
		merged = n
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Assignments consolidated", "round_id", roundID, "merged", merged)
	s.pairingUpdated(roundID)
	return merged, nil
}
