package services

import (
	"context"

	"github.com/kcoltin/SWSDITAB-sub001/internal/bracket"
	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// BracketService handles the break and the elimination rounds
type BracketService struct {
	notifier
	log   logger.Logger
	store Store
}

// NewBracketService creates a new BracketService
func NewBracketService(log logger.Logger, store Store) *BracketService {
	return &BracketService{log: log, store: store}
}

// BreakResult lists the entries that broke, in seed order
type BreakResult struct {
	Level   models.Outround `json:"level"`
	Clean   bool            `json:"clean"`
	Entries []int           `json:"entries"`
}

// SetBreakLevel sets the bracket level and renumbers the elimination rounds.
// Surplus elimination rounds are discarded only with confirmDiscard; their
// IDs are returned.
func (s *BracketService) SetBreakLevel(ctx context.Context, level models.Outround, confirmDiscard bool) ([]int, error) {
	var discarded []int
	err := s.store.Update(ctx, "set break level", func(t *models.Tournament) error {
		d, err := bracket.SetLevel(t, level, confirmDiscard)
		if err != nil {
			return err
		}
		for _, id := range d {
			for _, j := range t.Judges() {
				delete(j.Priorities, id)
			}
			for _, r := range t.Rooms() {
				delete(r.Priorities, id)
			}
		}
		discarded = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Break level set", "level", level, "discarded_rounds", len(discarded))
	return discarded, nil
}

// SetCleanBreak toggles clean-break semantics for the next Break
func (s *BracketService) SetCleanBreak(ctx context.Context, clean bool) error {
	return s.store.Update(ctx, "set clean break", func(t *models.Tournament) error {
		t.CleanBreak = clean
		return nil
	})
}

// Break commits the top of the standings as the break
func (s *BracketService) Break(ctx context.Context) (*BreakResult, error) {
	var res BreakResult
	err := s.store.Update(ctx, "break", func(t *models.Tournament) error {
		breaks, err := bracket.Break(t)
		if err != nil {
			return err
		}
		res = BreakResult{Level: t.BreakLevel, Clean: t.CleanBreak, Entries: breaks}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Break computed", "level", res.Level, "clean", res.Clean, "breaking", len(res.Entries))
	return &res, nil
}

// FillGaps creates the missing intermediate elimination levels
func (s *BracketService) FillGaps(ctx context.Context) ([]models.Round, error) {
	var created []models.Round
	err := s.store.Update(ctx, "fill gaps", func(t *models.Tournament) error {
		for _, r := range bracket.FillGaps(t) {
			created = append(created, *r.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		s.log.Info("Bracket gaps filled", "rounds_created", len(created))
	}
	return created, nil
}

// SeedElimination pairs the break into the first elimination round
func (s *BracketService) SeedElimination(ctx context.Context, roundID int) error {
	err := s.store.Update(ctx, "seed elimination", func(t *models.Tournament) error {
		if !t.BreakLevelSet || len(t.Breaks) == 0 {
			return errors.Precondition("compute the break before seeding elimination rounds")
		}
		return bracket.SeedElimination(t, roundID)
	})
	if err != nil {
		return err
	}
	s.log.Info("Elimination round seeded", "round_id", roundID)
	s.pairingUpdated(roundID)
	return nil
}

// Advance pairs the winners of one elimination round into the next
func (s *BracketService) Advance(ctx context.Context, fromRoundID, toRoundID int) error {
	err := s.store.Update(ctx, "advance", func(t *models.Tournament) error {
		return bracket.Advance(t, fromRoundID, toRoundID)
	})
	if err != nil {
		return err
	}
	s.log.Info("Winners advanced", "from_round_id", fromRoundID, "to_round_id", toRoundID)
	s.pairingUpdated(toRoundID)
	return nil
}
