package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/kcoltin/SWSDITAB-sub001/internal/bracket"
	"github.com/kcoltin/SWSDITAB-sub001/internal/config"
	"github.com/kcoltin/SWSDITAB-sub001/internal/conflict"
	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/ranking"
)

// NewTournament builds an empty tournament from event settings: a fresh ID
// and seed when none are given, the preliminary rounds and the break level.
func NewTournament(s config.Settings) (*models.Tournament, error) {
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid settings")
	}
	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}
	seed := s.RandomSeed
	if seed == 0 {
		seed = rand.Uint64()
	}

	t := models.NewTournament(id, s.Name, s.TeamSize, seed)
	t.CleanBreak = s.CleanBreak
	for n := 1; n <= s.Prelims; n++ {
		t.AddRound(models.Round{
			Name:            fmt.Sprintf("Round %d", n),
			Kind:            models.Prelim,
			Number:          n,
			JudgesPerDebate: s.JudgesPerDebate,
			SidePolicy:      s.SidePolicy,
		})
	}
	if s.BreakLevel != 0 {
		if _, err := bracket.SetLevel(t, s.BreakLevel, false); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// TournamentService answers the read-side questions and moves whole snapshots
type TournamentService struct {
	log   logger.Logger
	store Store
}

// NewTournamentService creates a new TournamentService
func NewTournamentService(log logger.Logger, store Store) *TournamentService {
	return &TournamentService{log: log, store: store}
}

// Summary is the tournament's headline state
type Summary struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TeamSize      int             `json:"team_size"`
	Version       uint64          `json:"version"`
	Schools       int             `json:"schools"`
	Entries       int             `json:"entries"`
	Judges        int             `json:"judges"`
	Rooms         int             `json:"rooms"`
	Rounds        int             `json:"rounds"`
	BreakLevelSet bool            `json:"break_level_set"`
	BreakLevel    models.Outround `json:"break_level,omitempty"`
	CleanBreak    bool            `json:"clean_break"`
	Breaks        []int           `json:"breaks"`
}

// RoundState is a round's status and pairing completeness
type RoundState struct {
	RoundID     int                `json:"round_id"`
	Status      models.RoundStatus `json:"status"`
	HasHappened bool               `json:"has_happened"`
	FullyPaired bool               `json:"fully_paired"`
	Decided     int                `json:"decided"`
	TrueDebates int                `json:"true_debates"`
}

// Summary returns the headline counts
func (s *TournamentService) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	err := s.store.Read(func(t *models.Tournament) error {
		out = Summary{
			ID:            t.ID,
			Name:          t.Name,
			TeamSize:      t.TeamSize,
			Schools:       len(t.Schools()),
			Entries:       t.EntryCount(),
			Judges:        len(t.Judges()),
			Rooms:         len(t.Rooms()),
			Rounds:        len(t.Rounds()),
			BreakLevelSet: t.BreakLevelSet,
			BreakLevel:    t.BreakLevel,
			CleanBreak:    t.CleanBreak,
			Breaks:        append([]int(nil), t.Breaks...),
		}
		return nil
	})
	out.Version = s.store.Version()
	return &out, err
}

// Standings returns every entry in seed order with its record
func (s *TournamentService) Standings(ctx context.Context) ([]ranking.Standing, error) {
	var out []ranking.Standing
	err := s.store.Read(func(t *models.Tournament) error {
		out = ranking.Standings(t)
		return nil
	})
	return out, err
}

// RoundStatus reports a round's status
func (s *TournamentService) RoundStatus(ctx context.Context, roundID int) (*RoundState, error) {
	var out RoundState
	err := s.store.Read(func(t *models.Tournament) error {
		r, ok := t.Round(roundID)
		if !ok {
			return errors.NotFoundf("round %d not found", roundID)
		}
		out = RoundState{
			RoundID:     roundID,
			Status:      r.Status,
			HasHappened: r.Status.HasHappened(),
			FullyPaired: lifecycle.FullyPaired(t, roundID),
		}
		out.Decided, out.TrueDebates = lifecycle.DecidedCount(t, roundID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FullyPaired reports whether a round is ready to be posted
func (s *TournamentService) FullyPaired(ctx context.Context, roundID int) (bool, error) {
	st, err := s.RoundStatus(ctx, roundID)
	if err != nil {
		return false, err
	}
	return st.FullyPaired, nil
}

// Conflicts returns the live conflicts of a round keyed by item ID
func (s *TournamentService) Conflicts(ctx context.Context, roundID int) (map[int][]conflict.Conflict, error) {
	var out map[int][]conflict.Conflict
	err := s.store.Read(func(t *models.Tournament) error {
		if _, ok := t.Round(roundID); !ok {
			return errors.NotFoundf("round %d not found", roundID)
		}
		out = conflict.Round(t, roundID)
		return nil
	})
	return out, err
}

// Snapshot returns a structured copy of the whole tournament
func (s *TournamentService) Snapshot(ctx context.Context) models.Snapshot {
	return s.store.Snapshot()
}

// Export encodes the tournament as JSON and names a file for it
func (s *TournamentService) Export(ctx context.Context) ([]byte, string, error) {
	snap := s.store.Snapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, "", errors.Internal(err)
	}
	return data, slug.Make(snap.Tournament.Name) + ".json", nil
}

// Import replaces the tournament with an exported snapshot. The snapshot
// must describe the tournament already open.
func (s *TournamentService) Import(ctx context.Context, data []byte) error {
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "unreadable snapshot")
	}
	if snap.Tournament.ID != s.store.ID() {
		return errors.Validationf("snapshot is for tournament %s, not %s", snap.Tournament.ID, s.store.ID())
	}
	tour, err := models.Restore(snap)
	if err != nil {
		return errors.Wrap(err, errors.ErrValidation, "inconsistent snapshot")
	}
	recompute(tour)
	if err := s.store.Replace(ctx, tour); err != nil {
		return err
	}
	s.log.Info("Tournament imported", "tournament_id", snap.Tournament.ID, "entries", tour.EntryCount())
	return nil
}
