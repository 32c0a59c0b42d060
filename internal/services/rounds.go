package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kcoltin/SWSDITAB-sub001/internal/bracket"
	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// RoundService handles round creation and pairing-sequence edits
type RoundService struct {
	notifier
	log   logger.Logger
	store Store
}

// NewRoundService creates a new RoundService
func NewRoundService(log logger.Logger, store Store) *RoundService {
	return &RoundService{log: log, store: store}
}

// Round represents a round for create operations. Elimination rounds need a
// Number until the break level is set, and a Level afterwards.
type Round struct {
	Name            string            `json:"name"`
	Kind            models.RoundKind  `json:"kind"`
	Number          int               `json:"number,omitempty"`
	Level           models.Outround   `json:"level,omitempty"`
	JudgesPerDebate int               `json:"judges_per_debate"`
	SidePolicy      models.SidePolicy `json:"side_policy"`
}

// RoundUpdate carries the settings to change; nil fields are left alone
type RoundUpdate struct {
	Name            *string            `json:"name,omitempty"`
	JudgesPerDebate *int               `json:"judges_per_debate,omitempty"`
	SidePolicy      *models.SidePolicy `json:"side_policy,omitempty"`
	Start           *time.Time         `json:"start,omitempty"`
	FlightBStart    *time.Time         `json:"flight_b_start,omitempty"`
	ASAP            *bool              `json:"asap,omitempty"`
	Flighted        *bool              `json:"flighted,omitempty"`
	Remarks         *string            `json:"remarks,omitempty"`
}

// ListRounds returns every round in display order
func (s *RoundService) ListRounds(ctx context.Context) ([]models.Round, error) {
	var out []models.Round
	err := s.store.Read(func(t *models.Tournament) error {
		for _, r := range lifecycle.Ordered(t) {
			out = append(out, *r.Clone())
		}
		return nil
	})
	return out, err
}

// GetRound returns a round with its items and their conflicts
func (s *RoundService) GetRound(ctx context.Context, id int) (*RoundView, error) {
	var out *RoundView
	err := s.store.Read(func(t *models.Tournament) error {
		v, err := roundView(t, id)
		out = v
		return err
	})
	return out, err
}

func validateRound(t *models.Tournament, in Round) (models.Round, error) {
	r := models.Round{
		Name:            strings.TrimSpace(in.Name),
		Kind:            in.Kind,
		Number:          in.Number,
		Level:           in.Level,
		JudgesPerDebate: in.JudgesPerDebate,
		SidePolicy:      in.SidePolicy,
	}
	if r.JudgesPerDebate < 0 {
		return r, errors.Validation("judges per debate cannot be negative")
	}

	switch r.Kind {
	case models.Elim:
		if t.BreakLevelSet {
			if !r.Level.Valid() {
				return r, errors.Validation("the break level is set; an elimination round needs a level")
			}
			if r.Level > t.BreakLevel {
				return r, errors.Validationf("%s is above the break level %s", bracket.Title(r.Level), bracket.Title(t.BreakLevel))
			}
			for _, other := range lifecycle.ElimRounds(t) {
				if other.Level == r.Level {
					return r, errors.Conflictf("%s already exists", bracket.Title(r.Level))
				}
			}
			r.Number = 0
		} else {
			if r.Number < 1 {
				return r, errors.Validation("an elimination round needs a number until the break level is set")
			}
			r.Level = 0
		}
		if r.Name == "" {
			r.Name = bracket.Title(r.Level)
			if r.Level == 0 {
				r.Name = fmt.Sprintf("Elimination %d", r.Number)
			}
		}
	case models.Prelim, models.Practice:
		if r.Number < 1 {
			return r, errors.Validationf("a %s round needs a number", r.Kind)
		}
		r.Level = 0
		if r.Name == "" {
			r.Name = fmt.Sprintf("Round %d", r.Number)
			if r.Kind == models.Practice {
				r.Name = fmt.Sprintf("Practice %d", r.Number)
			}
		}
	default:
		return r, errors.InvalidInputf("unknown round kind %d", int(r.Kind))
	}

	for _, other := range t.Rounds() {
		if r.Number != 0 && other.Kind == r.Kind && other.Number == r.Number {
			return r, errors.Conflictf("%s round %d already exists", r.Kind, r.Number)
		}
	}
	return r, nil
}

// CreateRound adds a round in NOT_STARTED
func (s *RoundService) CreateRound(ctx context.Context, in Round) (*models.Round, error) {
	var created *models.Round
	err := s.store.Update(ctx, "create round", func(t *models.Tournament) error {
		r, err := validateRound(t, in)
		if err != nil {
			return err
		}
		created = t.AddRound(r).Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Round created", "round_id", created.ID, "name", created.Name, "kind", created.Kind)
	return created, nil
}

// StartRound moves a round to IN_PROGRESS, or straight to COMPLETED when it
// is already fully decided
func (s *RoundService) StartRound(ctx context.Context, id int) (models.RoundStatus, error) {
	var status models.RoundStatus
	err := s.store.Update(ctx, "start round", func(t *models.Tournament) error {
		if err := lifecycle.Start(t, id); err != nil {
			return err
		}
		r, _ := t.Round(id)
		status = r.Status
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Round started", "round_id", id, "status", status)
	s.statusChanges([]statusChange{{RoundID: id, Status: status}})
	return status, nil
}

// UpdateRound applies the given settings together or not at all
func (s *RoundService) UpdateRound(ctx context.Context, id int, u RoundUpdate) error {
	err := s.store.Update(ctx, "update round", func(t *models.Tournament) error {
		r, ok := t.Round(id)
		if !ok {
			return errors.NotFoundf("round %d not found", id)
		}
		if u.Name != nil {
			name, err := cleanName(*u.Name)
			if err != nil {
				return err
			}
			r.Name = name
		}
		if u.JudgesPerDebate != nil {
			if *u.JudgesPerDebate < 0 {
				return errors.Validation("judges per debate cannot be negative")
			}
			r.JudgesPerDebate = *u.JudgesPerDebate
		}
		if u.SidePolicy != nil {
			r.SidePolicy = *u.SidePolicy
		}
		if u.Start != nil {
			r.Start = *u.Start
		}
		if u.FlightBStart != nil {
			r.FlightBStart = *u.FlightBStart
		}
		if u.ASAP != nil {
			r.ASAP = *u.ASAP
		}
		if u.Remarks != nil {
			r.Remarks = *u.Remarks
		}
		if u.Flighted != nil {
			if err := lifecycle.SetFlighted(t, id, *u.Flighted); err != nil {
				return err
			}
		}
		if !r.Flighted {
			r.FlightBStart = time.Time{}
		}
		return nil
	})
	if err == nil {
		s.pairingUpdated(id)
	}
	return err
}

// DeleteRound removes a round that has not started, with its items. A round
// ordered before a started round is kept.
func (s *RoundService) DeleteRound(ctx context.Context, id int) error {
	err := s.store.Update(ctx, "delete round", func(t *models.Tournament) error {
		r, ok := t.Round(id)
		if !ok {
			return errors.NotFoundf("round %d not found", id)
		}
		if r.Status.HasHappened() {
			return errors.Preconditionf("%q has started and cannot be deleted", r.Name)
		}
		if lifecycle.LaterRoundStarted(t, id) {
			return errors.Preconditionf("%q precedes a started round and cannot be deleted", r.Name)
		}
		t.DeleteRound(id)
		for _, j := range t.Judges() {
			delete(j.Priorities, id)
		}
		for _, room := range t.Rooms() {
			delete(room.Priorities, id)
		}
		return nil
	})
	if err == nil {
		s.log.Info("Round deleted", "round_id", id)
	}
	return err
}

// ==================== Pairing sequence ====================

// editRound runs fn and then refreshes the round's status
func (s *RoundService) editRound(ctx context.Context, op string, roundID func(t *models.Tournament) (int, error), fn func(t *models.Tournament) error) error {
	var rid int
	var changes []statusChange
	err := s.store.Update(ctx, op, func(t *models.Tournament) error {
		id, err := roundID(t)
		if err != nil {
			return err
		}
		rid = id
		before := statuses(t)
		if err := fn(t); err != nil {
			return err
		}
		lifecycle.RecomputeStatus(t, rid)
		changes = changedStatuses(t, before)
		return nil
	})
	if err != nil {
		return err
	}
	s.pairingUpdated(rid)
	s.statusChanges(changes)
	return nil
}

func inRound(id int) func(*models.Tournament) (int, error) {
	return func(t *models.Tournament) (int, error) {
		if _, ok := t.Round(id); !ok {
			return 0, errors.NotFoundf("round %d not found", id)
		}
		return id, nil
	}
}

func ofItem(id int) func(*models.Tournament) (int, error) {
	return func(t *models.Tournament) (int, error) {
		c, ok := t.Container(id)
		if !ok {
			return 0, errors.NotFoundf("item %d not found", id)
		}
		return c.RoundID(), nil
	}
}

func (s *RoundService) insert(ctx context.Context, op string, roundID int, c models.Container, pos int) (int, error) {
	err := s.editRound(ctx, op, inRound(roundID), func(t *models.Tournament) error {
		return lifecycle.InsertItem(t, roundID, c, pos)
	})
	if err != nil {
		return 0, err
	}
	return c.ID(), nil
}

// AddDebate inserts a debate between two entries at pos (negative appends).
// Either entry may be zero for an unfilled slot.
func (s *RoundService) AddDebate(ctx context.Context, roundID, aff, neg, pos int) (int, error) {
	return s.insert(ctx, "add debate", roundID, models.NewDebate(aff, neg), pos)
}

// AddPseudoDebate inserts a bye, forfeit or non-competing placeholder
func (s *RoundService) AddPseudoDebate(ctx context.Context, roundID, entryID int, outcome models.Outcome, pos int) (int, error) {
	if !outcome.IsPseudo() {
		return 0, errors.InvalidInputf("a placeholder takes bye, forfeit or non_competing, not %s", outcome)
	}
	return s.insert(ctx, "add pseudo debate", roundID, models.NewPseudoDebate(entryID, outcome), pos)
}

// AddJudgeAssignment inserts an empty standalone judge assignment
func (s *RoundService) AddJudgeAssignment(ctx context.Context, roundID, pos int) (int, error) {
	return s.insert(ctx, "add judge assignment", roundID, models.NewContainer(models.KindJudgeAssignment), pos)
}

// AddJudgeRoomAssignment inserts an empty standalone judge and room assignment
func (s *RoundService) AddJudgeRoomAssignment(ctx context.Context, roundID, pos int) (int, error) {
	return s.insert(ctx, "add judge room assignment", roundID, models.NewContainer(models.KindJudgeRoomAssignment), pos)
}

// RemoveItem takes an item out of its round and returns its former position
func (s *RoundService) RemoveItem(ctx context.Context, id int) (int, error) {
	pos := -1
	err := s.editRound(ctx, "remove item", ofItem(id), func(t *models.Tournament) error {
		p, err := lifecycle.RemoveItem(t, id)
		pos = p
		return err
	})
	return pos, err
}

// MoveItem repositions an item within its round
func (s *RoundService) MoveItem(ctx context.Context, id, pos int) error {
	return s.editRound(ctx, "move item", ofItem(id), func(t *models.Tournament) error {
		return lifecycle.MoveItem(t, id, pos)
	})
}

// ToggleFlight switches an item between flights A and B
func (s *RoundService) ToggleFlight(ctx context.Context, id int) error {
	return s.editRound(ctx, "toggle flight", ofItem(id), func(t *models.Tournament) error {
		return lifecycle.ToggleFlight(t, id)
	})
}

// ==================== Judges and rooms ====================

// AssignJudge adds a judge to an item
func (s *RoundService) AssignJudge(ctx context.Context, itemID, judgeID int) error {
	return s.editRound(ctx, "assign judge", ofItem(itemID), func(t *models.Tournament) error {
		if _, ok := t.Judge(judgeID); !ok {
			return errors.NotFoundf("judge %d not found", judgeID)
		}
		if err := t.AssignJudge(itemID, judgeID); err != nil {
			return errors.Wrap(err, errors.ErrValidation, "cannot assign judge")
		}
		return nil
	})
}

// RemoveJudge takes a judge off an item, dropping its lock
func (s *RoundService) RemoveJudge(ctx context.Context, itemID, judgeID int) error {
	return s.editRound(ctx, "remove judge", ofItem(itemID), func(t *models.Tournament) error {
		if err := t.RemoveJudge(itemID, judgeID); err != nil {
			return errors.Wrap(err, errors.ErrValidation, "cannot remove judge")
		}
		return nil
	})
}

// AssignRoom puts an item in a room, replacing an unlocked room
func (s *RoundService) AssignRoom(ctx context.Context, itemID, roomID int) error {
	return s.editRound(ctx, "assign room", ofItem(itemID), func(t *models.Tournament) error {
		if _, ok := t.Room(roomID); !ok {
			return errors.NotFoundf("room %d not found", roomID)
		}
		if t.RoomLocked(itemID) {
			return errors.Preconditionf("the room of item %d is locked", itemID)
		}
		if err := t.SetRoom(itemID, roomID); err != nil {
			return errors.Wrap(err, errors.ErrValidation, "cannot assign room")
		}
		return nil
	})
}

// ClearRoom takes the room off an item
func (s *RoundService) ClearRoom(ctx context.Context, itemID int) error {
	return s.editRound(ctx, "clear room", ofItem(itemID), func(t *models.Tournament) error {
		if err := t.ClearRoom(itemID); err != nil {
			return errors.Wrap(err, errors.ErrValidation, "cannot clear room")
		}
		return nil
	})
}

func (s *RoundService) setLock(ctx context.Context, itemID int, res models.ResourceKey, locked bool) error {
	op := "unlock"
	if locked {
		op = "lock"
	}
	return s.editRound(ctx, op+" "+res.Kind.String(), ofItem(itemID), func(t *models.Tournament) error {
		if !locked {
			t.Unlock(itemID, res)
			return nil
		}
		if err := t.Lock(itemID, res); err != nil {
			return errors.Preconditionf("%s is not on item %d", describe(t, res), itemID)
		}
		return nil
	})
}

// LockJudge pins a judge to an item so automated assignment keeps it
func (s *RoundService) LockJudge(ctx context.Context, itemID, judgeID int) error {
	return s.setLock(ctx, itemID, models.ResourceKey{Kind: models.ResourceJudge, ID: judgeID}, true)
}

// UnlockJudge releases a pinned judge
func (s *RoundService) UnlockJudge(ctx context.Context, itemID, judgeID int) error {
	return s.setLock(ctx, itemID, models.ResourceKey{Kind: models.ResourceJudge, ID: judgeID}, false)
}

// LockRoom pins an item's current room
func (s *RoundService) LockRoom(ctx context.Context, itemID int) error {
	var roomID int
	err := s.store.Read(func(t *models.Tournament) error {
		c, ok := t.Container(itemID)
		if !ok {
			return errors.NotFoundf("item %d not found", itemID)
		}
		if roomID = c.RoomID(); roomID == 0 {
			return errors.Preconditionf("item %d has no room to lock", itemID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.setLock(ctx, itemID, models.ResourceKey{Kind: models.ResourceRoom, ID: roomID}, true)
}

// UnlockRoom releases an item's pinned room
func (s *RoundService) UnlockRoom(ctx context.Context, itemID int) error {
	var roomID int
	err := s.store.Read(func(t *models.Tournament) error {
		c, ok := t.Container(itemID)
		if !ok {
			return errors.NotFoundf("item %d not found", itemID)
		}
		roomID = c.RoomID()
		return nil
	})
	if err != nil || roomID == 0 {
		return err
	}
	return s.setLock(ctx, itemID, models.ResourceKey{Kind: models.ResourceRoom, ID: roomID}, false)
}

// ResolveSides fixes which entry of a debate is affirmative
func (s *RoundService) ResolveSides(ctx context.Context, debateID, affEntryID int) error {
	return s.editRound(ctx, "resolve sides", ofItem(debateID), func(t *models.Tournament) error {
		return lifecycle.ResolveSides(t, debateID, affEntryID)
	})
}
