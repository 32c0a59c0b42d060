package services

import (
	"github.com/kcoltin/SWSDITAB-sub001/internal/conflict"
	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// ItemView is one container of a round as the outside world sees it
type ItemView struct {
	ID            int                  `json:"id"`
	Kind          models.ContainerKind `json:"kind"`
	Flight        models.Flight        `json:"flight,omitempty"`
	RoomID        int                  `json:"room_id,omitempty"`
	RoomLocked    bool                 `json:"room_locked,omitempty"`
	JudgeIDs      []int                `json:"judge_ids"`
	LockedJudges  []int                `json:"locked_judges,omitempty"`
	Aff           int                  `json:"aff,omitempty"`
	Neg           int                  `json:"neg,omitempty"`
	AffOutcome    models.Outcome       `json:"aff_outcome,omitempty"`
	NegOutcome    models.Outcome       `json:"neg_outcome,omitempty"`
	SidesResolved bool                 `json:"sides_resolved,omitempty"`
	Conflicts     []conflict.Conflict  `json:"conflicts,omitempty"`
}

// RoundView is a round with its items in pairing-sequence order
type RoundView struct {
	models.Round
	Items       []ItemView `json:"items"`
	FullyPaired bool       `json:"fully_paired"`
	Decided     int        `json:"decided"`
	TrueDebates int        `json:"true_debates"`
	Unassigned  []int      `json:"unassigned_entries"`
	Flights     *Flights   `json:"flights,omitempty"`
}

// Flights splits a flighted round's debates by flight
type Flights struct {
	CountA int   `json:"count_a"`
	A      []int `json:"a"`
	B      []int `json:"b"`
}

func flights(t *models.Tournament, roundID int) *Flights {
	f := &Flights{CountA: lifecycle.CountFlightA(t, roundID)}
	for _, d := range lifecycle.FlightDebates(t, roundID, models.FlightA) {
		f.A = append(f.A, d.ID())
	}
	for _, d := range lifecycle.FlightDebates(t, roundID, models.FlightB) {
		f.B = append(f.B, d.ID())
	}
	return f
}

func itemView(t *models.Tournament, c models.Container, conflicts []conflict.Conflict) ItemView {
	v := ItemView{
		ID:           c.ID(),
		Kind:         c.Kind(),
		Flight:       c.Flight(),
		RoomID:       c.RoomID(),
		RoomLocked:   t.RoomLocked(c.ID()),
		JudgeIDs:     c.JudgeIDs(),
		LockedJudges: t.LockedJudges(c.ID()),
		Conflicts:    conflicts,
	}
	if d, ok := c.(*models.Debate); ok {
		v.Aff, v.Neg = d.Aff, d.Neg
		v.AffOutcome, v.NegOutcome = d.AffOutcome, d.NegOutcome
		v.SidesResolved = d.SidesResolved
	}
	return v
}

func roundView(t *models.Tournament, roundID int) (*RoundView, error) {
	r, ok := t.Round(roundID)
	if !ok {
		return nil, errors.NotFoundf("round %d not found", roundID)
	}
	conflicts := conflict.Round(t, roundID)
	v := &RoundView{
		Round:       *r.Clone(),
		FullyPaired: lifecycle.FullyPaired(t, roundID),
	}
	v.Decided, v.TrueDebates = lifecycle.DecidedCount(t, roundID)
	for _, c := range t.Items(roundID) {
		v.Items = append(v.Items, itemView(t, c, conflicts[c.ID()]))
	}
	for _, e := range lifecycle.UnassignedEntries(t, roundID) {
		v.Unassigned = append(v.Unassigned, e.ID)
	}
	if r.Flighted {
		v.Flights = flights(t, roundID)
	}
	return v, nil
}
