package lifecycle

import (
	"slices"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// InsertItem places a new container into a round's pairing sequence at pos
// (negative appends). Debate entries must exist and must not already be
// placed in the round. In a flighted round untagged containers join flight A.
func InsertItem(t *models.Tournament, roundID int, c models.Container, pos int) error {
	r, ok := t.Round(roundID)
	if !ok {
		return errors.NotFoundf("round %d not found", roundID)
	}
	if d, ok := c.(*models.Debate); ok {
		if err := validateEntries(t, roundID, d); err != nil {
			return err
		}
	}
	if err := t.InsertContainer(roundID, c, pos); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "cannot insert item")
	}
	if r.Flighted && c.Flight() == models.FlightNone {
		if err := t.SetFlight(c.ID(), models.FlightA); err != nil {
			return errors.Internal(err)
		}
	}
	normalizeFlights(t, r)
	return nil
}

func validateEntries(t *models.Tournament, roundID int, d *models.Debate) error {
	if d.Aff != 0 && d.Aff == d.Neg {
		return errors.Validationf("entry %d cannot debate itself", d.Aff)
	}
	for _, id := range d.EntryIDs() {
		if _, ok := t.Entry(id); !ok {
			return errors.NotFoundf("entry %d not found", id)
		}
		for _, other := range t.Debates(roundID) {
			if other.HasEntry(id) {
				return errors.Conflictf("entry %d is already in debate %d", id, other.ID())
			}
		}
	}
	if !d.IsTrue() && len(d.EntryIDs()) == 1 {
		o := d.OutcomeFor(d.EntryIDs()[0])
		if o != models.NoDecision && !o.IsPseudo() {
			return errors.InvalidInputf("a single-entry debate takes bye, forfeit or non_competing, not %s", o)
		}
	}
	if d.IsTrue() && (d.AffOutcome != models.NoDecision || d.NegOutcome != models.NoDecision) {
		return errors.InvalidInput("enter results through a ballot")
	}
	return nil
}

// RemoveItem takes a container out of its round and returns its position.
// A decided debate must have its ballot removed first.
func RemoveItem(t *models.Tournament, containerID int) (int, error) {
	c, ok := t.Container(containerID)
	if !ok {
		return -1, errors.NotFoundf("item %d not found", containerID)
	}
	if d, ok := c.(*models.Debate); ok && d.IsDecided() {
		return -1, errors.Preconditionf("debate %d has a result; remove the ballot first", containerID)
	}
	pos, err := t.RemoveContainer(containerID)
	if err != nil {
		return -1, errors.Internal(err)
	}
	return pos, nil
}

// MoveItem repositions a container within its round
func MoveItem(t *models.Tournament, containerID, pos int) error {
	c, ok := t.Container(containerID)
	if !ok {
		return errors.NotFoundf("item %d not found", containerID)
	}
	r, _ := t.Round(c.RoundID())
	i := slices.Index(r.Items, containerID)
	r.Items = slices.Delete(r.Items, i, i+1)
	if pos < 0 || pos > len(r.Items) {
		pos = len(r.Items)
	}
	r.Items = slices.Insert(r.Items, pos, containerID)
	normalizeFlights(t, r)
	return nil
}

// ToggleFlight moves a container of a flighted round between flights A and B
func ToggleFlight(t *models.Tournament, containerID int) error {
	c, ok := t.Container(containerID)
	if !ok {
		return errors.NotFoundf("item %d not found", containerID)
	}
	r, _ := t.Round(c.RoundID())
	if !r.Flighted {
		return errors.Preconditionf("round %q is not flighted", r.Name)
	}
	if err := t.SetFlight(containerID, c.Flight().Toggle()); err != nil {
		return errors.Internal(err)
	}
	normalizeFlights(t, r)
	return nil
}

// SetFlighted turns flights on (every container joins flight A) or off
// (every container loses its flight tag)
func SetFlighted(t *models.Tournament, roundID int, flighted bool) error {
	r, ok := t.Round(roundID)
	if !ok {
		return errors.NotFoundf("round %d not found", roundID)
	}
	if r.Flighted == flighted {
		return nil
	}
	r.Flighted = flighted
	for _, c := range t.Items(roundID) {
		f := models.FlightNone
		if flighted {
			f = models.FlightA
		}
		if err := t.SetFlight(c.ID(), f); err != nil {
			return errors.Internal(err)
		}
	}
	return nil
}

// normalizeFlights keeps every flight-A container ahead of the rest,
// preserving relative order within each group
func normalizeFlights(t *models.Tournament, r *models.Round) {
	if !r.Flighted {
		return
	}
	var a, rest []int
	for _, c := range t.Items(r.ID) {
		if c.Flight() == models.FlightA {
			a = append(a, c.ID())
		} else {
			rest = append(rest, c.ID())
		}
	}
	r.Items = append(a, rest...)
}

// CountFlightA counts the debates in flight A. Flight A is stored first, so
// the scan stops at the first container outside it.
func CountFlightA(t *models.Tournament, roundID int) int {
	n := 0
	for _, c := range t.Items(roundID) {
		if c.Flight() != models.FlightA {
			break
		}
		if c.Kind() == models.KindDebate {
			n++
		}
	}
	return n
}

// FlightDebates returns the round's debates tagged with flight f
func FlightDebates(t *models.Tournament, roundID int, f models.Flight) []*models.Debate {
	var out []*models.Debate
	for _, d := range t.Debates(roundID) {
		if d.Flight() == f {
			out = append(out, d)
		}
	}
	return out
}
