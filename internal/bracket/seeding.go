package bracket

import (
	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// Order returns the seeds of a bracket of the given capacity in slot order,
// so that consecutive pairs meet and the top two seeds can only meet in the
// final: 8 gives 1 8 4 5 2 7 3 6.
func Order(capacity int) []int {
	if capacity < 2 {
		return []int{1}
	}
	order := []int{1, 2}
	for size := 4; size <= capacity; size *= 2 {
		next := make([]int, 0, size)
		for _, s := range order {
			next = append(next, s, size+1-s)
		}
		order = next
	}
	return order
}

// elimTarget returns an elimination round that can still receive pairings
func elimTarget(t *models.Tournament, roundID int) (*models.Round, error) {
	r, ok := t.Round(roundID)
	if !ok {
		return nil, errors.NotFoundf("round %d not found", roundID)
	}
	if r.Kind != models.Elim {
		return nil, errors.Validationf("%q is not an elimination round", r.Name)
	}
	if !r.Level.Valid() {
		return nil, errors.Preconditionf("%q has no bracket level", r.Name)
	}
	if r.Status.HasHappened() {
		return nil, errors.Preconditionf("%q has started", r.Name)
	}
	for _, d := range t.Debates(roundID) {
		if len(d.EntryIDs()) > 0 {
			return nil, errors.Preconditionf("%q already has pairings", r.Name)
		}
	}
	return r, nil
}

// SeedElimination pairs the break into the first elimination round in
// bracket order. Slots whose lower seed did not break become byes for the
// higher seed.
func SeedElimination(t *models.Tournament, roundID int) error {
	r, err := elimTarget(t, roundID)
	if err != nil {
		return err
	}
	n, capacity := len(t.Breaks), r.Level.Capacity()
	if n == 0 {
		return errors.Precondition("nobody has broken yet")
	}
	if n > capacity {
		return errors.Preconditionf("%d entries broke but %s seats %d", n, Title(r.Level), capacity)
	}
	if n < capacity/2 {
		return errors.Preconditionf("%d entries cannot fill %s", n, Title(r.Level))
	}

	order := Order(capacity)
	for i := 0; i+1 < len(order); i += 2 {
		high, low := order[i], order[i+1]
		var d *models.Debate
		if low > n {
			d = models.NewPseudoDebate(t.Breaks[high-1], models.Bye)
		} else {
			d = models.NewDebate(t.Breaks[high-1], t.Breaks[low-1])
		}
		if err := lifecycle.InsertItem(t, roundID, d, -1); err != nil {
			return err
		}
	}
	return nil
}

// Advance pairs the winners of one elimination round into the next, keeping
// bracket order: the winners of consecutive slots meet.
func Advance(t *models.Tournament, fromRoundID, toRoundID int) error {
	from, ok := t.Round(fromRoundID)
	if !ok {
		return errors.NotFoundf("round %d not found", fromRoundID)
	}
	if from.Kind != models.Elim || !from.Level.Valid() {
		return errors.Validationf("%q is not a leveled elimination round", from.Name)
	}
	to, err := elimTarget(t, toRoundID)
	if err != nil {
		return err
	}
	if to.Level != from.Level.Next() {
		return errors.Validationf("%s does not follow %s", Title(to.Level), Title(from.Level))
	}

	var winners []int
	for _, d := range t.Debates(fromRoundID) {
		if len(d.EntryIDs()) == 0 {
			continue
		}
		w := d.Winner()
		if w == 0 {
			return errors.Preconditionf("debate %d in %q has no winner yet", d.ID(), from.Name)
		}
		winners = append(winners, w)
	}
	if len(winners) == 0 {
		return errors.Preconditionf("%q has no results", from.Name)
	}

	for i := 0; i < len(winners); i += 2 {
		var d *models.Debate
		if i+1 < len(winners) {
			d = models.NewDebate(winners[i], winners[i+1])
		} else {
			d = models.NewPseudoDebate(winners[i], models.Bye)
		}
		if err := lifecycle.InsertItem(t, toRoundID, d, -1); err != nil {
			return err
		}
	}
	return nil
}
