// Package bracket decides who breaks to the elimination rounds and keeps the
// elimination round sequence consistent with the chosen bracket level.
package bracket

import (
	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/ranking"
)

// NumWhoBreak returns how many entries advance into a bracket of the given
// capacity. wins holds the win counts of the candidates in seed order.
//
// A clean break never splits a group of entries on the same number of wins
// across the cut, shrinking the bracket down to no fewer than capacity/2+1.
func NumWhoBreak(wins []int, capacity int, clean bool) int {
	n := len(wins)
	hi := min(capacity, n)
	if !clean || n == 0 {
		return hi
	}
	lo := min(capacity/2+1, n)

	// wins is 0-indexed, ranks are 1-indexed
	rank := func(r int) int { return wins[r-1] }

	if rank(lo) == rank(hi) {
		return hi
	}
	if n == hi || rank(hi) > rank(hi+1) {
		return hi
	}
	for r := hi - 1; r >= lo; r-- {
		if rank(r) > rank(r+1) {
			return r
		}
	}
	// only reachable when wins is not in seed order
	return lo
}

// Candidates returns the entries eligible to break, in seed order
func Candidates(t *models.Tournament) []*models.Entry {
	var out []*models.Entry
	for _, e := range ranking.Seed(t) {
		if e.EligibleToBreak {
			out = append(out, e)
		}
	}
	return out
}

// Break commits the top entries as the tournament's break. It is refused once
// the first elimination round has a result.
func Break(t *models.Tournament) ([]int, error) {
	if !t.BreakLevelSet {
		return nil, errors.Precondition("set the break level before breaking")
	}
	if elims := lifecycle.ElimRounds(t); len(elims) > 0 && lifecycle.HasResults(t, elims[0].ID) {
		return nil, errors.Preconditionf("%q already has results", elims[0].Name)
	}

	candidates := Candidates(t)
	wins := make([]int, len(candidates))
	for i, e := range candidates {
		wins[i] = e.Wins
	}
	n := NumWhoBreak(wins, t.BreakLevel.Capacity(), t.CleanBreak)

	breaks := make([]int, n)
	for i := range n {
		breaks[i] = candidates[i].ID
	}
	t.Breaks = breaks
	return breaks, nil
}

// SetLevel sets the bracket level and renumbers the existing elimination
// rounds from it. When more elimination rounds exist than levels remain, the
// surplus rounds at the end are deleted, but only with confirmDiscard.
// It returns the IDs of the deleted rounds.
func SetLevel(t *models.Tournament, level models.Outround, confirmDiscard bool) ([]int, error) {
	if !level.Valid() {
		return nil, errors.InvalidInputf("unknown bracket level %d", int(level))
	}
	elims := lifecycle.ElimRounds(t)
	for _, r := range elims {
		if r.Status.HasHappened() {
			return nil, errors.Preconditionf("cannot change the break level: %q has started", r.Name)
		}
	}

	var discarded []int
	if surplus := len(elims) - level.Remaining(); surplus > 0 {
		if !confirmDiscard {
			return nil, errors.Preconditionf("%d elimination rounds exceed %s and would be discarded", surplus, Title(level))
		}
		for _, r := range elims[level.Remaining():] {
			discarded = append(discarded, r.ID)
			t.DeleteRound(r.ID)
		}
		elims = elims[:level.Remaining()]
	}

	l := level
	for i, r := range elims {
		r.Level = l
		r.Number = i + 1
		r.Name = Title(l)
		l = l.Next()
	}
	t.BreakLevelSet = true
	t.BreakLevel = level
	return discarded, nil
}

// FillGaps creates the missing levels strictly between adjacent leveled
// elimination rounds and returns the new rounds. Running it twice creates
// nothing the second time.
func FillGaps(t *models.Tournament) []*models.Round {
	var leveled []*models.Round
	for _, r := range lifecycle.ElimRounds(t) {
		if r.Level.Valid() {
			leveled = append(leveled, r)
		}
	}

	var created []*models.Round
	for i := 0; i+1 < len(leveled); i++ {
		upper, lower := leveled[i], leveled[i+1]
		for l := upper.Level.Next(); l > lower.Level; l = l.Next() {
			created = append(created, t.AddRound(models.Round{
				Name:            Title(l),
				Kind:            models.Elim,
				Level:           l,
				JudgesPerDebate: upper.JudgesPerDebate,
				SidePolicy:      upper.SidePolicy,
			}))
		}
	}
	return created
}

// Title is the display name of an elimination level
func Title(l models.Outround) string {
	switch l {
	case models.DoubleOctofinals:
		return "Double Octofinals"
	case models.Octofinals:
		return "Octofinals"
	case models.Quarterfinals:
		return "Quarterfinals"
	case models.Semifinals:
		return "Semifinals"
	case models.Finals:
		return "Finals"
	}
	return "Elimination"
}
