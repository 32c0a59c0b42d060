// Package lifecycle tracks rounds through their status machine and answers
// the pairing-state questions the rest of the engine asks about a round.
package lifecycle

import (
	"cmp"
	"slices"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// Compare orders rounds practice < prelim < elim, then by number. Elimination
// rounds that both carry a level are ordered by level, largest bracket first.
func Compare(a, b *models.Round) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	if a.Kind == models.Elim && a.Level != 0 && b.Level != 0 {
		if c := cmp.Compare(b.Level, a.Level); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.Number, b.Number); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Ordered returns every round in display order
func Ordered(t *models.Tournament) []*models.Round {
	rounds := t.Rounds()
	slices.SortFunc(rounds, Compare)
	return rounds
}

// ElimRounds returns the elimination rounds in bracket order
func ElimRounds(t *models.Tournament) []*models.Round {
	var out []*models.Round
	for _, r := range Ordered(t) {
		if r.Kind == models.Elim {
			out = append(out, r)
		}
	}
	return out
}

// LaterRoundStarted reports whether any round ordered after roundID has happened
func LaterRoundStarted(t *models.Tournament, roundID int) bool {
	r, ok := t.Round(roundID)
	if !ok {
		return false
	}
	for _, other := range t.Rounds() {
		if Compare(r, other) < 0 && other.Status.HasHappened() {
			return true
		}
	}
	return false
}

// TrueDebates returns the round's contested two-entry debates
func TrueDebates(t *models.Tournament, roundID int) []*models.Debate {
	var out []*models.Debate
	for _, d := range t.Debates(roundID) {
		if d.IsTrue() {
			out = append(out, d)
		}
	}
	return out
}

// PseudoDebates returns the round's byes, forfeits and non-competing placeholders
func PseudoDebates(t *models.Tournament, roundID int) []*models.Debate {
	var out []*models.Debate
	for _, d := range t.Debates(roundID) {
		if d.IsPseudo() {
			out = append(out, d)
		}
	}
	return out
}

// DecidedCount returns how many true debates have a result, and how many
// true debates there are
func DecidedCount(t *models.Tournament, roundID int) (decided, total int) {
	for _, d := range TrueDebates(t, roundID) {
		total++
		if d.IsDecided() {
			decided++
		}
	}
	return decided, total
}

// HasResults reports whether any true debate in the round is decided
func HasResults(t *models.Tournament, roundID int) bool {
	decided, _ := DecidedCount(t, roundID)
	return decided > 0
}

// Contenders returns the entries expected to appear in a round. Every entry
// takes part in practice and preliminary rounds. An elimination round expects
// the entries that broke (everyone, before a break) minus those already
// eliminated in an earlier elimination round.
func Contenders(t *models.Tournament, roundID int) []*models.Entry {
	r, ok := t.Round(roundID)
	if !ok {
		return nil
	}
	if r.Kind != models.Elim {
		return t.Entries()
	}

	var pool []*models.Entry
	if len(t.Breaks) == 0 {
		pool = t.Entries()
	} else {
		for _, id := range t.Breaks {
			if e, ok := t.Entry(id); ok {
				pool = append(pool, e)
			}
		}
	}

	eliminated := make(map[int]bool)
	for _, earlier := range ElimRounds(t) {
		if Compare(earlier, r) >= 0 {
			break
		}
		for _, d := range t.Debates(earlier.ID) {
			for _, id := range d.EntryIDs() {
				if d.OutcomeFor(id).CountsAsLoss() {
					eliminated[id] = true
				}
			}
		}
	}
	return slices.DeleteFunc(pool, func(e *models.Entry) bool { return eliminated[e.ID] })
}

// UnassignedEntries returns the contenders not placed in any debate of the round
func UnassignedEntries(t *models.Tournament, roundID int) []*models.Entry {
	placed := make(map[int]bool)
	for _, d := range t.Debates(roundID) {
		for _, id := range d.EntryIDs() {
			placed[id] = true
		}
	}
	var out []*models.Entry
	for _, e := range Contenders(t, roundID) {
		if !placed[e.ID] {
			out = append(out, e)
		}
	}
	return out
}

// FullyPaired reports whether every contender is placed and every true debate
// has a room and exactly the round's judge count
func FullyPaired(t *models.Tournament, roundID int) bool {
	r, ok := t.Round(roundID)
	if !ok {
		return false
	}
	if len(UnassignedEntries(t, roundID)) > 0 {
		return false
	}
	for _, d := range TrueDebates(t, roundID) {
		if d.RoomID() == 0 || d.JudgeCount() != r.JudgesPerDebate {
			return false
		}
	}
	return true
}

// RecomputeStatus moves a started round between IN_PROGRESS and COMPLETED.
// A round that has not started is left alone.
func RecomputeStatus(t *models.Tournament, roundID int) {
	r, ok := t.Round(roundID)
	if !ok || r.Status == models.NotStarted {
		return
	}
	decided, total := DecidedCount(t, roundID)
	if decided == total && len(UnassignedEntries(t, roundID)) == 0 && t.EntryCount() > 0 {
		r.Status = models.Completed
	} else {
		r.Status = models.InProgress
	}
}

// RecomputeAll recomputes the status of every round
func RecomputeAll(t *models.Tournament) {
	for _, r := range t.Rounds() {
		RecomputeStatus(t, r.ID)
	}
}

// Start leaves NOT_STARTED. Starting a started round is a no-op.
func Start(t *models.Tournament, roundID int) error {
	r, ok := t.Round(roundID)
	if !ok {
		return errors.NotFoundf("round %d not found", roundID)
	}
	if r.Status.HasHappened() {
		return nil
	}
	r.Status = models.InProgress
	RecomputeStatus(t, roundID)
	return nil
}
