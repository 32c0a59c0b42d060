// Package ranking derives entry records from ballots and orders entries into
// seeds.
package ranking

import (
	"cmp"
	"slices"

	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// Recompute rebuilds every entry's wins, losses and opponents' combined wins.
// Only preliminary rounds count. A bye counts as a win and a forfeit as a
// loss; non-competing placeholders count for neither.
func Recompute(t *models.Tournament) {
	entries := t.Entries()
	for _, e := range entries {
		e.Wins, e.Losses, e.OpponentWins = 0, 0, 0
	}

	opponents := make(map[int][]int)
	for _, r := range t.Rounds() {
		if r.Kind != models.Prelim {
			continue
		}
		for _, d := range t.Debates(r.ID) {
			for _, id := range d.EntryIDs() {
				e, ok := t.Entry(id)
				if !ok {
					continue
				}
				outcome := d.OutcomeFor(id)
				switch {
				case outcome.CountsAsWin():
					e.Wins++
				case outcome.CountsAsLoss():
					e.Losses++
				}
			}
			if d.IsDecided() {
				opponents[d.Aff] = append(opponents[d.Aff], d.Neg)
				opponents[d.Neg] = append(opponents[d.Neg], d.Aff)
			}
		}
	}

	for _, e := range entries {
		for _, opp := range opponents[e.ID] {
			if o, ok := t.Entry(opp); ok {
				e.OpponentWins += o.Wins
			}
		}
	}
}

// Compare orders a before b when a is seeded higher: more wins, then more
// opponent wins, then a higher tiebreak. Equal draws fall back to the lower ID
// so only an entry compares equal to itself.
func Compare(a, b *models.Entry) int {
	if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
		return c
	}
	if c := cmp.Compare(b.OpponentWins, a.OpponentWins); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Tiebreak, a.Tiebreak); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Seed returns every entry in seed order. It reads the current records and
// caches nothing, so call Recompute first after ballots change.
func Seed(t *models.Tournament) []*models.Entry {
	entries := t.Entries()
	slices.SortFunc(entries, Compare)
	return entries
}

// Standing is one row of the standings table
type Standing struct {
	Seed         int     `json:"seed"`
	EntryID      int     `json:"entry_id"`
	Name         string  `json:"name"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	OpponentWins int     `json:"opponent_wins"`
	Tiebreak     float64 `json:"tiebreak"`
	Eligible     bool    `json:"eligible_to_break"`
}

// Standings returns the seed order as display rows, seeds starting at 1
func Standings(t *models.Tournament) []Standing {
	seeded := Seed(t)
	out := make([]Standing, len(seeded))
	for i, e := range seeded {
		out[i] = Standing{
			Seed:         i + 1,
			EntryID:      e.ID,
			Name:         e.Name(),
			Wins:         e.Wins,
			Losses:       e.Losses,
			OpponentWins: e.OpponentWins,
			Tiebreak:     e.Tiebreak,
			Eligible:     e.EligibleToBreak,
		}
	}
	return out
}
