package pairing

import (
	"cmp"
	"iter"
	"slices"

	"github.com/kcoltin/SWSDITAB-sub001/internal/conflict"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/pkg/search"
)

// decision is one open slot: a judge seat or the room of a debate
type decision struct {
	debate int // index into problem.debates
	kind   models.ResourceKind
}

type candidate struct {
	id      int
	penalty int
	struck  bool
}

// state is a partial assignment: picks[i] answers decisions[i]
type state struct {
	picks     []int
	conflicts int
	penalty   int
}

// problem fills every open judge seat and room of a round's true debates
type problem struct {
	debates    []*models.Debate
	decisions  []decision
	candidates [][]candidate // per decision, best first
	// remaining[i] is the least penalty decisions[i:] can add
	remaining []int
	// held counts the conflicts of resources already in the debates
	held int
}

var _ search.Problem[state] = (*problem)(nil)

func newProblem(t *models.Tournament, r *models.Round, debates []*models.Debate) *problem {
	p := &problem{debates: debates}

	judges := t.Judges()
	rooms := t.Rooms()
	for i, d := range debates {
		p.held += len(conflict.Check(t, d))

		var judgeCands []candidate
		for _, j := range judges {
			if available(t, r, d, models.ResourceKey{Kind: models.ResourceJudge, ID: j.ID}, j.PriorityFor(r.ID)) && !d.HasJudge(j.ID) {
				judgeCands = append(judgeCands, candidate{
					id:      j.ID,
					penalty: j.PriorityFor(r.ID).Penalty(),
					struck:  conflict.Struck(t, j, d),
				})
			}
		}
		sortCandidates(judgeCands)
		for range r.JudgesPerDebate - d.JudgeCount() {
			p.decisions = append(p.decisions, decision{debate: i, kind: models.ResourceJudge})
			p.candidates = append(p.candidates, judgeCands)
		}

		if d.RoomID() == 0 {
			var roomCands []candidate
			for _, room := range rooms {
				if available(t, r, d, models.ResourceKey{Kind: models.ResourceRoom, ID: room.ID}, room.PriorityFor(r.ID)) {
					roomCands = append(roomCands, candidate{id: room.ID, penalty: room.PriorityFor(r.ID).Penalty()})
				}
			}
			sortCandidates(roomCands)
			p.decisions = append(p.decisions, decision{debate: i, kind: models.ResourceRoom})
			p.candidates = append(p.candidates, roomCands)
		}
	}

	p.remaining = make([]int, len(p.decisions)+1)
	for i := len(p.decisions) - 1; i >= 0; i-- {
		least := 0
		if cands := p.candidates[i]; len(cands) > 0 {
			least = cands[0].penalty
			for _, c := range cands {
				least = min(least, c.penalty)
			}
		}
		p.remaining[i] = p.remaining[i+1] + least
	}
	return p
}

// available excludes unavailable resources and those already held elsewhere
// in the round at an overlapping time
func available(t *models.Tournament, r *models.Round, d *models.Debate, res models.ResourceKey, pr models.Priority) bool {
	if pr == models.PriorityUnavailable {
		return false
	}
	return !conflict.Overlapping(t, res, r.ID, d.Flight(), d.ID())
}

func sortCandidates(cands []candidate) {
	slices.SortFunc(cands, func(a, b candidate) int {
		if a.struck != b.struck {
			if a.struck {
				return 1
			}
			return -1
		}
		if c := cmp.Compare(a.penalty, b.penalty); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
}

// start is the empty assignment, carrying the conflicts already held
func (p *problem) start() state { return state{conflicts: p.held} }

func (p *problem) Complete(s state) bool { return len(s.picks) == len(p.decisions) }

func (p *problem) Successors(s state) iter.Seq[state] {
	return func(yield func(state) bool) {
		i := len(s.picks)
		dec := p.decisions[i]
		for _, c := range p.candidates[i] {
			if !p.allowed(s, i, c.id) {
				continue
			}
			next := state{
				picks:     append(slices.Clip(s.picks), c.id),
				conflicts: s.conflicts,
				penalty:   s.penalty + c.penalty,
			}
			if dec.kind == models.ResourceJudge && c.struck {
				next.conflicts++
			}
			if !yield(next) {
				return
			}
		}
	}
}

// allowed rejects a resource already picked for an overlapping debate, and
// enforces increasing judge IDs within one debate so each panel is built once
func (p *problem) allowed(s state, i, id int) bool {
	dec := p.decisions[i]
	flight := p.debates[dec.debate].Flight()
	for k, picked := range s.picks {
		prev := p.decisions[k]
		if prev.kind != dec.kind {
			continue
		}
		if prev.debate == dec.debate && dec.kind == models.ResourceJudge && picked >= id {
			return false
		}
		if picked == id && p.debates[prev.debate].Flight().Overlaps(flight) {
			return false
		}
	}
	return true
}

func (p *problem) Cost(s state) search.Cost { return search.Cost{s.conflicts, s.penalty} }

func (p *problem) LowerBound(s state) search.Cost {
	return search.Cost{s.conflicts, s.penalty + p.remaining[len(s.picks)]}
}

func (p *problem) Feasible(s state) bool { return s.conflicts == 0 }
