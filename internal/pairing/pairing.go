// Package pairing binds judges and rooms to a round's debates. AutoAssign
// drives the branch-and-bound search over the open seats; Consolidate folds
// standalone assignments into debates.
package pairing

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kcoltin/SWSDITAB-sub001/internal/errors"
	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/pkg/search"
)

// Options tune an automated assignment
type Options struct {
	// ReassignUnlocked clears every unlocked judge and room of the round's
	// debates before searching
	ReassignUnlocked bool `json:"reassign_unlocked"`
	// AcceptConflicts applies the least-conflicted assignment when no
	// conflict-free one exists
	AcceptConflicts bool `json:"accept_conflicts"`
	// NodeBudget caps the states the search may visit; zero is unbounded
	NodeBudget int `json:"node_budget"`
	// Timeout caps the search time; zero is unbounded
	Timeout time.Duration `json:"timeout"`
}

// Placement is one resource bound by the search
type Placement struct {
	DebateID int                 `json:"debate_id"`
	Kind     models.ResourceKind `json:"kind"`
	ID       int                 `json:"id"`
}

// Plan reports what AutoAssign did
type Plan struct {
	Placements []Placement `json:"placements"`
	Conflicts  int         `json:"conflicts"`
	Penalty    int         `json:"penalty"`
	Nodes      int         `json:"nodes"`
	Pruned     int         `json:"pruned"`
	Truncated  bool        `json:"truncated"`
}

// AutoAssign fills the open judge seats and rooms of a round's true debates.
// A failed call may leave t with unlocked resources cleared, so callers run it
// on a private copy and commit that copy only on success.
//
// When no conflict-free assignment exists it fails with an ErrInfeasible
// error unless AcceptConflicts is set and a conflicted assignment was found.
// Conflicts of judges and rooms already placed, locked ones included, count
// against the result.
func AutoAssign(ctx context.Context, t *models.Tournament, roundID int, opts Options) (Plan, error) {
	r, ok := t.Round(roundID)
	if !ok {
		return Plan{}, errors.NotFoundf("round %d not found", roundID)
	}
	if r.Status == models.Completed {
		return Plan{}, errors.Preconditionf("%q is completed", r.Name)
	}

	debates := lifecycle.TrueDebates(t, roundID)
	if opts.ReassignUnlocked {
		clearUnlocked(t, debates)
	}

	p := newProblem(t, r, debates)
	if len(p.decisions) == 0 {
		if p.held > 0 && !opts.AcceptConflicts {
			return Plan{Conflicts: p.held}, errors.Infeasible(fmt.Sprintf("%q has no open seats and %d conflicts remain", r.Name, p.held), nil)
		}
		return Plan{Conflicts: p.held}, nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	res, err := search.Solve(ctx, p, p.start(), search.Options{MaxNodes: opts.NodeBudget})

	plan := Plan{Nodes: res.Nodes, Pruned: res.Pruned, Truncated: res.Truncated}
	best, cost := res.Best, res.Cost
	if err != nil {
		if !stderrors.Is(err, search.ErrInfeasible) {
			return plan, errors.Internal(err)
		}
		if !opts.AcceptConflicts || !res.HasFallback {
			if res.Truncated {
				return plan, errors.Infeasible("search stopped before a conflict-free assignment was found", err)
			}
			return plan, errors.Infeasible("no conflict-free assignment of judges and rooms", err)
		}
		best, cost = res.Fallback, res.FallbackCost
	}

	plan.Conflicts, plan.Penalty = cost[0], cost[1]
	for i, id := range best.picks {
		dec := p.decisions[i]
		d := p.debates[dec.debate]
		var err error
		if dec.kind == models.ResourceJudge {
			err = t.AssignJudge(d.ID(), id)
		} else {
			err = t.SetRoom(d.ID(), id)
		}
		if err != nil {
			return plan, errors.Internal(err)
		}
		plan.Placements = append(plan.Placements, Placement{DebateID: d.ID(), Kind: dec.kind, ID: id})
	}
	return plan, nil
}

func clearUnlocked(t *models.Tournament, debates []*models.Debate) {
	for _, d := range debates {
		for _, j := range d.JudgeIDs() {
			if !t.IsLocked(d.ID(), models.ResourceKey{Kind: models.ResourceJudge, ID: j}) {
				_ = t.RemoveJudge(d.ID(), j)
			}
		}
		if d.RoomID() != 0 && !t.RoomLocked(d.ID()) {
			_ = t.ClearRoom(d.ID())
		}
	}
}

// Consolidate moves the judges (and room) of each standalone assignment, in
// pairing-sequence order, into the next true debate that has no judges yet.
// Lock flags travel with the resources. Consumed assignments are removed;
// it returns how many were merged.
func Consolidate(t *models.Tournament, roundID int) (int, error) {
	if _, ok := t.Round(roundID); !ok {
		return 0, errors.NotFoundf("round %d not found", roundID)
	}

	var targets []*models.Debate
	for _, d := range lifecycle.TrueDebates(t, roundID) {
		if d.JudgeCount() == 0 {
			targets = append(targets, d)
		}
	}

	merged := 0
	for _, c := range t.Items(roundID) {
		if c.Kind() == models.KindDebate || c.JudgeCount() == 0 {
			continue
		}
		if len(targets) == 0 {
			break
		}
		d := targets[0]
		targets = targets[1:]

		judges := c.JudgeIDs()
		locked := make(map[int]bool)
		for _, j := range t.LockedJudges(c.ID()) {
			locked[j] = true
		}
		room, roomLocked := c.RoomID(), t.RoomLocked(c.ID())

		if _, err := t.RemoveContainer(c.ID()); err != nil {
			return merged, errors.Internal(err)
		}
		for _, j := range judges {
			if err := t.AssignJudge(d.ID(), j); err != nil {
				return merged, errors.Internal(err)
			}
			if locked[j] {
				_ = t.Lock(d.ID(), models.ResourceKey{Kind: models.ResourceJudge, ID: j})
			}
		}
		if room != 0 && (d.RoomID() == 0 || !t.RoomLocked(d.ID())) {
			if err := t.SetRoom(d.ID(), room); err != nil {
				return merged, errors.Internal(err)
			}
			if roomLocked {
				_ = t.Lock(d.ID(), models.ResourceKey{Kind: models.ResourceRoom, ID: room})
			}
		}
		merged++
	}
	return merged, nil
}
