// Package search provides a depth-first branch-and-bound search over
// problem-defined solution states.
//
// A Problem describes how to grow a partial solution one decision at a time,
// when a solution is complete, what a complete solution costs and how cheap
// any completion of a partial solution could possibly be. Solve walks the
// successor tree, keeps the cheapest feasible complete solution and prunes
// every branch whose lower bound cannot beat it.
package search

import (
	"context"
	"errors"
	"iter"
)

// ErrInfeasible is returned when the search finished without finding any
// complete solution that the problem reports as feasible.
var ErrInfeasible = errors.New("no feasible assignment")

// Problem is implemented by concrete combinatorial problems.
type Problem[S any] interface {
	// Complete reports whether s needs no further decisions.
	Complete(s S) bool
	// Successors lazily yields the states reachable from s by one more
	// decision. An empty sequence marks a dead end.
	Successors(s S) iter.Seq[S]
	// Cost scores a complete solution. Lower is better.
	Cost(s S) Cost
	// LowerBound must never exceed the cost of any completion of s.
	LowerBound(s S) Cost
	// Feasible reports whether a complete solution may be returned as a
	// success (for instance, it carries no hard-constraint violations).
	Feasible(s S) bool
}

// Options bound the exploration. Zero values mean unbounded.
type Options struct {
	// MaxNodes caps the number of states visited.
	MaxNodes int
}

// Result carries the outcome of a search.
type Result[S any] struct {
	// Best is the cheapest feasible complete solution, valid when Found.
	Best S
	Cost Cost
	// Found reports whether Best holds a feasible solution.
	Found bool

	// Fallback is the cheapest infeasible complete solution seen, valid
	// when HasFallback. Callers may offer it as a best-effort result.
	Fallback     S
	FallbackCost Cost
	HasFallback  bool

	// Nodes is the number of states visited.
	Nodes int
	// Pruned is the number of states abandoned by the bound.
	Pruned int
	// Truncated is set when the node budget or the context stopped the
	// search before the space was exhausted.
	Truncated bool
}

type solver[S any] struct {
	ctx     context.Context
	problem Problem[S]
	opts    Options
	res     Result[S]
}

// Solve explores the solution space rooted at initial and returns the best
// feasible complete solution. When none was found, the returned error is
// ErrInfeasible and the result still carries any fallback and counters.
// Cancellation of ctx and an exhausted node budget stop the search early;
// the best solution found so far is returned with Truncated set.
func Solve[S any](ctx context.Context, p Problem[S], initial S, opts Options) (Result[S], error) {
	s := &solver[S]{ctx: ctx, problem: p, opts: opts}
	s.visit(initial)
	if !s.res.Found {
		return s.res, ErrInfeasible
	}
	return s.res, nil
}

// visit returns false when the search must stop altogether.
func (s *solver[S]) visit(state S) bool {
	if s.stopped() {
		return false
	}
	s.res.Nodes++

	if s.problem.Complete(state) {
		s.offer(state)
		return true
	}

	if s.res.Found && s.problem.LowerBound(state).Compare(s.res.Cost) >= 0 {
		s.res.Pruned++
		return true
	}

	for next := range s.problem.Successors(state) {
		if !s.visit(next) {
			return false
		}
		// the incumbent may have improved enough to cut the rest of this branch
		if s.res.Found && s.problem.LowerBound(state).Compare(s.res.Cost) >= 0 {
			s.res.Pruned++
			break
		}
	}
	return true
}

func (s *solver[S]) offer(state S) {
	cost := s.problem.Cost(state)
	if s.problem.Feasible(state) {
		if !s.res.Found || cost.Compare(s.res.Cost) < 0 {
			s.res.Best, s.res.Cost, s.res.Found = state, cost, true
		}
		return
	}
	if !s.res.HasFallback || cost.Compare(s.res.FallbackCost) < 0 {
		s.res.Fallback, s.res.FallbackCost, s.res.HasFallback = state, cost, true
	}
}

func (s *solver[S]) stopped() bool {
	if s.res.Truncated {
		return true
	}
	if s.opts.MaxNodes > 0 && s.res.Nodes >= s.opts.MaxNodes {
		s.res.Truncated = true
		return true
	}
	if s.ctx != nil && s.ctx.Err() != nil {
		s.res.Truncated = true
		return true
	}
	return false
}
