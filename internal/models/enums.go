package models

import "fmt"

// parseName looks up the enum value whose text form is s
func parseName[T comparable](names map[T]string, s string) (T, bool) {
	for v, name := range names {
		if name == s {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func unmarshalName[T comparable](names map[T]string, what string, text []byte, dst *T) error {
	v, ok := parseName(names, string(text))
	if !ok {
		return fmt.Errorf("unknown %s %q", what, text)
	}
	*dst = v
	return nil
}

// Priority is a judge's or room's preference level for one round.
// The zero value is PriorityNormal.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
	PriorityLow
	PriorityUnavailable
)

var priorityNames = map[Priority]string{
	PriorityNormal:      "normal",
	PriorityHigh:        "high",
	PriorityLow:         "low",
	PriorityUnavailable: "unavailable",
}

func (p Priority) String() string { return priorityNames[p] }

// Penalty is the cost of using a resource at this priority. Unavailable
// resources are never candidates, so their penalty only matters for
// best-effort results.
func (p Priority) Penalty() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityNormal:
		return 1
	case PriorityLow:
		return 2
	default:
		return 10
	}
}

func ParsePriority(s string) (Priority, bool) { return parseName(priorityNames, s) }

func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Priority) UnmarshalText(text []byte) error {
	return unmarshalName(priorityNames, "priority", text, p)
}

// Outcome is one entry's result in a debate
type Outcome int

const (
	NoDecision Outcome = iota
	Win
	Loss
	Bye
	Forfeit
	NonCompeting
)

var outcomeNames = map[Outcome]string{
	NoDecision:   "no_decision",
	Win:          "win",
	Loss:         "loss",
	Bye:          "bye",
	Forfeit:      "forfeit",
	NonCompeting: "non_competing",
}

func (o Outcome) String() string { return outcomeNames[o] }

// Complement is the outcome the opponent must receive. Outcomes that do not
// come in pairs complement to NoDecision.
func (o Outcome) Complement() Outcome {
	switch o {
	case Win:
		return Loss
	case Loss:
		return Win
	case Bye:
		return Forfeit
	case Forfeit:
		return Bye
	default:
		return NoDecision
	}
}

// CountsAsWin reports whether the outcome adds to an entry's wins
func (o Outcome) CountsAsWin() bool { return o == Win || o == Bye }

// CountsAsLoss reports whether the outcome adds to an entry's losses
func (o Outcome) CountsAsLoss() bool { return o == Loss || o == Forfeit }

// IsPseudo reports whether the outcome tags a single-entry placeholder
func (o Outcome) IsPseudo() bool { return o == Bye || o == Forfeit || o == NonCompeting }

func ParseOutcome(s string) (Outcome, bool) { return parseName(outcomeNames, s) }

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(text []byte) error {
	return unmarshalName(outcomeNames, "outcome", text, o)
}

// RoundKind is the competition category of a round
type RoundKind int

const (
	Practice RoundKind = iota
	Prelim
	Elim
)

var roundKindNames = map[RoundKind]string{
	Practice: "practice",
	Prelim:   "prelim",
	Elim:     "elim",
}

func (k RoundKind) String() string { return roundKindNames[k] }

func ParseRoundKind(s string) (RoundKind, bool) { return parseName(roundKindNames, s) }

func (k RoundKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *RoundKind) UnmarshalText(text []byte) error {
	return unmarshalName(roundKindNames, "round kind", text, k)
}

// RoundStatus tracks a round through its lifecycle
type RoundStatus int

const (
	NotStarted RoundStatus = iota
	InProgress
	Completed
)

var roundStatusNames = map[RoundStatus]string{
	NotStarted: "NOT_STARTED",
	InProgress: "IN_PROGRESS",
	Completed:  "COMPLETED",
}

func (s RoundStatus) String() string { return roundStatusNames[s] }

// HasHappened is true once a round has been started
func (s RoundStatus) HasHappened() bool { return s != NotStarted }

func ParseRoundStatus(s string) (RoundStatus, bool) { return parseName(roundStatusNames, s) }

func (s RoundStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *RoundStatus) UnmarshalText(text []byte) error {
	return unmarshalName(roundStatusNames, "round status", text, s)
}

// SidePolicy is a round's default way of assigning affirmative and negative
type SidePolicy int

const (
	SidesFixed SidePolicy = iota
	SidesFlip
)

var sidePolicyNames = map[SidePolicy]string{
	SidesFixed: "fixed",
	SidesFlip:  "flip",
}

func (p SidePolicy) String() string { return sidePolicyNames[p] }

func ParseSidePolicy(s string) (SidePolicy, bool) { return parseName(sidePolicyNames, s) }

func (p SidePolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *SidePolicy) UnmarshalText(text []byte) error {
	return unmarshalName(sidePolicyNames, "side policy", text, p)
}

// Flight splits a flighted round into two independently timed halves
type Flight int

const (
	FlightNone Flight = iota
	FlightA
	FlightB
)

var flightNames = map[Flight]string{
	FlightNone: "",
	FlightA:    "A",
	FlightB:    "B",
}

func (f Flight) String() string { return flightNames[f] }

// Overlaps reports whether two containers run at the same time. An
// unflighted container overlaps both flights.
func (f Flight) Overlaps(other Flight) bool {
	return f == FlightNone || other == FlightNone || f == other
}

// Toggle switches A and B. Unflighted containers move to flight B.
func (f Flight) Toggle() Flight {
	if f == FlightB {
		return FlightA
	}
	return FlightB
}

func ParseFlight(s string) (Flight, bool) { return parseName(flightNames, s) }

func (f Flight) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Flight) UnmarshalText(text []byte) error {
	return unmarshalName(flightNames, "flight", text, f)
}

// Outround is an elimination level. Its value is the bracket capacity.
// The zero value means no level has been assigned.
type Outround int

const (
	Finals           Outround = 2
	Semifinals       Outround = 4
	Quarterfinals    Outround = 8
	Octofinals       Outround = 16
	DoubleOctofinals Outround = 32
)

// Outrounds lists every level from the largest bracket down to finals
var Outrounds = []Outround{DoubleOctofinals, Octofinals, Quarterfinals, Semifinals, Finals}

var outroundNames = map[Outround]string{
	0:                "",
	Finals:           "finals",
	Semifinals:       "semifinals",
	Quarterfinals:    "quarterfinals",
	Octofinals:       "octofinals",
	DoubleOctofinals: "double_octofinals",
}

func (o Outround) String() string { return outroundNames[o] }

// Capacity is the number of entries the level seats
func (o Outround) Capacity() int { return int(o) }

// Valid reports whether o is one of the defined levels
func (o Outround) Valid() bool {
	_, ok := outroundNames[o]
	return ok && o != 0
}

// Next is the level that follows o, or zero after finals
func (o Outround) Next() Outround {
	if o <= Finals {
		return 0
	}
	return o / 2
}

// Remaining counts o and every level after it
func (o Outround) Remaining() int {
	n := 0
	for l := o; l.Valid(); l = l.Next() {
		n++
	}
	return n
}

func ParseOutround(s string) (Outround, bool) { return parseName(outroundNames, s) }

func (o Outround) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outround) UnmarshalText(text []byte) error {
	return unmarshalName(outroundNames, "outround", text, o)
}

// ResourceKind distinguishes judges from rooms in locks and usage lookups
type ResourceKind int

const (
	ResourceJudge ResourceKind = iota
	ResourceRoom
)

var resourceKindNames = map[ResourceKind]string{
	ResourceJudge: "judge",
	ResourceRoom:  "room",
}

func (k ResourceKind) String() string { return resourceKindNames[k] }

func ParseResourceKind(s string) (ResourceKind, bool) { return parseName(resourceKindNames, s) }

func (k ResourceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ResourceKind) UnmarshalText(text []byte) error {
	return unmarshalName(resourceKindNames, "resource kind", text, k)
}
