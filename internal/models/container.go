package models

import "slices"

// ContainerKind tags the variants of Container
type ContainerKind int

const (
	KindDebate ContainerKind = iota
	KindJudgeAssignment
	KindJudgeRoomAssignment
)

var containerKindNames = map[ContainerKind]string{
	KindDebate:              "debate",
	KindJudgeAssignment:     "judge_assignment",
	KindJudgeRoomAssignment: "judge_room_assignment",
}

func (k ContainerKind) String() string { return containerKindNames[k] }

func ParseContainerKind(s string) (ContainerKind, bool) { return parseName(containerKindNames, s) }

func (k ContainerKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ContainerKind) UnmarshalText(text []byte) error {
	return unmarshalName(containerKindNames, "container kind", text, k)
}

// Slot is the judge- and room-holding part shared by every container.
// Its resources change only through Tournament so the usage index stays
// current.
type Slot struct {
	id      int
	roundID int
	flight  Flight
	room    int
	judges  []int
}

func (s *Slot) ID() int              { return s.id }
func (s *Slot) RoundID() int         { return s.roundID }
func (s *Slot) Flight() Flight       { return s.flight }
func (s *Slot) RoomID() int          { return s.room }
func (s *Slot) JudgeIDs() []int      { return slices.Clone(s.judges) }
func (s *Slot) JudgeCount() int      { return len(s.judges) }
func (s *Slot) slot() *Slot          { return s }
func (s *Slot) HasJudge(id int) bool { return slices.Contains(s.judges, id) }

// Container is anything in a round's pairing sequence that can hold judges
// and possibly a room: a Debate or a standalone assignment.
type Container interface {
	ID() int
	RoundID() int
	Flight() Flight
	RoomID() int
	JudgeIDs() []int
	JudgeCount() int
	HasJudge(id int) bool
	Kind() ContainerKind
	// HoldsRoom reports whether a room may be bound to the container
	HoldsRoom() bool
	slot() *Slot
}

// Debate is one matchup. Aff and Neg are entry IDs, zero when empty; before
// sides are resolved they are simply the first and second entry.
type Debate struct {
	Slot
	Aff           int
	Neg           int
	AffOutcome    Outcome
	NegOutcome    Outcome
	SidesResolved bool
}

func (d *Debate) Kind() ContainerKind { return KindDebate }
func (d *Debate) HoldsRoom() bool     { return true }

// EntryIDs returns the non-empty entry slots in side order
func (d *Debate) EntryIDs() []int {
	var ids []int
	for _, id := range []int{d.Aff, d.Neg} {
		if id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasEntry reports whether entry id is in the debate
func (d *Debate) HasEntry(id int) bool {
	return id != 0 && (d.Aff == id || d.Neg == id)
}

// IsTrue reports whether the debate holds two entries to be contested
func (d *Debate) IsTrue() bool {
	return d.Aff != 0 && d.Neg != 0
}

// IsPseudo reports whether the debate is a single-entry bye, forfeit or
// non-competing placeholder
func (d *Debate) IsPseudo() bool {
	if d.IsTrue() {
		return false
	}
	if d.Aff != 0 {
		return d.AffOutcome.IsPseudo()
	}
	if d.Neg != 0 {
		return d.NegOutcome.IsPseudo()
	}
	return false
}

// IsDecided reports whether a true debate has a result recorded
func (d *Debate) IsDecided() bool {
	return d.IsTrue() && d.AffOutcome != NoDecision
}

// OutcomeFor returns entry id's outcome, NoDecision if it is not in the debate
func (d *Debate) OutcomeFor(id int) Outcome {
	switch {
	case id == 0:
		return NoDecision
	case d.Aff == id:
		return d.AffOutcome
	case d.Neg == id:
		return d.NegOutcome
	}
	return NoDecision
}

// Opponent returns the other entry in the debate, or zero
func (d *Debate) Opponent(id int) int {
	switch {
	case id == 0:
		return 0
	case d.Aff == id:
		return d.Neg
	case d.Neg == id:
		return d.Aff
	}
	return 0
}

// Winner returns the entry that won or received a bye, or zero
func (d *Debate) Winner() int {
	switch {
	case d.Aff != 0 && d.AffOutcome.CountsAsWin():
		return d.Aff
	case d.Neg != 0 && d.NegOutcome.CountsAsWin():
		return d.Neg
	}
	return 0
}

// JudgeAssignment holds judges not yet bound to a debate
type JudgeAssignment struct {
	Slot
}

func (a *JudgeAssignment) Kind() ContainerKind { return KindJudgeAssignment }
func (a *JudgeAssignment) HoldsRoom() bool     { return false }

// JudgeRoomAssignment holds judges and a room not yet bound to a debate
type JudgeRoomAssignment struct {
	Slot
}

func (a *JudgeRoomAssignment) Kind() ContainerKind { return KindJudgeRoomAssignment }
func (a *JudgeRoomAssignment) HoldsRoom() bool     { return true }

// NewDebate returns an unregistered debate between two entries (either may be zero)
func NewDebate(aff, neg int) *Debate {
	return &Debate{Aff: aff, Neg: neg}
}

// NewPseudoDebate returns an unregistered single-entry placeholder
func NewPseudoDebate(entryID int, outcome Outcome) *Debate {
	return &Debate{Aff: entryID, AffOutcome: outcome}
}

// NewContainer returns an empty, unregistered container of the given kind
func NewContainer(kind ContainerKind) Container {
	switch kind {
	case KindJudgeAssignment:
		return &JudgeAssignment{}
	case KindJudgeRoomAssignment:
		return &JudgeRoomAssignment{}
	default:
		return &Debate{}
	}
}

func cloneContainer(c Container) Container {
	switch v := c.(type) {
	case *Debate:
		d := *v
		d.judges = slices.Clone(v.judges)
		return &d
	case *JudgeAssignment:
		a := *v
		a.judges = slices.Clone(v.judges)
		return &a
	case *JudgeRoomAssignment:
		a := *v
		a.judges = slices.Clone(v.judges)
		return &a
	}
	return nil
}
