package models

import (
	"fmt"
	"slices"
)

// TournamentRecord holds the tournament-level attributes
type TournamentRecord struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	TeamSize      int      `json:"team_size"`
	RandomSeed    uint64   `json:"random_seed"`
	BreakLevelSet bool     `json:"break_level_set"`
	BreakLevel    Outround `json:"break_level,omitempty"`
	CleanBreak    bool     `json:"clean_break"`
	Breaks        []int    `json:"breaks"`
	NextID        int      `json:"next_id"`
}

// ContainerRecord is the structured form of any container
type ContainerRecord struct {
	ID            int           `json:"id"`
	RoundID       int           `json:"round_id"`
	Kind          ContainerKind `json:"kind"`
	Flight        Flight        `json:"flight"`
	RoomID        int           `json:"room_id,omitempty"`
	JudgeIDs      []int         `json:"judge_ids"`
	Aff           int           `json:"aff,omitempty"`
	Neg           int           `json:"neg,omitempty"`
	AffOutcome    Outcome       `json:"aff_outcome"`
	NegOutcome    Outcome       `json:"neg_outcome"`
	SidesResolved bool          `json:"sides_resolved"`
}

// LockRecord is one entry of the lock table
type LockRecord struct {
	ContainerID int          `json:"container_id"`
	Kind        ResourceKind `json:"kind"`
	ResourceID  int          `json:"resource_id"`
}

// Snapshot is a lossless, self-contained copy of a tournament
type Snapshot struct {
	Tournament TournamentRecord  `json:"tournament"`
	Schools    []School          `json:"schools"`
	Entries    []Entry           `json:"entries"`
	Judges     []Judge           `json:"judges"`
	Rooms      []Room            `json:"rooms"`
	Rounds     []Round           `json:"rounds"`
	Containers []ContainerRecord `json:"containers"`
	Locks      []LockRecord      `json:"locks"`
}

// Record returns the structured form of a container
func Record(c Container) ContainerRecord {
	s := c.slot()
	rec := ContainerRecord{
		ID:       s.id,
		RoundID:  s.roundID,
		Kind:     c.Kind(),
		Flight:   s.flight,
		RoomID:   s.room,
		JudgeIDs: slices.Clone(s.judges),
	}
	if d, ok := c.(*Debate); ok {
		rec.Aff, rec.Neg = d.Aff, d.Neg
		rec.AffOutcome, rec.NegOutcome = d.AffOutcome, d.NegOutcome
		rec.SidesResolved = d.SidesResolved
	}
	return rec
}

// Snapshot copies the whole tournament into plain records
func (t *Tournament) Snapshot() Snapshot {
	snap := Snapshot{
		Tournament: TournamentRecord{
			ID:            t.ID,
			Name:          t.Name,
			TeamSize:      t.TeamSize,
			RandomSeed:    t.RandomSeed,
			BreakLevelSet: t.BreakLevelSet,
			BreakLevel:    t.BreakLevel,
			CleanBreak:    t.CleanBreak,
			Breaks:        slices.Clone(t.Breaks),
			NextID:        t.nextID,
		},
	}
	for _, s := range t.Schools() {
		snap.Schools = append(snap.Schools, *s)
	}
	for _, e := range t.Entries() {
		snap.Entries = append(snap.Entries, *e.Clone())
	}
	for _, j := range t.Judges() {
		snap.Judges = append(snap.Judges, *j.Clone())
	}
	for _, r := range t.Rooms() {
		snap.Rooms = append(snap.Rooms, *r.Clone())
	}
	for _, r := range t.Rounds() {
		snap.Rounds = append(snap.Rounds, *r.Clone())
		for _, c := range t.Items(r.ID) {
			snap.Containers = append(snap.Containers, Record(c))
		}
	}
	for key := range t.locks {
		snap.Locks = append(snap.Locks, LockRecord{
			ContainerID: key.Container,
			Kind:        key.Resource.Kind,
			ResourceID:  key.Resource.ID,
		})
	}
	slices.SortFunc(snap.Locks, func(a, b LockRecord) int {
		if a.ContainerID != b.ContainerID {
			return a.ContainerID - b.ContainerID
		}
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return a.ResourceID - b.ResourceID
	})
	return snap
}

// Restore rebuilds a tournament from a snapshot, validating every reference
func Restore(snap Snapshot) (*Tournament, error) {
	rec := snap.Tournament
	t := NewTournament(rec.ID, rec.Name, rec.TeamSize, rec.RandomSeed)
	t.BreakLevelSet = rec.BreakLevelSet
	t.BreakLevel = rec.BreakLevel
	t.CleanBreak = rec.CleanBreak

	maxID := 0
	seen := func(id int) error {
		if id <= 0 {
			return fmt.Errorf("invalid id %d", id)
		}
		maxID = max(maxID, id)
		return nil
	}

	for _, s := range snap.Schools {
		if err := seen(s.ID); err != nil {
			return nil, fmt.Errorf("school: %w", err)
		}
		s := s
		t.schools[s.ID] = &s
	}
	for _, e := range snap.Entries {
		if err := seen(e.ID); err != nil {
			return nil, fmt.Errorf("entry: %w", err)
		}
		e := e
		e.Competitors = slices.Clone(e.Competitors)
		for _, c := range e.Competitors {
			maxID = max(maxID, c.ID)
		}
		t.entries[e.ID] = &e
	}
	for _, j := range snap.Judges {
		if err := seen(j.ID); err != nil {
			return nil, fmt.Errorf("judge: %w", err)
		}
		t.judges[j.ID] = j.Clone()
	}
	for _, r := range snap.Rooms {
		if err := seen(r.ID); err != nil {
			return nil, fmt.Errorf("room: %w", err)
		}
		t.rooms[r.ID] = r.Clone()
	}
	for _, r := range snap.Rounds {
		if err := seen(r.ID); err != nil {
			return nil, fmt.Errorf("round: %w", err)
		}
		round := r.Clone()
		round.Items = nil
		t.rounds[r.ID] = round
	}

	byID := make(map[int]ContainerRecord, len(snap.Containers))
	for _, c := range snap.Containers {
		if err := seen(c.ID); err != nil {
			return nil, fmt.Errorf("container: %w", err)
		}
		byID[c.ID] = c
	}
	for _, r := range snap.Rounds {
		for _, cid := range r.Items {
			cr, ok := byID[cid]
			if !ok {
				return nil, fmt.Errorf("round %d references missing container %d", r.ID, cid)
			}
			if cr.RoundID != r.ID {
				return nil, fmt.Errorf("container %d belongs to round %d, listed in round %d", cid, cr.RoundID, r.ID)
			}
			if err := t.restoreContainer(cr); err != nil {
				return nil, err
			}
			delete(byID, cid)
		}
	}
	if len(byID) > 0 {
		return nil, fmt.Errorf("%d containers are not listed in any round", len(byID))
	}

	for _, l := range snap.Locks {
		if err := t.Lock(l.ContainerID, ResourceKey{l.Kind, l.ResourceID}); err != nil {
			return nil, fmt.Errorf("lock: %w", err)
		}
	}
	for _, id := range rec.Breaks {
		if _, ok := t.entries[id]; !ok {
			return nil, fmt.Errorf("break list references missing entry %d", id)
		}
	}
	t.Breaks = slices.Clone(rec.Breaks)
	t.nextID = max(rec.NextID, maxID+1)
	return t, nil
}

func (t *Tournament) restoreContainer(cr ContainerRecord) error {
	c := NewContainer(cr.Kind)
	if d, ok := c.(*Debate); ok {
		for _, id := range []int{cr.Aff, cr.Neg} {
			if _, exists := t.entries[id]; id != 0 && !exists {
				return fmt.Errorf("debate %d references missing entry %d", cr.ID, id)
			}
		}
		d.Aff, d.Neg = cr.Aff, cr.Neg
		d.AffOutcome, d.NegOutcome = cr.AffOutcome, cr.NegOutcome
		d.SidesResolved = cr.SidesResolved
	}
	s := c.slot()
	s.id = cr.ID
	s.roundID = cr.RoundID
	s.flight = cr.Flight
	t.containers[cr.ID] = c
	r := t.rounds[cr.RoundID]
	r.Items = append(r.Items, cr.ID)

	for _, j := range cr.JudgeIDs {
		if err := t.AssignJudge(cr.ID, j); err != nil {
			return err
		}
	}
	if cr.RoomID != 0 {
		if err := t.SetRoom(cr.ID, cr.RoomID); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy sharing no state with t
func (t *Tournament) Clone() *Tournament {
	c, err := Restore(t.Snapshot())
	if err != nil {
		// a snapshot of a consistent tournament always restores
		panic(fmt.Sprintf("models: clone failed: %v", err))
	}
	return c
}
