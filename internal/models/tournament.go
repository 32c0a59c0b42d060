package models

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
)

// ResourceKey names one judge or room
type ResourceKey struct {
	Kind ResourceKind
	ID   int
}

// LockKey names a locked resource inside a container
type LockKey struct {
	Container int
	Resource  ResourceKey
}

// Tournament is the in-memory graph of one tournament. Every entity gets an
// ID from a single sequence, so IDs never collide across types and stay
// stable for the tournament's life.
//
// Tournament has no internal synchronisation; callers serialise mutations.
type Tournament struct {
	ID       string
	Name     string
	TeamSize int
	// RandomSeed drives the tiebreak draws
	RandomSeed uint64

	BreakLevelSet bool
	BreakLevel    Outround
	CleanBreak    bool
	// Breaks lists the entries that broke, in seed order
	Breaks []int

	nextID     int
	schools    map[int]*School
	entries    map[int]*Entry
	judges     map[int]*Judge
	rooms      map[int]*Room
	rounds     map[int]*Round
	containers map[int]Container
	locks      map[LockKey]struct{}
	usage      map[ResourceKey]map[int]struct{}
}

// NewTournament creates an empty tournament
func NewTournament(id, name string, teamSize int, randomSeed uint64) *Tournament {
	if teamSize < 1 {
		teamSize = 1
	}
	return &Tournament{
		ID:         id,
		Name:       name,
		TeamSize:   teamSize,
		RandomSeed: randomSeed,
		nextID:     1,
		schools:    make(map[int]*School),
		entries:    make(map[int]*Entry),
		judges:     make(map[int]*Judge),
		rooms:      make(map[int]*Room),
		rounds:     make(map[int]*Round),
		containers: make(map[int]Container),
		locks:      make(map[LockKey]struct{}),
		usage:      make(map[ResourceKey]map[int]struct{}),
	}
}

func (t *Tournament) allocID() int {
	id := t.nextID
	t.nextID++
	return id
}

// drawTiebreak derives an entry's tiebreak from the tournament seed and the
// entry ID, so the value is stable and reproducible.
func (t *Tournament) drawTiebreak(entryID int) float64 {
	r := rand.New(rand.NewPCG(t.RandomSeed, uint64(entryID)))
	return r.Float64()
}

func sortedValues[V any](m map[int]V) []V {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]V, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// Schools

func (t *Tournament) AddSchool(name string) *School {
	s := &School{ID: t.allocID(), Name: name}
	t.schools[s.ID] = s
	return s
}

func (t *Tournament) School(id int) (*School, bool) {
	s, ok := t.schools[id]
	return s, ok
}

func (t *Tournament) Schools() []*School { return sortedValues(t.schools) }

func (t *Tournament) DeleteSchool(id int) {
	delete(t.schools, id)
}

// Entries

// AddEntry registers an entry. Competitors receive IDs and the entry draws
// its tiebreak.
func (t *Tournament) AddEntry(competitors []Competitor) *Entry {
	e := &Entry{ID: t.allocID(), EligibleToBreak: true}
	for _, c := range competitors {
		c.ID = t.allocID()
		e.Competitors = append(e.Competitors, c)
	}
	e.Tiebreak = t.drawTiebreak(e.ID)
	t.entries[e.ID] = e
	return e
}

func (t *Tournament) Entry(id int) (*Entry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

func (t *Tournament) Entries() []*Entry { return sortedValues(t.entries) }

func (t *Tournament) EntryCount() int { return len(t.entries) }

func (t *Tournament) DeleteEntry(id int) {
	delete(t.entries, id)
	t.Breaks = slices.DeleteFunc(t.Breaks, func(e int) bool { return e == id })
}

// CompetitorEntry finds the entry a competitor belongs to
func (t *Tournament) CompetitorEntry(competitorID int) (*Entry, bool) {
	for _, e := range t.entries {
		if e.HasCompetitor(competitorID) {
			return e, true
		}
	}
	return nil, false
}

// Judges

func (t *Tournament) AddJudge(name string, schoolID int) *Judge {
	j := &Judge{ID: t.allocID(), Name: name, SchoolID: schoolID}
	t.judges[j.ID] = j
	return j
}

func (t *Tournament) Judge(id int) (*Judge, bool) {
	j, ok := t.judges[id]
	return j, ok
}

func (t *Tournament) Judges() []*Judge { return sortedValues(t.judges) }

// DeleteJudge removes the judge from the roster and from every container
func (t *Tournament) DeleteJudge(id int) {
	for _, cid := range t.Usage(ResourceJudge, id) {
		_ = t.RemoveJudge(cid, id)
	}
	delete(t.judges, id)
}

// Rooms

func (t *Tournament) AddRoom(name string) *Room {
	r := &Room{ID: t.allocID(), Name: name}
	t.rooms[r.ID] = r
	return r
}

func (t *Tournament) Room(id int) (*Room, bool) {
	r, ok := t.rooms[id]
	return r, ok
}

func (t *Tournament) Rooms() []*Room { return sortedValues(t.rooms) }

// DeleteRoom removes the room from the roster and from every container
func (t *Tournament) DeleteRoom(id int) {
	for _, cid := range t.Usage(ResourceRoom, id) {
		_ = t.ClearRoom(cid)
	}
	delete(t.rooms, id)
}

// Rounds

// AddRound registers a copy of r under a new ID. Items are ignored.
func (t *Tournament) AddRound(r Round) *Round {
	r.ID = t.allocID()
	r.Items = nil
	round := &r
	t.rounds[round.ID] = round
	return round
}

func (t *Tournament) Round(id int) (*Round, bool) {
	r, ok := t.rounds[id]
	return r, ok
}

// Rounds returns every round by ID. Use lifecycle ordering for display.
func (t *Tournament) Rounds() []*Round { return sortedValues(t.rounds) }

// DeleteRound removes a round and every container it owns
func (t *Tournament) DeleteRound(id int) {
	r, ok := t.rounds[id]
	if !ok {
		return
	}
	for _, cid := range slices.Clone(r.Items) {
		_, _ = t.RemoveContainer(cid)
	}
	delete(t.rounds, id)
}

// Containers

// InsertContainer registers c in round roundID at position pos of the
// pairing sequence. A negative or out-of-range pos appends.
func (t *Tournament) InsertContainer(roundID int, c Container, pos int) error {
	r, ok := t.rounds[roundID]
	if !ok {
		return fmt.Errorf("round %d not found", roundID)
	}
	s := c.slot()
	if s.id != 0 {
		return fmt.Errorf("container %d is already registered", s.id)
	}
	judges, room := s.judges, s.room
	s.judges, s.room = nil, 0
	s.id = t.allocID()
	s.roundID = roundID
	t.containers[s.id] = c
	if pos < 0 || pos > len(r.Items) {
		pos = len(r.Items)
	}
	r.Items = slices.Insert(r.Items, pos, s.id)

	for _, j := range judges {
		if err := t.AssignJudge(s.id, j); err != nil {
			return err
		}
	}
	if room != 0 {
		return t.SetRoom(s.id, room)
	}
	return nil
}

// RemoveContainer drops a container from its round, the usage index and the
// lock table. It returns the position the container held.
func (t *Tournament) RemoveContainer(id int) (int, error) {
	c, ok := t.containers[id]
	if !ok {
		return -1, fmt.Errorf("container %d not found", id)
	}
	s := c.slot()
	for _, j := range slices.Clone(s.judges) {
		_ = t.RemoveJudge(id, j)
	}
	if s.room != 0 {
		_ = t.ClearRoom(id)
	}
	pos := -1
	if r, ok := t.rounds[s.roundID]; ok {
		pos = slices.Index(r.Items, id)
		if pos >= 0 {
			r.Items = slices.Delete(r.Items, pos, pos+1)
		}
	}
	delete(t.containers, id)
	return pos, nil
}

func (t *Tournament) Container(id int) (Container, bool) {
	c, ok := t.containers[id]
	return c, ok
}

// Debate returns the container id if it is a debate
func (t *Tournament) Debate(id int) (*Debate, bool) {
	d, ok := t.containers[id].(*Debate)
	return d, ok
}

// Items returns a round's containers in pairing-sequence order
func (t *Tournament) Items(roundID int) []Container {
	r, ok := t.rounds[roundID]
	if !ok {
		return nil
	}
	out := make([]Container, 0, len(r.Items))
	for _, id := range r.Items {
		out = append(out, t.containers[id])
	}
	return out
}

// Debates returns a round's debates in pairing-sequence order
func (t *Tournament) Debates(roundID int) []*Debate {
	var out []*Debate
	for _, c := range t.Items(roundID) {
		if d, ok := c.(*Debate); ok {
			out = append(out, d)
		}
	}
	return out
}

// SetFlight tags a container with a flight
func (t *Tournament) SetFlight(id int, f Flight) error {
	c, ok := t.containers[id]
	if !ok {
		return fmt.Errorf("container %d not found", id)
	}
	c.slot().flight = f
	return nil
}

// AssignJudge appends a judge to a container. Assigning a judge already in
// the container is a no-op.
func (t *Tournament) AssignJudge(containerID, judgeID int) error {
	c, ok := t.containers[containerID]
	if !ok {
		return fmt.Errorf("container %d not found", containerID)
	}
	if _, ok := t.judges[judgeID]; !ok {
		return fmt.Errorf("judge %d not found", judgeID)
	}
	s := c.slot()
	if slices.Contains(s.judges, judgeID) {
		return nil
	}
	s.judges = append(s.judges, judgeID)
	t.index(ResourceKey{ResourceJudge, judgeID}, containerID)
	return nil
}

// RemoveJudge takes a judge out of a container and drops its lock
func (t *Tournament) RemoveJudge(containerID, judgeID int) error {
	c, ok := t.containers[containerID]
	if !ok {
		return fmt.Errorf("container %d not found", containerID)
	}
	s := c.slot()
	i := slices.Index(s.judges, judgeID)
	if i < 0 {
		return fmt.Errorf("judge %d is not in container %d", judgeID, containerID)
	}
	s.judges = slices.Delete(s.judges, i, i+1)
	key := ResourceKey{ResourceJudge, judgeID}
	t.unindex(key, containerID)
	delete(t.locks, LockKey{containerID, key})
	return nil
}

// SetRoom binds a room to a container, replacing any previous room
func (t *Tournament) SetRoom(containerID, roomID int) error {
	c, ok := t.containers[containerID]
	if !ok {
		return fmt.Errorf("container %d not found", containerID)
	}
	if !c.HoldsRoom() {
		return fmt.Errorf("container %d cannot hold a room", containerID)
	}
	if _, ok := t.rooms[roomID]; !ok {
		return fmt.Errorf("room %d not found", roomID)
	}
	s := c.slot()
	if s.room == roomID {
		return nil
	}
	if s.room != 0 {
		_ = t.ClearRoom(containerID)
	}
	s.room = roomID
	t.index(ResourceKey{ResourceRoom, roomID}, containerID)
	return nil
}

// ClearRoom unbinds a container's room and drops its lock
func (t *Tournament) ClearRoom(containerID int) error {
	c, ok := t.containers[containerID]
	if !ok {
		return fmt.Errorf("container %d not found", containerID)
	}
	s := c.slot()
	if s.room == 0 {
		return nil
	}
	key := ResourceKey{ResourceRoom, s.room}
	t.unindex(key, containerID)
	delete(t.locks, LockKey{containerID, key})
	s.room = 0
	return nil
}

// Locks

// Lock pins a resource inside a container. The resource must be there.
func (t *Tournament) Lock(containerID int, res ResourceKey) error {
	c, ok := t.containers[containerID]
	if !ok {
		return fmt.Errorf("container %d not found", containerID)
	}
	if !holds(c, res) {
		return fmt.Errorf("%s %d is not in container %d", res.Kind, res.ID, containerID)
	}
	t.locks[LockKey{containerID, res}] = struct{}{}
	return nil
}

func (t *Tournament) Unlock(containerID int, res ResourceKey) {
	delete(t.locks, LockKey{containerID, res})
}

func (t *Tournament) IsLocked(containerID int, res ResourceKey) bool {
	_, ok := t.locks[LockKey{containerID, res}]
	return ok
}

// LockedJudges returns the locked judges of a container in judge order
func (t *Tournament) LockedJudges(containerID int) []int {
	c, ok := t.containers[containerID]
	if !ok {
		return nil
	}
	var out []int
	for _, j := range c.slot().judges {
		if t.IsLocked(containerID, ResourceKey{ResourceJudge, j}) {
			out = append(out, j)
		}
	}
	return out
}

// RoomLocked reports whether the container's room is pinned
func (t *Tournament) RoomLocked(containerID int) bool {
	c, ok := t.containers[containerID]
	if !ok || c.RoomID() == 0 {
		return false
	}
	return t.IsLocked(containerID, ResourceKey{ResourceRoom, c.RoomID()})
}

func holds(c Container, res ResourceKey) bool {
	if res.Kind == ResourceRoom {
		return c.RoomID() == res.ID && res.ID != 0
	}
	return c.HasJudge(res.ID)
}

// Usage index

func (t *Tournament) index(key ResourceKey, containerID int) {
	set, ok := t.usage[key]
	if !ok {
		set = make(map[int]struct{})
		t.usage[key] = set
	}
	set[containerID] = struct{}{}
}

func (t *Tournament) unindex(key ResourceKey, containerID int) {
	set := t.usage[key]
	delete(set, containerID)
	if len(set) == 0 {
		delete(t.usage, key)
	}
}

// Usage returns the IDs of every container holding the resource, ascending
func (t *Tournament) Usage(kind ResourceKind, id int) []int {
	return slices.Sorted(maps.Keys(t.usage[ResourceKey{kind, id}]))
}

// UsageInRound returns the containers of one round holding the resource
func (t *Tournament) UsageInRound(kind ResourceKind, id, roundID int) []Container {
	var out []Container
	for _, cid := range t.Usage(kind, id) {
		if c := t.containers[cid]; c.RoundID() == roundID {
			out = append(out, c)
		}
	}
	return out
}
