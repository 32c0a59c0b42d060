// Package conflict reports the policy violations of judge and room placements.
package conflict

import (
	"fmt"

	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
)

// Source says which kind of resource a conflict is about
type Source int

const (
	SourceJudge Source = iota
	SourceRoom
)

func (s Source) String() string {
	if s == SourceRoom {
		return "ROOM"
	}
	return "JUDGE"
}

func (s Source) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Conflict is one detected violation. JudgeID is set for judge conflicts,
// RoomID for room conflicts.
type Conflict struct {
	Source  Source `json:"source"`
	JudgeID int    `json:"judge_id,omitempty"`
	RoomID  int    `json:"room_id,omitempty"`
	Reason  string `json:"reason"`
}

// Check returns the conflicts of a container, or nil when it is safe.
// Completed rounds and decided debates are final and never re-flagged.
func Check(t *models.Tournament, c models.Container) []Conflict {
	r, ok := t.Round(c.RoundID())
	if !ok || r.Status == models.Completed {
		return nil
	}
	d, isDebate := c.(*models.Debate)
	if isDebate && d.IsDecided() {
		return nil
	}

	var out []Conflict
	for _, judgeID := range c.JudgeIDs() {
		j, ok := t.Judge(judgeID)
		if !ok {
			continue
		}
		if isDebate {
			for _, reason := range Strikes(t, j, d) {
				out = append(out, Conflict{Source: SourceJudge, JudgeID: judgeID, Reason: reason})
			}
		}
		if reason, bad := judgeUnavailable(j, r); bad {
			out = append(out, Conflict{Source: SourceJudge, JudgeID: judgeID, Reason: reason})
		}
		for _, reason := range doubleBooked(t, c, models.ResourceKey{Kind: models.ResourceJudge, ID: judgeID}, j.Name) {
			out = append(out, Conflict{Source: SourceJudge, JudgeID: judgeID, Reason: reason})
		}
	}

	if roomID := c.RoomID(); roomID != 0 {
		if room, ok := t.Room(roomID); ok {
			if room.PriorityFor(r.ID) == models.PriorityUnavailable {
				out = append(out, Conflict{Source: SourceRoom, RoomID: roomID,
					Reason: fmt.Sprintf("room %s is unavailable for %s", room.Name, r.Name)})
			}
			for _, reason := range doubleBooked(t, c, models.ResourceKey{Kind: models.ResourceRoom, ID: roomID}, room.Name) {
				out = append(out, Conflict{Source: SourceRoom, RoomID: roomID, Reason: reason})
			}
		}
	}
	return out
}

// Round checks every container of a round, keyed by container ID. Safe
// containers are left out.
func Round(t *models.Tournament, roundID int) map[int][]Conflict {
	out := make(map[int][]Conflict)
	for _, c := range t.Items(roundID) {
		if cs := Check(t, c); len(cs) > 0 {
			out[c.ID()] = cs
		}
	}
	return out
}

// Strikes explains why judge j may not see debate d, if it may not
func Strikes(t *models.Tournament, j *models.Judge, d *models.Debate) []string {
	var reasons []string
	for _, entryID := range d.EntryIDs() {
		e, ok := t.Entry(entryID)
		if !ok {
			continue
		}
		for _, c := range e.Competitors {
			if j.StrikesCompetitor(c.ID) {
				reasons = append(reasons, fmt.Sprintf("%s is struck against %s", j.Name, c.Name))
			}
		}
		for _, schoolID := range e.SchoolIDs() {
			if !j.StrikesSchool(schoolID) {
				continue
			}
			name := fmt.Sprintf("school %d", schoolID)
			if s, ok := t.School(schoolID); ok {
				name = s.Name
			}
			if j.SchoolID == schoolID {
				reasons = append(reasons, fmt.Sprintf("%s is affiliated with %s (%s)", j.Name, name, e.Name()))
			} else {
				reasons = append(reasons, fmt.Sprintf("%s is struck against %s (%s)", j.Name, name, e.Name()))
			}
		}
	}
	return reasons
}

// Struck reports whether judge j may not see debate d
func Struck(t *models.Tournament, j *models.Judge, d *models.Debate) bool {
	return len(Strikes(t, j, d)) > 0
}

func judgeUnavailable(j *models.Judge, r *models.Round) (string, bool) {
	if j.PriorityFor(r.ID) != models.PriorityUnavailable {
		return "", false
	}
	return fmt.Sprintf("%s is unavailable for %s", j.Name, r.Name), true
}

// doubleBooked lists the other containers of the same round that hold the
// resource at an overlapping time
func doubleBooked(t *models.Tournament, c models.Container, res models.ResourceKey, name string) []string {
	var reasons []string
	for _, other := range t.UsageInRound(res.Kind, res.ID, c.RoundID()) {
		if other.ID() == c.ID() || !other.Flight().Overlaps(c.Flight()) {
			continue
		}
		what := "is also in"
		if t.IsLocked(other.ID(), res) {
			what = "is locked in"
		}
		reasons = append(reasons, fmt.Sprintf("%s %s %s %d", name, what, other.Kind(), other.ID()))
	}
	return reasons
}

// Overlapping reports whether the resource is already held in the round by a
// container other than exceptID at a time overlapping flight f
func Overlapping(t *models.Tournament, res models.ResourceKey, roundID int, f models.Flight, exceptID int) bool {
	for _, other := range t.UsageInRound(res.Kind, res.ID, roundID) {
		if other.ID() != exceptID && other.Flight().Overlaps(f) {
			return true
		}
	}
	return false
}
