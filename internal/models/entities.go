package models

import (
	"slices"
	"strings"
	"time"
)

// School groups competitors and judges for strike purposes
type School struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Competitor is one person on an entry
type Competitor struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	SchoolID int    `json:"school_id,omitempty"`
}

// Entry is one competitive unit: a solo competitor or a team.
// Wins, Losses and OpponentWins are derived and recomputed after every ballot.
type Entry struct {
	ID              int          `json:"id"`
	Competitors     []Competitor `json:"competitors"`
	Wins            int          `json:"wins"`
	Losses          int          `json:"losses"`
	OpponentWins    int          `json:"opponent_wins"`
	Tiebreak        float64      `json:"tiebreak"`
	EligibleToBreak bool         `json:"eligible_to_break"`
}

// Name joins the competitors' names
func (e *Entry) Name() string {
	names := make([]string, len(e.Competitors))
	for i, c := range e.Competitors {
		names[i] = c.Name
	}
	return strings.Join(names, " & ")
}

// SchoolIDs returns the distinct schools represented on the entry
func (e *Entry) SchoolIDs() []int {
	var ids []int
	for _, c := range e.Competitors {
		if c.SchoolID != 0 && !slices.Contains(ids, c.SchoolID) {
			ids = append(ids, c.SchoolID)
		}
	}
	return ids
}

// Clone returns a deep copy of the entry
func (e *Entry) Clone() *Entry {
	c := *e
	c.Competitors = slices.Clone(e.Competitors)
	return &c
}

// HasCompetitor reports whether competitor id is on the entry
func (e *Entry) HasCompetitor(id int) bool {
	for _, c := range e.Competitors {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Judge adjudicates debates. SchoolID is the judge's own affiliation, which
// acts as an implicit school strike.
type Judge struct {
	ID                int              `json:"id"`
	Name              string           `json:"name"`
	SchoolID          int              `json:"school_id,omitempty"`
	SchoolStrikes     []int            `json:"school_strikes,omitempty"`
	CompetitorStrikes []int            `json:"competitor_strikes,omitempty"`
	Priorities        map[int]Priority `json:"priorities,omitempty"` // round_id -> priority
}

// PriorityFor returns the judge's priority for a round, Normal by default
func (j *Judge) PriorityFor(roundID int) Priority {
	return j.Priorities[roundID]
}

// StrikesSchool reports whether the judge may not see competitors of school
func (j *Judge) StrikesSchool(schoolID int) bool {
	if schoolID == 0 {
		return false
	}
	return j.SchoolID == schoolID || slices.Contains(j.SchoolStrikes, schoolID)
}

// StrikesCompetitor reports whether the judge is struck against competitor id
func (j *Judge) StrikesCompetitor(competitorID int) bool {
	return slices.Contains(j.CompetitorStrikes, competitorID)
}

// Clone returns a deep copy of the judge
func (j *Judge) Clone() *Judge {
	c := *j
	c.SchoolStrikes = slices.Clone(j.SchoolStrikes)
	c.CompetitorStrikes = slices.Clone(j.CompetitorStrikes)
	c.Priorities = clonePriorities(j.Priorities)
	return &c
}

// Room is a place a debate is held
type Room struct {
	ID         int              `json:"id"`
	Name       string           `json:"name"`
	Priorities map[int]Priority `json:"priorities,omitempty"` // round_id -> priority
}

// PriorityFor returns the room's priority for a round, Normal by default
func (r *Room) PriorityFor(roundID int) Priority {
	return r.Priorities[roundID]
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	c := *r
	c.Priorities = clonePriorities(r.Priorities)
	return &c
}

func clonePriorities(m map[int]Priority) map[int]Priority {
	if m == nil {
		return nil
	}
	out := make(map[int]Priority, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Round is one competition period. Items holds the container IDs of the
// round's pairing sequence in display order.
type Round struct {
	ID              int         `json:"id"`
	Name            string      `json:"name"`
	Kind            RoundKind   `json:"kind"`
	Number          int         `json:"number,omitempty"`
	Level           Outround    `json:"level,omitempty"`
	Status          RoundStatus `json:"status"`
	JudgesPerDebate int         `json:"judges_per_debate"`
	SidePolicy      SidePolicy  `json:"side_policy"`
	Start           time.Time   `json:"start,omitzero"`
	FlightBStart    time.Time   `json:"flight_b_start,omitzero"`
	ASAP            bool        `json:"asap"`
	Flighted        bool        `json:"flighted"`
	Remarks         string      `json:"remarks,omitempty"`
	Items           []int       `json:"items"`
}

// Clone returns a deep copy of the round
func (r *Round) Clone() *Round {
	c := *r
	c.Items = slices.Clone(r.Items)
	return &c
}
