package handlers

import (
	"github.com/kcoltin/SWSDITAB-sub001/internal/models"
	"github.com/kcoltin/SWSDITAB-sub001/internal/services"
)

// LoginRequest represents an operator login
type LoginRequest struct {
	Password string `json:"password"`
}

// NameRequest names a school or room
type NameRequest struct {
	Name string `json:"name"`
}

// EntryRequest represents a request to create or update an entry
type EntryRequest struct {
	Competitors []services.Competitor `json:"competitors"`
}

// EligibilityRequest represents a request to set an entry's break eligibility
type EligibilityRequest struct {
	Eligible bool `json:"eligible"`
}

// SchoolStrikeRequest strikes a school by name
type SchoolStrikeRequest struct {
	School string `json:"school"`
}

// PriorityRequest sets a judge or room priority for a round
type PriorityRequest struct {
	Priority string `json:"priority"`
}

// DebateRequest adds a debate to a round
type DebateRequest struct {
	Aff      int  `json:"aff"`
	Neg      int  `json:"neg"`
	Position *int `json:"position"`
}

// PseudoDebateRequest adds a bye, forfeit or non-competing entry to a round
type PseudoDebateRequest struct {
	EntryID  int            `json:"entry_id"`
	Outcome  models.Outcome `json:"outcome"`
	Position *int           `json:"position"`
}

// PositionRequest places an item in a round's pairing sequence
type PositionRequest struct {
	Position *int `json:"position"`
}

// RoomRequest assigns a room
type RoomRequest struct {
	RoomID int `json:"room_id"`
}

// SidesRequest resolves a flip debate's sides
type SidesRequest struct {
	Aff int `json:"aff"`
}

// BallotRequest records a debate's result
type BallotRequest struct {
	EntryID int            `json:"entry_id"`
	Outcome models.Outcome `json:"outcome"`
	Aff     int            `json:"aff,omitempty"`
}

// AutoAssignRequest runs the judge and room search
type AutoAssignRequest struct {
	ReassignUnlocked bool `json:"reassign_unlocked"`
	AcceptConflicts  bool `json:"accept_conflicts"`
	NodeBudget       int  `json:"node_budget"`
	TimeoutMS        int  `json:"timeout_ms"`
}

// AdvanceRequest pairs one elimination round's winners into another
type AdvanceRequest struct {
	To int `json:"to"`
}

// BreakLevelRequest sets the first elimination level
type BreakLevelRequest struct {
	Level          models.Outround `json:"level"`
	ConfirmDiscard bool            `json:"confirm_discard"`
}

// CleanBreakRequest toggles the clean break
type CleanBreakRequest struct {
	Clean bool `json:"clean"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	BaseURL string `json:"base_url"`
}

// LoggingRequest changes the log level or HTTP request logging
type LoggingRequest struct {
	Level string `json:"level,omitempty"`
	HTTP  *bool  `json:"http,omitempty"`
}

// position returns the requested position, or -1 to append
func position(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}
