package handlers

import "github.com/kcoltin/SWSDITAB-sub001/internal/conflict"

// IDResponse is the response for operations that create a pairing item
type IDResponse struct {
	ID int `json:"id"`
}

// PositionResponse reports where a removed item stood
type PositionResponse struct {
	Position int `json:"position"`
}

// StatusResponse reports a round status after a change
type StatusResponse struct {
	Status string `json:"status"`
}

// DiscardedResponse lists the entries dropped by a smaller break level
type DiscardedResponse struct {
	Discarded []int `json:"discarded"`
}

// ConsolidateResponse counts merged assignments
type ConsolidateResponse struct {
	Merged int `json:"merged"`
}

// ConflictResponse lists one pairing item's conflicts
type ConflictResponse struct {
	ItemID    int                 `json:"item_id"`
	Conflicts []conflict.Conflict `json:"conflicts"`
}

// PostingURLResponse carries a round's public posting address
type PostingURLResponse struct {
	URL string `json:"url"`
}

// SettingsResponse is the response for settings
type SettingsResponse struct {
	BaseURL string `json:"base_url"`
}
