package handlers

import (
	"net/http"
	"time"

	"github.com/kcoltin/SWSDITAB-sub001/internal/lifecycle"
	"github.com/kcoltin/SWSDITAB-sub001/internal/pairing"
)

// ==================== Ballots ====================

func (h *Handlers) handleEnterBallot(w http.ResponseWriter, r *http.Request) {
	debateID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req BallotRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	ballot := lifecycle.Ballot{DebateID: debateID, EntryID: req.EntryID, Outcome: req.Outcome, Aff: req.Aff}
	if err := h.Ballot.EnterBallot(r.Context(), ballot); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Ballot entered")
}

func (h *Handlers) handleRemoveBallot(w http.ResponseWriter, r *http.Request) {
	debateID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Ballot.RemoveBallot(r.Context(), debateID); err != nil {
		h.respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Break and bracket ====================

func (h *Handlers) handleSetBreakLevel(w http.ResponseWriter, r *http.Request) {
	var req BreakLevelRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	discarded, err := h.Bracket.SetBreakLevel(r.Context(), req.Level, req.ConfirmDiscard)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if discarded == nil {
		discarded = []int{}
	}
	respondOK(w, DiscardedResponse{Discarded: discarded})
}

func (h *Handlers) handleSetCleanBreak(w http.ResponseWriter, r *http.Request) {
	var req CleanBreakRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Bracket.SetCleanBreak(r.Context(), req.Clean); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Clean break updated")
}

func (h *Handlers) handleBreak(w http.ResponseWriter, r *http.Request) {
	res, err := h.Bracket.Break(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, res)
}

func (h *Handlers) handleFillGaps(w http.ResponseWriter, r *http.Request) {
	created, err := h.Bracket.FillGaps(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, created)
}

func (h *Handlers) handleSeedElimination(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Bracket.SeedElimination(r.Context(), roundID); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Bracket seeded")
}

func (h *Handlers) handleAdvance(w http.ResponseWriter, r *http.Request) {
	from, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req AdvanceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Bracket.Advance(r.Context(), from, req.To); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Winners advanced")
}

// ==================== Automated pairing ====================

func (h *Handlers) handleAutoAssign(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req AutoAssignRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.respondError(w, err)
			return
		}
	}
	if req.NodeBudget < 0 || req.TimeoutMS < 0 {
		h.respondError(w, BadRequest("node_budget and timeout_ms must not be negative"))
		return
	}
	plan, err := h.Pairing.AutoAssign(r.Context(), roundID, pairing.Options{
		ReassignUnlocked: req.ReassignUnlocked,
		AcceptConflicts:  req.AcceptConflicts,
		NodeBudget:       req.NodeBudget,
		Timeout:          time.Duration(req.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, plan)
}

func (h *Handlers) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	merged, err := h.Pairing.Consolidate(r.Context(), roundID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, ConsolidateResponse{Merged: merged})
}
