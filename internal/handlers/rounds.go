package handlers

import (
	"context"
	"net/http"

	"github.com/kcoltin/SWSDITAB-sub001/internal/services"
)

// ==================== Rounds ====================

func (h *Handlers) handleListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.Round.ListRounds(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, rounds)
}

func (h *Handlers) handleGetRound(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	view, err := h.Round.GetRound(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	var req services.Round
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	round, err := h.Round.CreateRound(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, round)
}

func (h *Handlers) handleUpdateRound(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req services.RoundUpdate
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Round.UpdateRound(r.Context(), id, req); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Round updated")
}

func (h *Handlers) handleDeleteRound(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Round.DeleteRound(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	respondDeleted(w)
}

func (h *Handlers) handleStartRound(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	status, err := h.Round.StartRound(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, StatusResponse{Status: status.String()})
}

func (h *Handlers) handleGetRoundStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	state, err := h.Tournament.RoundStatus(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, state)
}

func (h *Handlers) handleGetConflicts(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	byItem, err := h.Tournament.Conflicts(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	view, err := h.Round.GetRound(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	// Report in pairing-sequence order
	out := []ConflictResponse{}
	for _, item := range view.Items {
		if cs := byItem[item.ID]; len(cs) > 0 {
			out = append(out, ConflictResponse{ItemID: item.ID, Conflicts: cs})
		}
	}
	respondOK(w, out)
}

// ==================== Pairing sequence ====================

func (h *Handlers) handleAddDebate(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req DebateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	id, err := h.Round.AddDebate(r.Context(), roundID, req.Aff, req.Neg, position(req.Position))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: id})
}

func (h *Handlers) handleAddPseudoDebate(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req PseudoDebateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	id, err := h.Round.AddPseudoDebate(r.Context(), roundID, req.EntryID, req.Outcome, position(req.Position))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: id})
}

func (h *Handlers) handleAddJudgeAssignment(w http.ResponseWriter, r *http.Request) {
	h.addAssignment(w, r, h.Round.AddJudgeAssignment)
}

func (h *Handlers) handleAddJudgeRoomAssignment(w http.ResponseWriter, r *http.Request) {
	h.addAssignment(w, r, h.Round.AddJudgeRoomAssignment)
}

// addAssignment inserts a standalone assignment; the body is optional
func (h *Handlers) addAssignment(w http.ResponseWriter, r *http.Request, add func(ctx context.Context, roundID, pos int) (int, error)) {
	roundID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req PositionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.respondError(w, err)
			return
		}
	}
	id, err := add(r.Context(), roundID, position(req.Position))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, IDResponse{ID: id})
}

func (h *Handlers) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	pos, err := h.Round.RemoveItem(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, PositionResponse{Position: pos})
}

func (h *Handlers) handleMoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req PositionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Round.MoveItem(r.Context(), id, position(req.Position)); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Item moved")
}

// itemEdit runs an edit of the {id} item
func (h *Handlers) itemEdit(w http.ResponseWriter, r *http.Request, msg string, edit func(ctx context.Context, id int) error) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := edit(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, msg)
}

// judgeEdit runs an edit of judge {judgeID} on the {id} item
func (h *Handlers) judgeEdit(w http.ResponseWriter, r *http.Request, msg string, edit func(ctx context.Context, id, judgeID int) error) {
	judgeID, err := parseIntParam(r, "judgeID")
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.itemEdit(w, r, msg, func(ctx context.Context, id int) error {
		return edit(ctx, id, judgeID)
	})
}

func (h *Handlers) handleToggleFlight(w http.ResponseWriter, r *http.Request) {
	h.itemEdit(w, r, "Flight toggled", h.Round.ToggleFlight)
}

func (h *Handlers) handleAssignJudge(w http.ResponseWriter, r *http.Request) {
	h.judgeEdit(w, r, "Judge assigned", h.Round.AssignJudge)
}

func (h *Handlers) handleRemoveJudge(w http.ResponseWriter, r *http.Request) {
	h.judgeEdit(w, r, "Judge removed", h.Round.RemoveJudge)
}

func (h *Handlers) handleLockJudge(w http.ResponseWriter, r *http.Request) {
	h.judgeEdit(w, r, "Judge locked", h.Round.LockJudge)
}

func (h *Handlers) handleUnlockJudge(w http.ResponseWriter, r *http.Request) {
	h.judgeEdit(w, r, "Judge unlocked", h.Round.UnlockJudge)
}

func (h *Handlers) handleAssignRoom(w http.ResponseWriter, r *http.Request) {
	var req RoomRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	h.itemEdit(w, r, "Room assigned", func(ctx context.Context, id int) error {
		return h.Round.AssignRoom(ctx, id, req.RoomID)
	})
}

func (h *Handlers) handleClearRoom(w http.ResponseWriter, r *http.Request) {
	h.itemEdit(w, r, "Room cleared", h.Round.ClearRoom)
}

func (h *Handlers) handleLockRoom(w http.ResponseWriter, r *http.Request) {
	h.itemEdit(w, r, "Room locked", h.Round.LockRoom)
}

func (h *Handlers) handleUnlockRoom(w http.ResponseWriter, r *http.Request) {
	h.itemEdit(w, r, "Room unlocked", h.Round.UnlockRoom)
}

func (h *Handlers) handleResolveSides(w http.ResponseWriter, r *http.Request) {
	var req SidesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	h.itemEdit(w, r, "Sides resolved", func(ctx context.Context, id int) error {
		return h.Round.ResolveSides(ctx, id, req.Aff)
	})
}
