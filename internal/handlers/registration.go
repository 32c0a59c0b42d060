package handlers

import (
	"context"
	"net/http"

	"github.com/kcoltin/SWSDITAB-sub001/internal/services"
)

// ==================== Schools ====================

func (h *Handlers) handleListSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := h.Registration.ListSchools(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, schools)
}

func (h *Handlers) handleCreateSchool(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	school, err := h.Registration.CreateSchool(r.Context(), req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, school)
}

func (h *Handlers) handleRenameSchool(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req NameRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Registration.RenameSchool(r.Context(), id, req.Name); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "School renamed")
}

func (h *Handlers) handleDeleteSchool(w http.ResponseWriter, r *http.Request) {
	h.deleteWithCascade(w, r, h.Registration.DeleteSchool)
}

// deleteWithCascade runs a delete that honours ?cascade=true
func (h *Handlers) deleteWithCascade(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id int, cascade bool) error) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	cascade, err := parseBoolQuery(r, "cascade")
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := del(r.Context(), id, cascade); err != nil {
		h.respondError(w, err)
		return
	}
	respondDeleted(w)
}

// ==================== Entries ====================

func (h *Handlers) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Registration.ListEntries(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, entries)
}

func (h *Handlers) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	entry, err := h.Registration.GetEntry(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, entry)
}

func (h *Handlers) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	entry, err := h.Registration.CreateEntry(r.Context(), req.Competitors)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, entry)
}

func (h *Handlers) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req EntryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Registration.UpdateEntry(r.Context(), id, req.Competitors); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Entry updated")
}

func (h *Handlers) handleSetEntryEligibility(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req EligibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Registration.SetEntryEligibility(r.Context(), id, req.Eligible); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Eligibility updated")
}

func (h *Handlers) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	h.deleteWithCascade(w, r, h.Registration.DeleteEntry)
}

// ==================== Judges ====================

func (h *Handlers) handleListJudges(w http.ResponseWriter, r *http.Request) {
	judges, err := h.Registration.ListJudges(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, judges)
}

func (h *Handlers) handleCreateJudge(w http.ResponseWriter, r *http.Request) {
	var req services.Judge
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	judge, err := h.Registration.CreateJudge(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, judge)
}

func (h *Handlers) handleUpdateJudge(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req services.Judge
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Registration.UpdateJudge(r.Context(), id, req); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Judge updated")
}

func (h *Handlers) handleSetJudgeStrikes(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req services.Strikes
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Registration.SetJudgeStrikes(r.Context(), id, req); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Strikes updated")
}

func (h *Handlers) handleStrikeSchoolByName(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req SchoolStrikeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Registration.StrikeSchoolByName(r.Context(), id, req.School); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "School struck")
}

func (h *Handlers) handleSetJudgePriority(w http.ResponseWriter, r *http.Request) {
	h.setPriority(w, r, h.Registration.SetJudgePriority)
}

// setPriority decodes a PriorityRequest for the {id} resource in {roundID}
func (h *Handlers) setPriority(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, id, roundID int, priority string) error) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	roundID, err := parseIntParam(r, "roundID")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req PriorityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := set(r.Context(), id, roundID, req.Priority); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Priority updated")
}

func (h *Handlers) handleDeleteJudge(w http.ResponseWriter, r *http.Request) {
	h.deleteWithCascade(w, r, h.Registration.DeleteJudge)
}

// ==================== Rooms ====================

func (h *Handlers) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Registration.ListRooms(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, rooms)
}

func (h *Handlers) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	room, err := h.Registration.CreateRoom(r.Context(), req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondCreated(w, room)
}

func (h *Handlers) handleRenameRoom(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	var req NameRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Registration.RenameRoom(r.Context(), id, req.Name); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Room renamed")
}

func (h *Handlers) handleSetRoomPriority(w http.ResponseWriter, r *http.Request) {
	h.setPriority(w, r, h.Registration.SetRoomPriority)
}

func (h *Handlers) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	h.deleteWithCascade(w, r, h.Registration.DeleteRoom)
}
