package handlers

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/kcoltin/SWSDITAB-sub001/internal/logger"
	"github.com/kcoltin/SWSDITAB-sub001/internal/services"
)

// maxImportBytes bounds an uploaded snapshot
const maxImportBytes = 32 << 20

func (h *Handlers) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Tournament.Summary(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, summary)
}

func (h *Handlers) handleGetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.Tournament.Standings(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, standings)
}

func (h *Handlers) handleExport(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.Tournament.Export(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

func (h *Handlers) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		h.respondError(w, BadRequest("Failed to read snapshot: "+err.Error()))
		return
	}
	if len(data) == 0 {
		h.respondError(w, BadRequest("Request body is empty"))
		return
	}
	if err := h.Tournament.Import(r.Context(), data); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Tournament imported")
}

func (h *Handlers) handleSeedDemo(w http.ResponseWriter, r *http.Request) {
	var req services.DemoSize
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	res, err := h.Demo.Seed(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, res)
}

// ==================== Postings ====================

func (h *Handlers) handleGetPosting(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	posting, err := h.Posting.Posting(r.Context(), roundID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, posting)
}

func (h *Handlers) handleGetPostingURL(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	url, err := h.Posting.PostingURL(r.Context(), roundID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, PostingURLResponse{URL: url})
}

func (h *Handlers) handleGetPostingQR(w http.ResponseWriter, r *http.Request) {
	roundID, err := parseIntParam(r, "id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	png, err := h.Posting.PostingQR(r.Context(), roundID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	baseURL, err := h.Settings.GetBaseURL(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondOK(w, SettingsResponse{BaseURL: baseURL})
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.Settings.SetBaseURL(r.Context(), req.BaseURL); err != nil {
		h.respondError(w, err)
		return
	}
	respondSuccess(w, "Settings updated")
}

var logLevels = []string{"debug", "info", "warn", "error"}

func (h *Handlers) handleSetLogging(w http.ResponseWriter, r *http.Request) {
	var req LoggingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if req.Level != "" {
		level := strings.ToLower(req.Level)
		if !slices.Contains(logLevels, level) {
			h.respondError(w, BadRequest("level must be one of "+strings.Join(logLevels, ", ")))
			return
		}
		h.Log.SetLevel(logger.ParseLevel(level))
	}
	if req.HTTP != nil {
		if *req.HTTP {
			h.Log.EnableHTTPLogging()
		} else {
			h.Log.DisableHTTPLogging()
		}
	}
	h.Log.Info("Logging updated", "level", h.Log.GetLevel().String(), "http", h.Log.IsHTTPLoggingEnabled())
	respondSuccess(w, "Logging updated")
}
