package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	if h.ws != nil {
		r.Get("/ws", h.ws)
	}
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}

	// Public posting for competitors
	r.Get("/postings/{id}", h.handleGetPosting)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/logout", h.handleLogout)

		// Operator API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuthAPI)

			// Tournament
			r.Get("/tournament", h.handleGetSummary)
			r.Get("/standings", h.handleGetStandings)
			r.Get("/export", h.handleExport)
			r.Post("/import", h.handleImport)
			r.Post("/demo", h.handleSeedDemo)

			// Settings
			r.Get("/settings", h.handleGetSettings)
			r.Put("/settings", h.handleUpdateSettings)
			r.Put("/logging", h.handleSetLogging)

			// Schools
			r.Get("/schools", h.handleListSchools)
			r.Post("/schools", h.handleCreateSchool)
			r.Put("/schools/{id}", h.handleRenameSchool)
			r.Delete("/schools/{id}", h.handleDeleteSchool)

			// Entries
			r.Get("/entries", h.handleListEntries)
			r.Post("/entries", h.handleCreateEntry)
			r.Get("/entries/{id}", h.handleGetEntry)
			r.Put("/entries/{id}", h.handleUpdateEntry)
			r.Put("/entries/{id}/eligibility", h.handleSetEntryEligibility)
			r.Delete("/entries/{id}", h.handleDeleteEntry)

			// Judges
			r.Get("/judges", h.handleListJudges)
			r.Post("/judges", h.handleCreateJudge)
			r.Put("/judges/{id}", h.handleUpdateJudge)
			r.Put("/judges/{id}/strikes", h.handleSetJudgeStrikes)
			r.Post("/judges/{id}/strikes/schools", h.handleStrikeSchoolByName)
			r.Put("/judges/{id}/priorities/{roundID}", h.handleSetJudgePriority)
			r.Delete("/judges/{id}", h.handleDeleteJudge)

			// Rooms
			r.Get("/rooms", h.handleListRooms)
			r.Post("/rooms", h.handleCreateRoom)
			r.Put("/rooms/{id}", h.handleRenameRoom)
			r.Put("/rooms/{id}/priorities/{roundID}", h.handleSetRoomPriority)
			r.Delete("/rooms/{id}", h.handleDeleteRoom)

			// Rounds
			r.Get("/rounds", h.handleListRounds)
			r.Post("/rounds", h.handleCreateRound)
			r.Get("/rounds/{id}", h.handleGetRound)
			r.Put("/rounds/{id}", h.handleUpdateRound)
			r.Delete("/rounds/{id}", h.handleDeleteRound)
			r.Post("/rounds/{id}/start", h.handleStartRound)
			r.Get("/rounds/{id}/status", h.handleGetRoundStatus)
			r.Get("/rounds/{id}/conflicts", h.handleGetConflicts)
			r.Post("/rounds/{id}/debates", h.handleAddDebate)
			r.Post("/rounds/{id}/pseudo-debates", h.handleAddPseudoDebate)
			r.Post("/rounds/{id}/judge-assignments", h.handleAddJudgeAssignment)
			r.Post("/rounds/{id}/judge-room-assignments", h.handleAddJudgeRoomAssignment)
			r.Post("/rounds/{id}/auto-assign", h.handleAutoAssign)
			r.Post("/rounds/{id}/consolidate", h.handleConsolidate)
			r.Post("/rounds/{id}/seed", h.handleSeedElimination)
			r.Post("/rounds/{id}/advance", h.handleAdvance)
			r.Get("/rounds/{id}/posting", h.handleGetPosting)
			r.Get("/rounds/{id}/posting/url", h.handleGetPostingURL)
			r.Get("/rounds/{id}/posting/qr", h.handleGetPostingQR)

			// Pairing sequence items
			r.Delete("/items/{id}", h.handleRemoveItem)
			r.Put("/items/{id}/position", h.handleMoveItem)
			r.Post("/items/{id}/flight", h.handleToggleFlight)
			r.Put("/items/{id}/judges/{judgeID}", h.handleAssignJudge)
			r.Delete("/items/{id}/judges/{judgeID}", h.handleRemoveJudge)
			r.Post("/items/{id}/judges/{judgeID}/lock", h.handleLockJudge)
			r.Delete("/items/{id}/judges/{judgeID}/lock", h.handleUnlockJudge)
			r.Put("/items/{id}/room", h.handleAssignRoom)
			r.Delete("/items/{id}/room", h.handleClearRoom)
			r.Post("/items/{id}/room/lock", h.handleLockRoom)
			r.Delete("/items/{id}/room/lock", h.handleUnlockRoom)

			// Debates
			r.Put("/debates/{id}/sides", h.handleResolveSides)
			r.Put("/debates/{id}/ballot", h.handleEnterBallot)
			r.Delete("/debates/{id}/ballot", h.handleRemoveBallot)

			// Break and bracket
			r.Put("/break/level", h.handleSetBreakLevel)
			r.Put("/break/clean", h.handleSetCleanBreak)
			r.Post("/break", h.handleBreak)
			r.Post("/break/fill-gaps", h.handleFillGaps)
		})
	})

	return r
}
