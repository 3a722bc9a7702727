package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"chemguess-service/internal/app"
	"chemguess-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

// APIHandler exposes the game, leaderboard and log use cases as JSON over HTTP.
type APIHandler struct {
	games *app.GameService
	board *app.LeaderboardService
	logs  *app.LogService
}

func NewAPIHandler(games *app.GameService, board *app.LeaderboardService, logs *app.LogService) *APIHandler {
	return &APIHandler{games: games, board: board, logs: logs}
}

// Routes mounts every endpoint under r; callers mount it at /api.
func (h *APIHandler) Routes(r chi.Router) {
	r.Route("/chemistry", func(r chi.Router) {
		r.Get("/all", h.handleAll)
		r.Get("/search", h.handleSearch)
		r.Get("/by-formula", h.handleByFormula)
		r.Post("/reload", h.handleReload)
	})
	r.Route("/games", func(r chi.Router) {
		r.Post("/", h.handleStart)
		r.Get("/{id}", h.handleState)
		r.Post("/{id}/guesses", h.handleGuess)
		r.Get("/{id}/summary", h.handleSummary)
	})
	r.Route("/score", func(r chi.Router) {
		r.Post("/submit", h.handleSubmitScore)
		r.Get("/leaderboard", h.handleLeaderboard)
		r.Get("/leaderboard/groups", h.handleGroups)
		r.Get("/profile/{id}", h.handleProfile)
	})
	r.Route("/logs/{player}", func(r chi.Router) {
		r.Get("/", h.handleListLogs)
		r.Delete("/", h.handleClearLogs)
		r.Delete("/{id}", h.handleDeleteLog)
	})
}

func (h *APIHandler) handleAll(w http.ResponseWriter, r *http.Request) {
	compounds, err := h.games.Compounds(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compounds)
}

func (h *APIHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	compounds, err := h.games.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compounds)
}

func (h *APIHandler) handleByFormula(w http.ResponseWriter, r *http.Request) {
	formula := r.URL.Query().Get("formula")
	if formula == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "missing formula"})
		return
	}
	compound, ok, err := h.games.Lookup(r.Context(), formula)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, domain.ErrUnknownFormula)
		return
	}
	writeJSON(w, http.StatusOK, compound)
}

func (h *APIHandler) handleReload(w http.ResponseWriter, r *http.Request) {
	n, err := h.games.ReloadCatalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	log.Printf("catalog reloaded: %d compounds", n)
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

type startRequest struct {
	Player domain.Player `json:"player"`
}

func (h *APIHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid start payload"})
			return
		}
	}
	state, err := h.games.Start(r.Context(), req.Player)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (h *APIHandler) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := h.games.State(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *APIHandler) handleGuess(w http.ResponseWriter, r *http.Request) {
	var payload guessPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Formula == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid guess payload"})
		return
	}
	result, err := h.games.Guess(r.Context(), chi.URLParam(r, "id"), payload.Formula)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *APIHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.games.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *APIHandler) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var in app.ScoreInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid score payload"})
		return
	}
	record, err := h.board.Submit(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *APIHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	records, err := h.board.Leaderboard(r.Context(), r.URL.Query().Get("group"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *APIHandler) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.board.Groups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *APIHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	record, ok, err := h.board.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorPayload{Message: "profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *APIHandler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	logs, err := h.logs.List(r.Context(), chi.URLParam(r, "player"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *APIHandler) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.logs.Clear(r.Context(), chi.URLParam(r, "player")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := h.logs.Remove(r.Context(), chi.URLParam(r, "player"), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorPayload{Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownFormula),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrLogNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCatalogEmpty):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrPlayerRequired),
		errors.Is(err, domain.ErrInvalidCompound):
		return http.StatusBadRequest
	default:
		log.Printf("request failed: %v", err)
		return http.StatusInternalServerError
	}
}
