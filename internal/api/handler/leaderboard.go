package handler

import (
	"net/http"
	"strconv"

	"github.com/mcoot/autosnake/internal/api/response"
	"github.com/mcoot/autosnake/internal/services/session"
)

// Leaderboard limits
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// LeaderboardHandler serves the cross-game high score table
type LeaderboardHandler struct {
	sessions *session.Manager
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(sessions *session.Manager) *LeaderboardHandler {
	return &LeaderboardHandler{sessions: sessions}
}

// Get handles GET /api/v1/leaderboard?limit=N
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxLeaderboardLimit {
			WriteError(w, NewInvalidRequestError("limit must be between 1 and 100"))
			return
		}
		limit = n
	}

	results, err := h.sessions.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ResultsFromModel(results))
}
