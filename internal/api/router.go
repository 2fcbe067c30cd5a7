package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/autosnake/internal/api/handler"
	"github.com/mcoot/autosnake/internal/api/middleware"
	"github.com/mcoot/autosnake/internal/api/response"
	"github.com/mcoot/autosnake/internal/services/session"
	"github.com/mcoot/autosnake/internal/stream"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Sessions   *session.Manager
	HubManager *stream.HubManager
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gameHandler := handler.NewGameHandler(cfg.Sessions, cfg.HubManager, cfg.Logger)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Sessions)

	controlAuth := middleware.ControlAuth(cfg.Sessions)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)

	games := api.PathPrefix("/games").Subrouter()
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}/results", gameHandler.Results).Methods(http.MethodGet)
	games.HandleFunc("/{id}/events", gameHandler.Events).Methods(http.MethodGet)
	games.HandleFunc("/{id}/ws", gameHandler.WebSocket).Methods(http.MethodGet)

	// Routes that need the game's control token
	games.Handle("/{id}", controlAuth(http.HandlerFunc(gameHandler.Delete))).Methods(http.MethodDelete)
	games.Handle("/{id}/turn", controlAuth(http.HandlerFunc(gameHandler.Turn))).Methods(http.MethodPost)
	games.Handle("/{id}/autopilot", controlAuth(http.HandlerFunc(gameHandler.Autopilot))).Methods(http.MethodPost)
	games.Handle("/{id}/reset", controlAuth(http.HandlerFunc(gameHandler.Reset))).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
