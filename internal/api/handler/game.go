package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/autosnake/internal/api/middleware"
	"github.com/mcoot/autosnake/internal/api/request"
	"github.com/mcoot/autosnake/internal/api/response"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/session"
	"github.com/mcoot/autosnake/internal/stream"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	sessions *session.Manager
	hubs     *stream.HubManager
	logger   *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(sessions *session.Manager, hubs *stream.HubManager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		sessions: sessions,
		hubs:     hubs,
		logger:   logger.With(slog.String("component", "game_handler")),
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGameRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.TickIntervalMS < 0 {
		WriteError(w, model.ErrInvalidTickInterval)
		return
	}

	info, token, err := h.sessions.Create(r.Context(), session.CreateOptions{
		GridSize:     req.GridSize,
		Autopilot:    req.Autopilot,
		Strategy:     req.Strategy,
		TickInterval: time.Duration(req.TickIntervalMS) * time.Millisecond,
		Seed:         req.Seed,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.CreateGameResponse{
		Game:         response.GameFromModel(info),
		ControlToken: token,
	})
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.sessions.Get(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(info))
}

// Delete handles DELETE /api/v1/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), middleware.MustGetGameID(r.Context())); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Turn handles POST /api/v1/games/{id}/turn
func (h *GameHandler) Turn(w http.ResponseWriter, r *http.Request) {
	var req request.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	direction, err := model.ParseDirection(req.Direction)
	if err != nil {
		WriteError(w, err)
		return
	}

	info, accepted, err := h.sessions.RequestTurn(r.Context(), middleware.MustGetGameID(r.Context()), direction)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TurnResponse{
		Accepted: accepted,
		Game:     response.GameFromModel(info),
	})
}

// Autopilot handles POST /api/v1/games/{id}/autopilot
func (h *GameHandler) Autopilot(w http.ResponseWriter, r *http.Request) {
	var req request.AutopilotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}
	if req.Enabled == nil {
		WriteError(w, NewInvalidRequestError("enabled is required"))
		return
	}

	info, err := h.sessions.SetAutopilot(r.Context(), middleware.MustGetGameID(r.Context()), *req.Enabled)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(info))
}

// Reset handles POST /api/v1/games/{id}/reset
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	info, err := h.sessions.Reset(r.Context(), middleware.MustGetGameID(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameFromModel(info))
}

// Results handles GET /api/v1/games/{id}/results
func (h *GameHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.sessions.Results(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ResultsFromModel(results))
}

// Events handles GET /api/v1/games/{id}/events as a server-sent event stream
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	hub, initial, err := h.subscribe(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	stream.ServeSSE(w, r, hub, initial)
}

// WebSocket handles GET /api/v1/games/{id}/ws
func (h *GameHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	hub, initial, err := h.subscribe(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	stream.ServeWS(w, r, hub, h.logger, initial)
}

// subscribe resolves the hub for a live game along with the snapshot the
// new subscriber should see first
func (h *GameHandler) subscribe(r *http.Request) (*stream.Hub, stream.Message, error) {
	id := gameID(r)
	event, err := h.sessions.CurrentEvent(r.Context(), id)
	if err != nil {
		return nil, stream.Message{}, err
	}

	hub := h.hubs.GetOrCreateHub(id)

	// The game may have been deleted between the lookup and hub creation
	if _, err := h.sessions.Get(r.Context(), id); err != nil {
		h.hubs.RemoveHub(id)
		return nil, stream.Message{}, err
	}

	msg, err := stream.NewMessage(event)
	if err != nil {
		h.logger.Error("failed to encode initial snapshot",
			slog.String("game_id", string(id)),
			slog.String("error", err.Error()))
		return nil, stream.Message{}, NewInternalError()
	}
	return hub, msg, nil
}

// decodeOptional decodes a JSON body, treating an empty body as the zero value
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}
