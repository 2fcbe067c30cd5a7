package response

import (
	"time"

	"github.com/mcoot/autosnake/internal/model"
)

// Cell represents a grid cell in API responses
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CellFromModel converts a model.Cell to a response Cell
func CellFromModel(c model.Cell) Cell {
	return Cell{X: c.X, Y: c.Y}
}

// Snapshot represents the observable state of a game
type Snapshot struct {
	GridSize      int    `json:"grid_size"`
	Body          []Cell `json:"body"` // Tail first, head last
	Head          Cell   `json:"head"`
	Food          *Cell  `json:"food"`
	Score         int    `json:"score"`
	Status        string `json:"status"`
	Heading       string `json:"heading"`
	Autopilot     bool   `json:"autopilot"`
	Strategy      string `json:"strategy"`
	StrategyLabel string `json:"strategy_label"`
	Steps         int    `json:"steps"`
	Length        int    `json:"length"`
}

// SnapshotFromModel converts a model.Snapshot to a response Snapshot
func SnapshotFromModel(s model.Snapshot) Snapshot {
	body := make([]Cell, len(s.Body))
	for i, c := range s.Body {
		body[i] = CellFromModel(c)
	}

	var food *Cell
	if s.Food != nil {
		f := CellFromModel(*s.Food)
		food = &f
	}

	return Snapshot{
		GridSize:      s.GridSize,
		Body:          body,
		Head:          CellFromModel(s.Head),
		Food:          food,
		Score:         s.Score,
		Status:        string(s.Status),
		Heading:       string(s.Heading),
		Autopilot:     s.Autopilot,
		Strategy:      s.Strategy,
		StrategyLabel: model.StrategyDisplayName(s.Strategy),
		Steps:         s.Steps,
		Length:        s.Length,
	}
}

// Game represents a hosted game in API responses
type Game struct {
	ID        string    `json:"id"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"created_at"`
	Snapshot  Snapshot  `json:"snapshot"`
}

// GameFromModel converts a model.GameInfo to a response Game
func GameFromModel(info *model.GameInfo) Game {
	return Game{
		ID:        string(info.ID),
		Round:     info.Round,
		CreatedAt: info.CreatedAt,
		Snapshot:  SnapshotFromModel(info.Snapshot),
	}
}

// CreateGameResponse is returned when a game is started.
// The control token is only ever shown here.
type CreateGameResponse struct {
	Game         Game   `json:"game"`
	ControlToken string `json:"control_token"`
}

// TurnResponse is returned from a turn request
type TurnResponse struct {
	Accepted bool `json:"accepted"`
	Game     Game `json:"game"`
}

// Result represents a finished round
type Result struct {
	GameID     string    `json:"game_id"`
	Round      int       `json:"round"`
	GridSize   int       `json:"grid_size"`
	Status     string    `json:"status"`
	Score      int       `json:"score"`
	Length     int       `json:"length"`
	Steps      int       `json:"steps"`
	Autopilot  bool      `json:"autopilot"`
	Strategy   string    `json:"strategy"`
	FinishedAt time.Time `json:"finished_at"`
}

// ResultFromModel converts a model.GameResult to a response Result
func ResultFromModel(r *model.GameResult) Result {
	return Result{
		GameID:     string(r.GameID),
		Round:      r.Round,
		GridSize:   r.GridSize,
		Status:     string(r.Status),
		Score:      r.Score,
		Length:     r.Length,
		Steps:      r.Steps,
		Autopilot:  r.Autopilot,
		Strategy:   r.Strategy,
		FinishedAt: r.FinishedAt,
	}
}

// ResultsResponse lists finished rounds
type ResultsResponse struct {
	Results []Result `json:"results"`
}

// ResultsFromModel converts a slice of results, never returning nil
func ResultsFromModel(results []*model.GameResult) ResultsResponse {
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = ResultFromModel(r)
	}
	return ResultsResponse{Results: out}
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status string `json:"status"`
}
