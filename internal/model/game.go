package model

import "time"

// Board and pacing defaults
const (
	MinGridSize     = 3
	MaxGridSize     = 64
	DefaultGridSize = 20

	// FoodReward is the score awarded per food eaten
	FoodReward = 10

	// InitialLength is the number of cells in a freshly spawned snake
	InitialLength = 3

	DefaultTickInterval = 200 * time.Millisecond
)

// GameID uniquely identifies a hosted game session
type GameID string

// Status is the lifecycle phase of a game
type Status string

const (
	StatusRunning  Status = "running"
	StatusGameOver Status = "game_over" // Snake collided
	StatusVictory  Status = "victory"   // Snake fills the whole board
)

// IsTerminal returns true once the game can no longer change without a reset
func (s Status) IsTerminal() bool {
	return s == StatusGameOver || s == StatusVictory
}

// Outcome is the result of a single tick
type Outcome string

const (
	OutcomeNone     Outcome = "none"     // Not enough time elapsed, or game already over
	OutcomeMoved    Outcome = "moved"    // Head advanced and tail followed
	OutcomeAte      Outcome = "ate"      // Head landed on food, body grew
	OutcomeCollided Outcome = "collided" // Move rejected, game is over
)

// ValidGridSize returns true if size is within the supported range
func ValidGridSize(size int) bool {
	return size >= MinGridSize && size <= MaxGridSize
}

// InitialBody returns the starting three-cell body (tail first) heading right
func InitialBody(gridSize int) []Cell {
	x, y := gridSize/4, gridSize/2
	body := make([]Cell, InitialLength)
	for i := range body {
		body[i] = Cell{X: x + i, Y: y}
	}
	return body
}

// Snapshot is a read-only copy of a game's observable state
type Snapshot struct {
	GridSize  int       `json:"grid_size"`
	Body      []Cell    `json:"body"` // Tail first, head last
	Head      Cell      `json:"head"`
	Food      *Cell     `json:"food"` // nil after victory
	Score     int       `json:"score"`
	Status    Status    `json:"status"`
	Heading   Direction `json:"heading"`
	Autopilot bool      `json:"autopilot"`
	Strategy  string    `json:"strategy"`
	Steps     int       `json:"steps"`
	Length    int       `json:"length"`
}

// GameResult is the record kept for a finished round
type GameResult struct {
	GameID     GameID    `json:"game_id"`
	Round      int       `json:"round"` // Increments on every reset
	GridSize   int       `json:"grid_size"`
	Status     Status    `json:"status"`
	Score      int       `json:"score"`
	Length     int       `json:"length"`
	Steps      int       `json:"steps"`
	Autopilot  bool      `json:"autopilot"`
	Strategy   string    `json:"strategy"`
	FinishedAt time.Time `json:"finished_at"`
}

// GameInfo describes a hosted game and its current state
type GameInfo struct {
	ID        GameID    `json:"id"`
	Round     int       `json:"round"`
	CreatedAt time.Time `json:"created_at"`
	Snapshot  Snapshot  `json:"snapshot"`
}
