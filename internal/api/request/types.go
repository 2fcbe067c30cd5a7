package request

// CreateGameRequest is the request body for starting a game.
// Zero values fall back to server defaults.
type CreateGameRequest struct {
	GridSize       int     `json:"grid_size,omitempty"`
	Autopilot      bool    `json:"autopilot,omitempty"`
	Strategy       string  `json:"strategy,omitempty"`
	Seed           *uint64 `json:"seed,omitempty"`
	TickIntervalMS int     `json:"tick_interval_ms,omitempty"`
}

// TurnRequest is the request body for steering the snake
type TurnRequest struct {
	Direction string `json:"direction"`
}

// AutopilotRequest is the request body for toggling the autopilot
type AutopilotRequest struct {
	Enabled *bool `json:"enabled"`
}
