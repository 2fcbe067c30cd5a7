package game

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/autosnake/internal/dependencies/clock"
	"github.com/mcoot/autosnake/internal/dependencies/random"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/autopilot"
	"github.com/mcoot/autosnake/internal/services/food"
	"github.com/mcoot/autosnake/internal/services/grid"
	"github.com/mcoot/autosnake/internal/services/input"
	"github.com/mcoot/autosnake/internal/services/snake"
)

// Config holds the settings for a single game
type Config struct {
	GridSize     int
	TickInterval time.Duration
	Strategy     string
	Autopilot    bool

	// InitialBody overrides the default starting body (tail first)
	InitialBody []model.Cell
	// InitialDirection overrides the default starting heading
	InitialDirection model.Direction
}

// DefaultConfig returns the default game configuration
func DefaultConfig() Config {
	return Config{
		GridSize:     model.DefaultGridSize,
		TickInterval: model.DefaultTickInterval,
		Strategy:     model.DefaultStrategy,
	}
}

// TickResult reports what a call to Tick did
type TickResult struct {
	Outcome model.Outcome
	Status  model.Status
	Head    model.Cell
}

// Engine runs one snake game. It is single-threaded: callers must not invoke
// its methods concurrently.
type Engine struct {
	cfg    Config
	clock  clock.Clock
	random random.Random
	logger *slog.Logger

	grid      grid.Grid
	snake     *snake.State
	foodGen   *food.Generator
	input     *input.Controller
	strategy  autopilot.Strategy
	food      model.Cell
	hasFood   bool
	autopilot bool
	score     int
	steps     int
	status    model.Status
	lastMove  time.Time
}

// New creates an engine and initializes it at cfg.GridSize
func New(cfg Config, clk clock.Clock, rnd random.Random, logger *slog.Logger) (*Engine, error) {
	if cfg.TickInterval < 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidTickInterval, cfg.TickInterval)
	}
	if cfg.TickInterval == 0 {
		cfg.TickInterval = model.DefaultTickInterval
	}
	if cfg.Strategy == "" {
		cfg.Strategy = model.DefaultStrategy
	}
	if cfg.InitialDirection == "" {
		cfg.InitialDirection = model.DirectionRight
	}
	if !cfg.InitialDirection.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidDirection, cfg.InitialDirection)
	}

	e := &Engine{
		cfg:       cfg,
		clock:     clk,
		random:    rnd,
		logger:    logger,
		autopilot: cfg.Autopilot,
	}
	if err := e.Initialize(cfg.GridSize); err != nil {
		return nil, err
	}
	return e, nil
}

// Initialize starts a fresh round on a gridSize x gridSize board. The new
// state replaces the old one only once it has been fully built.
func (e *Engine) Initialize(gridSize int) error {
	if !model.ValidGridSize(gridSize) {
		return fmt.Errorf("%w: %d (must be %d-%d)", model.ErrInvalidGridSize, gridSize, model.MinGridSize, model.MaxGridSize)
	}
	g := grid.Grid{Size: gridSize}

	body := e.cfg.InitialBody
	if len(body) == 0 {
		body = model.InitialBody(gridSize)
	}
	s, err := snake.New(g, body)
	if err != nil {
		return err
	}

	strategy, err := autopilot.NewStrategy(e.cfg.Strategy, g, e.random)
	if err != nil {
		return err
	}

	foodGen := food.New(g, e.random)
	status := model.StatusRunning
	foodCell, err := foodGen.Generate(s.Occupancy())
	hasFood := err == nil
	if errors.Is(err, model.ErrBoardFull) {
		status = model.StatusVictory
	} else if err != nil {
		return err
	}

	e.grid = g
	e.snake = s
	e.foodGen = foodGen
	e.strategy = strategy
	e.input = input.New(e.cfg.InitialDirection)
	e.food = foodCell
	e.hasFood = hasFood
	e.score = 0
	e.steps = 0
	e.status = status
	e.lastMove = e.clock.Now()
	return nil
}

// Tick applies at most one move if a full interval has passed since the last
// one. Terminal games are left untouched.
func (e *Engine) Tick(now time.Time) TickResult {
	if e.status.IsTerminal() || now.Sub(e.lastMove) < e.cfg.TickInterval {
		return e.result(model.OutcomeNone)
	}
	e.lastMove = now

	if e.autopilot {
		e.input.Override(e.strategy.NextDirection(e.view()))
	}
	direction := e.input.Commit()

	outcome, err := e.snake.Advance(direction, e.food)
	if err != nil {
		e.status = model.StatusGameOver
		e.logger.Info("game over",
			slog.String("direction", string(direction)),
			slog.String("error", err.Error()),
			slog.Int("score", e.score),
			slog.Int("length", e.snake.Len()),
			slog.Int("steps", e.steps),
		)
		return e.result(outcome)
	}
	e.steps++

	if outcome == model.OutcomeAte {
		e.score += model.FoodReward
		next, err := e.foodGen.Generate(e.snake.Occupancy())
		if err != nil {
			// Only ErrBoardFull is possible once the body is valid
			e.hasFood = false
			e.status = model.StatusVictory
			e.logger.Info("victory",
				slog.Int("score", e.score),
				slog.Int("length", e.snake.Len()),
				slog.Int("steps", e.steps),
			)
			return e.result(outcome)
		}
		e.food = next
	}

	return e.result(outcome)
}

// RequestTurn buffers a manual turn. Reversals and turns on a finished game
// are ignored and return false.
func (e *Engine) RequestTurn(d model.Direction) bool {
	if e.status.IsTerminal() {
		return false
	}
	return e.input.RequestTurn(d)
}

// SetAutopilot switches the autopilot on or off. It has no effect once the
// game has ended.
func (e *Engine) SetAutopilot(enabled bool) bool {
	if e.status.IsTerminal() {
		return false
	}
	e.autopilot = enabled
	return true
}

// Reset starts a new round on the same board size, keeping the autopilot
// setting
func (e *Engine) Reset() error {
	if err := e.Initialize(e.grid.Size); err != nil {
		return err
	}
	e.logger.Info("game reset", slog.Int("grid_size", e.grid.Size))
	return nil
}

// Snapshot returns a copy of the observable game state
func (e *Engine) Snapshot() model.Snapshot {
	snap := model.Snapshot{
		GridSize:  e.grid.Size,
		Body:      e.snake.Cells(),
		Head:      e.snake.Head(),
		Score:     e.score,
		Status:    e.status,
		Heading:   e.input.Current(),
		Autopilot: e.autopilot,
		Strategy:  e.strategy.Name(),
		Steps:     e.steps,
		Length:    e.snake.Len(),
	}
	if e.hasFood {
		f := e.food
		snap.Food = &f
	}
	return snap
}

// Status returns the current lifecycle phase
func (e *Engine) Status() model.Status {
	return e.status
}

// TickInterval returns the minimum time between moves
func (e *Engine) TickInterval() time.Duration {
	return e.cfg.TickInterval
}

func (e *Engine) view() autopilot.View {
	return autopilot.View{
		Grid:     e.grid,
		Body:     e.snake.Cells(),
		Occupied: e.snake.Occupancy(),
		Food:     e.food,
		HasFood:  e.hasFood,
		Heading:  e.input.Current(),
	}
}

func (e *Engine) result(outcome model.Outcome) TickResult {
	return TickResult{Outcome: outcome, Status: e.status, Head: e.snake.Head()}
}
