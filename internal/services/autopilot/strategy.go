package autopilot

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"github.com/mcoot/autosnake/internal/dependencies/random"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/grid"
)

// View is the read-only game state a strategy decides from
type View struct {
	Grid     grid.Grid
	Body     []model.Cell // Tail first, head last
	Occupied mapset.Set[model.Cell]
	Food     model.Cell
	HasFood  bool
	Heading  model.Direction
}

// Head returns the leading body cell
func (v View) Head() model.Cell {
	return v.Body[len(v.Body)-1]
}

// safe reports whether a step in d stays on the grid and off the body
func (v View) safe(d model.Direction) bool {
	next := v.Grid.Shift(v.Head(), d)
	return v.Grid.Contains(next) && !v.Occupied.Has(next)
}

// Strategy decides the autopilot's next heading
type Strategy interface {
	// Name returns the strategy identifier used in configuration
	Name() string
	// NextDirection picks the direction for the coming move
	NextDirection(view View) model.Direction
}

// NewStrategy builds the named strategy for grid g
func NewStrategy(name string, g grid.Grid, rnd random.Random) (Strategy, error) {
	switch name {
	case model.StrategySimulated:
		return NewSimulatedStrategy(g), nil
	case model.StrategySafeTurn:
		return NewSafeTurnStrategy(rnd), nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownStrategy, name)
	}
}
