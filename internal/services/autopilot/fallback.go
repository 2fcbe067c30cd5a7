package autopilot

import (
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/grid"
)

// overrideOrder is tried when the serpentine move would collide
var overrideOrder = []model.Direction{
	model.DirectionDown,
	model.DirectionRight,
	model.DirectionLeft,
	model.DirectionUp,
}

// Fallback sweeps the grid row by row: right along even rows, left along odd
// rows, stepping down at each row end
type Fallback struct {
	grid grid.Grid
}

// NewFallback creates a Fallback for grid g
func NewFallback(g grid.Grid) *Fallback {
	return &Fallback{grid: g}
}

// Serpentine returns the raw sweep direction for head
func (f *Fallback) Serpentine(head model.Cell) model.Direction {
	if head.Y%2 == 0 {
		if head.X < f.grid.Size-1 {
			return model.DirectionRight
		}
		return model.DirectionDown
	}
	if head.X > 0 {
		return model.DirectionLeft
	}
	return model.DirectionDown
}

// Direction returns the sweep direction, or the first safe direction in
// overrideOrder if the sweep would collide. With nothing safe the sweep
// direction is returned as is.
func (f *Fallback) Direction(head model.Cell, occupied grid.Occupancy) model.Direction {
	sweep := f.Serpentine(head)
	if f.safe(head, sweep, occupied) {
		return sweep
	}
	for _, d := range overrideOrder {
		if f.safe(head, d, occupied) {
			return d
		}
	}
	return sweep
}

func (f *Fallback) safe(head model.Cell, d model.Direction, occupied grid.Occupancy) bool {
	next := f.grid.Shift(head, d)
	return f.grid.Contains(next) && !occupied.Has(next)
}
