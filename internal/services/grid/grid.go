package grid

import "github.com/mcoot/autosnake/internal/model"

// Grid is an N×N lattice of cells
type Grid struct {
	Size int // Grid dimension (e.g., 20 for 20x20)
}

// New creates a grid, rejecting sizes outside the supported range
func New(size int) (Grid, error) {
	if !model.ValidGridSize(size) {
		return Grid{}, model.ErrInvalidGridSize
	}
	return Grid{Size: size}, nil
}

// Contains returns true if the cell is within bounds
func (g Grid) Contains(c model.Cell) bool {
	return c.X >= 0 && c.X < g.Size && c.Y >= 0 && c.Y < g.Size
}

// Shift returns the cell one step from c in direction d. The result may be out of bounds.
func (g Grid) Shift(c model.Cell, d model.Direction) model.Cell {
	dx, dy := d.Delta()
	return c.Add(dx, dy)
}

// Neighbors returns the in-bounds 4-connected neighbours of c, in model.Directions order
func (g Grid) Neighbors(c model.Cell) []model.Cell {
	neighbors := make([]model.Cell, 0, 4)
	for _, d := range model.Directions() {
		next := g.Shift(c, d)
		if g.Contains(next) {
			neighbors = append(neighbors, next)
		}
	}
	return neighbors
}

// Cells enumerates every cell, column by column (x outer, y inner)
func (g Grid) Cells() []model.Cell {
	cells := make([]model.Cell, 0, g.CellCount())
	for x := 0; x < g.Size; x++ {
		for y := 0; y < g.Size; y++ {
			cells = append(cells, model.Cell{X: x, Y: y})
		}
	}
	return cells
}

// CellCount returns the number of cells on the grid
func (g Grid) CellCount() int {
	return g.Size * g.Size
}

// Manhattan returns the sum of absolute coordinate differences between a and b
func Manhattan(a, b model.Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Occupancy reports whether a cell is taken. mapset.Set satisfies it.
type Occupancy interface {
	Has(c model.Cell) bool
}
