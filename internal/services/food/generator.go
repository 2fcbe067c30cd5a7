package food

import (
	"github.com/mcoot/autosnake/internal/dependencies/random"
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/grid"
)

// Generator places food on a uniformly random free cell
type Generator struct {
	grid   grid.Grid
	random random.Random
}

// New creates a new food Generator
func New(g grid.Grid, rnd random.Random) *Generator {
	return &Generator{
		grid:   g,
		random: rnd,
	}
}

// Generate picks a free cell. It returns model.ErrBoardFull when every cell is occupied.
func (g *Generator) Generate(occupied grid.Occupancy) (model.Cell, error) {
	free := g.FreeCells(occupied)
	if len(free) == 0 {
		return model.Cell{}, model.ErrBoardFull
	}
	return free[g.random.Intn(len(free))], nil
}

// FreeCells lists the unoccupied cells in grid enumeration order
func (g *Generator) FreeCells(occupied grid.Occupancy) []model.Cell {
	var free []model.Cell
	for _, c := range g.grid.Cells() {
		if !occupied.Has(c) {
			free = append(free, c)
		}
	}
	return free
}
