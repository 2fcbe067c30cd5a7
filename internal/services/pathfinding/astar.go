package pathfinding

import (
	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"

	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/grid"
)

// Planner finds shortest paths over the free cells of a grid
type Planner struct {
	grid grid.Grid
}

// New creates a new Planner
func New(g grid.Grid) *Planner {
	return &Planner{grid: g}
}

// frontierNode is an entry in the open set. seq records push order so that
// nodes with equal f are expanded first-in-first-out.
type frontierNode struct {
	cell model.Cell
	g    int
	f    int
	seq  int
}

func frontierLess(a, b frontierNode) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

// FindPath runs A* from start to target, treating blocked cells as walls.
// The start cell is never considered blocked. The returned path includes both
// endpoints; ok is false when the target cannot be reached.
func (p *Planner) FindPath(start, target model.Cell, blocked grid.Occupancy) ([]model.Cell, bool) {
	if !p.grid.Contains(start) || !p.grid.Contains(target) {
		return nil, false
	}
	if start == target {
		return []model.Cell{start}, true
	}
	if blocked.Has(target) {
		return nil, false
	}

	open := heap.New[frontierNode](frontierLess)
	gScore := map[model.Cell]int{start: 0}
	cameFrom := make(map[model.Cell]model.Cell)
	closed := mapset.New[model.Cell]()

	seq := 0
	open.Push(frontierNode{cell: start, g: 0, f: grid.Manhattan(start, target), seq: seq})

	for open.Size() > 0 {
		current, _ := open.Pop()
		if closed.Has(current.cell) {
			continue // Stale entry superseded by a cheaper push
		}
		if current.cell == target {
			return reconstruct(cameFrom, start, target), true
		}
		closed.Put(current.cell)

		for _, next := range p.grid.Neighbors(current.cell) {
			if closed.Has(next) || blocked.Has(next) {
				continue
			}
			tentative := current.g + 1
			if known, ok := gScore[next]; ok && tentative >= known {
				continue
			}
			gScore[next] = tentative
			cameFrom[next] = current.cell
			seq++
			open.Push(frontierNode{
				cell: next,
				g:    tentative,
				f:    tentative + grid.Manhattan(next, target),
				seq:  seq,
			})
		}
	}

	return nil, false
}

// Reachable reports whether target can be reached from start
func (p *Planner) Reachable(start, target model.Cell, blocked grid.Occupancy) bool {
	_, ok := p.FindPath(start, target, blocked)
	return ok
}

func reconstruct(cameFrom map[model.Cell]model.Cell, start, target model.Cell) []model.Cell {
	path := []model.Cell{target}
	for current := target; current != start; {
		current = cameFrom[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
