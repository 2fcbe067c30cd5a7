package autopilot

import (
	"github.com/gammazero/deque"
	"github.com/zyedidia/generic/mapset"

	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/grid"
	"github.com/mcoot/autosnake/internal/services/pathfinding"
)

// Simulator checks that following a path to food leaves the snake a route
// back to its own tail
type Simulator struct {
	planner *pathfinding.Planner
}

// NewSimulator creates a Simulator for grid g
func NewSimulator(g grid.Grid) *Simulator {
	return &Simulator{planner: pathfinding.New(g)}
}

// Validate replays path (head first, food last) against copies of body and
// occupied and reports whether the head can still reach the tail afterwards.
// Neither argument is modified.
func (s *Simulator) Validate(path []model.Cell, body []model.Cell, occupied mapset.Set[model.Cell]) bool {
	if len(path) < 2 || len(body) == 0 {
		return false
	}

	var simBody deque.Deque[model.Cell]
	for _, c := range body {
		simBody.PushBack(c)
	}
	simOccupied := mapset.New[model.Cell]()
	occupied.Each(func(c model.Cell) {
		simOccupied.Put(c)
	})

	steps := path[1:]
	for i, c := range steps {
		simBody.PushBack(c)
		simOccupied.Put(c)
		if i == len(steps)-1 {
			break // Eating keeps the tail
		}
		simOccupied.Remove(simBody.PopFront())
	}

	head, tail := simBody.Back(), simBody.Front()
	// The tail moves away before the head could ever reach it
	simOccupied.Remove(tail)

	return s.planner.Reachable(head, tail, simOccupied)
}
