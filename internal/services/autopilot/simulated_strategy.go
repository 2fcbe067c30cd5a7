package autopilot

import (
	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/grid"
	"github.com/mcoot/autosnake/internal/services/pathfinding"
)

// SimulatedStrategy follows the shortest path to food when the simulator
// approves it, and sweeps the grid otherwise
type SimulatedStrategy struct {
	planner   *pathfinding.Planner
	simulator *Simulator
	fallback  *Fallback
}

// NewSimulatedStrategy creates a new SimulatedStrategy
func NewSimulatedStrategy(g grid.Grid) *SimulatedStrategy {
	return &SimulatedStrategy{
		planner:   pathfinding.New(g),
		simulator: NewSimulator(g),
		fallback:  NewFallback(g),
	}
}

// Name returns the strategy identifier
func (s *SimulatedStrategy) Name() string {
	return model.StrategySimulated
}

// NextDirection returns the first step of a validated path to food, or the
// fallback sweep direction
func (s *SimulatedStrategy) NextDirection(view View) model.Direction {
	head := view.Head()
	if view.HasFood {
		if path, ok := s.planner.FindPath(head, view.Food, view.Occupied); ok && len(path) >= 2 {
			if s.simulator.Validate(path, view.Body, view.Occupied) {
				if d, ok := model.DirectionBetween(path[0], path[1]); ok {
					return d
				}
			}
		}
	}
	return s.fallback.Direction(head, view.Occupied)
}
