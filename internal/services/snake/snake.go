package snake

import (
	"fmt"

	"github.com/gammazero/deque"
	"github.com/zyedidia/generic/mapset"

	"github.com/mcoot/autosnake/internal/model"
	"github.com/mcoot/autosnake/internal/services/grid"
)

// State is the snake's body. Cells are ordered tail first, head last, and the
// occupancy set always holds exactly the cells of the body.
type State struct {
	grid     grid.Grid
	body     deque.Deque[model.Cell]
	occupied mapset.Set[model.Cell]
}

// New creates a snake from the given cells (tail first)
func New(g grid.Grid, cells []model.Cell) (*State, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: empty body", model.ErrInvalidBody)
	}

	s := &State{
		grid:     g,
		occupied: mapset.New[model.Cell](),
	}
	for _, c := range cells {
		if !g.Contains(c) {
			return nil, fmt.Errorf("%w: %s is outside the grid", model.ErrInvalidBody, c)
		}
		if s.occupied.Has(c) {
			return nil, fmt.Errorf("%w: %s appears twice", model.ErrInvalidBody, c)
		}
		s.body.PushBack(c)
		s.occupied.Put(c)
	}
	return s, nil
}

// Head returns the leading cell
func (s *State) Head() model.Cell {
	return s.body.Back()
}

// Tail returns the trailing cell
func (s *State) Tail() model.Cell {
	return s.body.Front()
}

// Len returns the number of cells in the body
func (s *State) Len() int {
	return s.body.Len()
}

// Cells returns a copy of the body, tail first
func (s *State) Cells() []model.Cell {
	cells := make([]model.Cell, s.body.Len())
	for i := range cells {
		cells[i] = s.body.At(i)
	}
	return cells
}

// Occupied returns true if c is part of the body
func (s *State) Occupied(c model.Cell) bool {
	return s.occupied.Has(c)
}

// OccupiedCount returns the size of the occupancy set
func (s *State) OccupiedCount() int {
	return s.occupied.Size()
}

// Occupancy returns a copy of the occupancy set
func (s *State) Occupancy() mapset.Set[model.Cell] {
	occupied := mapset.New[model.Cell]()
	s.occupied.Each(func(c model.Cell) {
		occupied.Put(c)
	})
	return occupied
}

// Advance moves the head one cell in direction d. Landing on food grows the body
// by keeping the tail. A move off the grid or into the body returns a
// *model.CollisionError and leaves the snake untouched.
func (s *State) Advance(d model.Direction, food model.Cell) (model.Outcome, error) {
	next := s.grid.Shift(s.Head(), d)

	if !s.grid.Contains(next) {
		return model.OutcomeCollided, &model.CollisionError{Cell: next, Reason: model.CollisionBoundary}
	}
	// The tail has not moved yet, so chasing it directly is still a hit
	if s.occupied.Has(next) {
		return model.OutcomeCollided, &model.CollisionError{Cell: next, Reason: model.CollisionSelf}
	}

	s.body.PushBack(next)
	s.occupied.Put(next)

	if next == food {
		return model.OutcomeAte, nil
	}

	tail := s.body.PopFront()
	s.occupied.Remove(tail)
	return model.OutcomeMoved, nil
}
