package model

import (
	"fmt"
	"strings"
)

// Cell identifies a square on the grid
type Cell struct {
	X int `json:"x"` // Column, 0-indexed from the left
	Y int `json:"y"` // Row, 0-indexed from the top
}

// Add returns the cell offset by the given delta
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// String renders the cell as "(x,y)"
func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction is one of the four grid headings
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Directions lists every direction in a fixed order
func Directions() []Direction {
	return []Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}
}

// ParseDirection converts a case-insensitive name into a Direction
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
	return d, nil
}

// Valid returns true if d is one of the four directions
func (d Direction) Valid() bool {
	switch d {
	case DirectionUp, DirectionDown, DirectionLeft, DirectionRight:
		return true
	default:
		return false
	}
}

// Opposite returns the 180° reversal of d
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	case DirectionLeft:
		return DirectionRight
	case DirectionRight:
		return DirectionLeft
	default:
		return d
	}
}

// Delta returns the (dx, dy) step for d. Up decreases Y.
func (d Direction) Delta() (int, int) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	case DirectionRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// DirectionBetween returns the direction leading from a to the adjacent cell b
func DirectionBetween(from, to Cell) (Direction, bool) {
	switch {
	case to.X == from.X+1 && to.Y == from.Y:
		return DirectionRight, true
	case to.X == from.X-1 && to.Y == from.Y:
		return DirectionLeft, true
	case to.Y == from.Y+1 && to.X == from.X:
		return DirectionDown, true
	case to.Y == from.Y-1 && to.X == from.X:
		return DirectionUp, true
	default:
		return "", false
	}
}
