package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Movement errors
	ErrCollision = errors.New("collision")
	ErrBoardFull = errors.New("board is full")

	// Setup errors
	ErrInvalidGridSize  = errors.New("invalid grid size")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidBody      = errors.New("invalid snake body")
	ErrUnknownStrategy  = errors.New("unknown autopilot strategy")

	// Session errors
	ErrGameNotFound        = errors.New("game not found")
	ErrInvalidControlToken = errors.New("invalid control token")
	ErrInvalidTickInterval = errors.New("invalid tick interval")

	// Storage errors
	ErrResultNotFound = errors.New("result not found")
)

// CollisionReason describes what the snake ran into
type CollisionReason string

const (
	CollisionBoundary CollisionReason = "boundary"
	CollisionSelf     CollisionReason = "self"
)

// CollisionError reports a move that would leave the grid or hit the body.
// It matches ErrCollision with errors.Is.
type CollisionError struct {
	Cell   Cell
	Reason CollisionReason
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("collision at %s: %s", e.Cell, e.Reason)
}

// Is reports whether target is ErrCollision
func (e *CollisionError) Is(target error) bool {
	return target == ErrCollision
}
