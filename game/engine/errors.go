package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPosition is returned when a footprint is out of bounds, blocked or type-mismatched
	ErrInvalidPosition = errors.New("invalid position")
	// ErrNotFound is returned for an unknown room or instance
	ErrNotFound = errors.New("not found")
	// ErrAlreadyMoving is returned when a second move is started
	ErrAlreadyMoving = errors.New("already moving")
	// ErrNotMoving is returned when finishing or cancelling without a move in flight
	ErrNotMoving = errors.New("not moving")
	// ErrCatalogMiss is returned for an unknown item id
	ErrCatalogMiss = errors.New("catalog miss")
	// ErrNotEditing is returned when staging, committing or rolling back outside edit mode
	ErrNotEditing = errors.New("room not in edit mode")
	// ErrAlreadyEditing is returned when edit mode is entered twice
	ErrAlreadyEditing = errors.New("room already in edit mode")
	// ErrSupportsStack is returned when lifting an instance that has stacked occupants above it
	ErrSupportsStack = errors.New("instance supports stacked items")
)

// PlacementError wraps an engine sentinel with the operation and room
type PlacementError struct {
	Op   string
	Room int
	Err  error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("%s room %d: %v", e.Op, e.Room, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}

func opError(op string, room int, err error) error {
	return &PlacementError{Op: op, Room: room, Err: err}
}
