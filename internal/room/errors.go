package room

import (
	"errors"
	"fmt"
)

// ErrMalformedRoom is returned when a single room of a level cannot be built.
var ErrMalformedRoom = errors.New("malformed room")

// PerRoomExtractionError records the failure of one room inside a batch.
type PerRoomExtractionError struct {
	RoomID int
	Err    error
}

// Error implements error.
func (e *PerRoomExtractionError) Error() string {
	return fmt.Sprintf("extracting room %d: %v", e.RoomID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PerRoomExtractionError) Unwrap() error {
	return e.Err
}
