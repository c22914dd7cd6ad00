package services

import (
	"errors"
	"fmt"
)

var (
	// ErrOverlappingBooking is a caller-correctable conflict: pick other dates.
	ErrOverlappingBooking = errors.New("booking overlaps an existing booking")

	ErrNotFound        = errors.New("not found")
	ErrRoomNotFound    = fmt.Errorf("room %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)

	ErrInvalidDateRange = errors.New("end date must be after start date")

	// ErrPersistenceFailure wraps every storage error. The original cause stays
	// reachable through errors.Unwrap / errors.As.
	ErrPersistenceFailure = errors.New("persistence failure")
)

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistenceFailure, op, err)
}
