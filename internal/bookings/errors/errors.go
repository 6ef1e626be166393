package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidInterval = errors.New("start must be before end")

	ErrPastBooking = errors.New("cannot book in the past")

	ErrOutsideBusinessHours = errors.New("booking is outside business hours")

	ErrResourceNotFound = errors.New("resource not found")

	ErrOverlapConflict = errors.New("booking overlaps an existing booking")

	ErrNotOwner = errors.New("only the requester who created the booking can cancel it")
)

// OverlapError names the accepted booking a rejected request collided with.
type OverlapError struct {
	BookingID string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: %s", ErrOverlapConflict, e.BookingID)
}

func (e *OverlapError) Is(target error) bool {
	return target == ErrOverlapConflict
}
