package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories, services and controllers.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrVenueNotFound      = errors.New("venue not found")
	ErrVenueDisabled      = errors.New("venue disabled")
	ErrVenueHasBookings   = errors.New("venue has bookings")
	ErrDuplicateVenueName = errors.New("venue name already in use")
	ErrBookingConflict    = errors.New("booking conflict")
	ErrDuplicateBooking   = errors.New("event already booked at venue")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ConflictError reports the confirmed bookings a candidate interval collided with.
// errors.Is(err, ErrBookingConflict) holds for any *ConflictError.
type ConflictError struct {
	VenueName string
	Conflicts []Booking
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return ErrBookingConflict.Error()
	}
	first := e.Conflicts[0]
	return fmt.Sprintf("venue %q already booked by %q on %s at %s", e.VenueName, first.EventName, first.Date, first.StartTime)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrBookingConflict
}

// First returns the first conflicting booking, or nil when the list is empty.
func (e *ConflictError) First() *Booking {
	if len(e.Conflicts) == 0 {
		return nil
	}
	return &e.Conflicts[0]
}
