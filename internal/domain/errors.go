package domain

import (
	"errors"
	"fmt"
	"time"

	"agendador/internal/models"
)

var (
	// ErrDuplicateID is returned by Insert when a booking with the same
	// identifier is already stored.
	ErrDuplicateID = errors.New("booking id already exists")

	// ErrBookingNotFound is returned by Update and lookups for an unknown
	// identifier. Delete is a no-op instead.
	ErrBookingNotFound = errors.New("booking not found")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrRoomNotFound       = errors.New("room not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrForbidden rejects an operation on a booking the actor does not own.
	ErrForbidden = errors.New("operation not allowed for this user")
)

// ConflictError rejects a proposed slot and names the colliding booking so
// the caller can tell the user which interval is taken.
type ConflictError struct {
	RoomID string
	Start  time.Time
	End    time.Time
	With   models.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %s is already booked from %s to %s",
		e.RoomID,
		e.With.StartTime.Format(time.RFC3339),
		e.With.EndTime.Format(time.RFC3339))
}

