// Package schedule contains the pure decision logic of the booking engine:
// interval conflict detection and time-window classification. Nothing here
// touches storage; callers pass the current set of bookings on every call.
package schedule

import (
	"errors"
	"time"

	"agendador/internal/models"
)

var ErrInvalidRange = errors.New("end time must be after start time")

// HasConflict reports whether the candidate interval [start, end) collides
// with any active booking in existing. The slice is expected to be already
// scoped to a single room.
func HasConflict(start, end time.Time, existing []models.Booking) (bool, error) {
	conflict, err := FindConflict(start, end, existing)
	if err != nil {
		return false, err
	}
	return conflict != nil, nil
}

// FindConflict returns the first active booking whose interval overlaps
// [start, end), or nil when the slot is free. Cancelled bookings never
// conflict.
func FindConflict(start, end time.Time, existing []models.Booking) (*models.Booking, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	for i := range existing {
		b := &existing[i]
		if !b.IsActive() {
			continue
		}
		if overlaps(start, end, b.StartTime, b.EndTime) {
			return b, nil
		}
	}

	return nil, nil
}

// overlaps returns true if two half-open ranges overlap.
// [s1, e1) and [s2, e2) overlap iff s1 < e2 AND s2 < e1, so a booking
// ending exactly when another starts does not conflict.
func overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
