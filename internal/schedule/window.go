package schedule

import (
	"sort"
	"time"

	"agendador/internal/models"
)

// Upcoming returns bookings whose start is strictly after now, ascending by
// start time. The sort is stable so equal starts keep insertion order.
func Upcoming(bookings []models.Booking, now time.Time) []models.Booking {
	out := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.StartTime.After(now) {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out
}

// Past returns bookings whose end is strictly before now, in input order.
func Past(bookings []models.Booking, now time.Time) []models.Booking {
	out := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.EndTime.Before(now) {
			out = append(out, b)
		}
	}
	return out
}

// InProgress returns bookings with start <= now <= end. Upcoming and Past
// are deliberately not exhaustive; a booking running right now lands in
// neither, and this bucket exists so callers do not drop it.
func InProgress(bookings []models.Booking, now time.Time) []models.Booking {
	out := make([]models.Booking, 0)
	for _, b := range bookings {
		if !b.StartTime.After(now) && !b.EndTime.Before(now) {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out
}

// ByDay returns bookings starting on the same local calendar date as day,
// ascending by start time. Calendar date equality, not a 24h window.
func ByDay(bookings []models.Booking, day time.Time) []models.Booking {
	out := make([]models.Booking, 0)
	for _, b := range bookings {
		if b.SameDay(day) {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out
}

func sortByStart(bookings []models.Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].StartTime.Before(bookings[j].StartTime)
	})
}
