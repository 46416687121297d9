package models

import "time"

type Booking struct {
	ID          string    `json:"id" validate:"required"`
	RoomID      string    `json:"room_id" validate:"required"`
	UserID      string    `json:"user_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=200"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Attendees   []string  `json:"attendees,omitempty" validate:"dive,email"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	Status      string    `json:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsActive reports whether the booking still occupies its slot.
// Cancelled bookings release the slot and never conflict.
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// SameDay reports whether the booking starts on the given local calendar date.
func (b *Booking) SameDay(day time.Time) bool {
	y1, m1, d1 := b.StartTime.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
