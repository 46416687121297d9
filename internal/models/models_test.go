package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingIsActive(t *testing.T) {
	b := Booking{Status: StatusConfirmed}
	assert.True(t, b.IsActive())

	b.Status = StatusPending
	assert.True(t, b.IsActive())

	b.Status = StatusCancelled
	assert.False(t, b.IsActive())
}

func TestBookingSameDay(t *testing.T) {
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	b := Booking{StartTime: start}

	assert.True(t, b.SameDay(time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)))
	assert.True(t, b.SameDay(start))
	assert.False(t, b.SameDay(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)))
	assert.False(t, b.SameDay(time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)))
}

func TestUserIsAdmin(t *testing.T) {
	u := User{Role: RoleAdmin}
	assert.True(t, u.IsAdmin())

	u.Role = RoleUser
	assert.False(t, u.IsAdmin())
}
