package schedule

import (
	"testing"
	"time"

	"agendador/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func booking(t *testing.T, start, end, status string) models.Booking {
	t.Helper()
	return models.Booking{
		ID:        "existing",
		RoomID:    "room1",
		StartTime: mustParse(t, start),
		EndTime:   mustParse(t, end),
		Status:    status,
	}
}

func TestHasConflictEmptyStore(t *testing.T) {
	start := mustParse(t, "2024-01-10T09:00:00Z")
	end := mustParse(t, "2024-01-10T10:00:00Z")

	conflict, err := HasConflict(start, end, nil)
	require.NoError(t, err)
	assert.False(t, conflict)

	conflict, err = HasConflict(start, end, []models.Booking{})
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestHasConflictInvalidRange(t *testing.T) {
	start := mustParse(t, "2024-01-10T10:00:00Z")
	end := mustParse(t, "2024-01-10T09:00:00Z")

	_, err := HasConflict(start, end, nil)
	assert.ErrorIs(t, err, ErrInvalidRange)

	// Zero-length intervals are also rejected.
	_, err = HasConflict(start, start, nil)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestHasConflictOverlaps(t *testing.T) {
	existing := []models.Booking{
		booking(t, "2024-01-10T09:00:00Z", "2024-01-10T10:00:00Z", models.StatusConfirmed),
	}

	cases := []struct {
		name     string
		start    string
		end      string
		conflict bool
	}{
		{"partial overlap at end", "2024-01-10T09:30:00Z", "2024-01-10T10:30:00Z", true},
		{"partial overlap at start", "2024-01-10T08:30:00Z", "2024-01-10T09:30:00Z", true},
		{"fully contains existing", "2024-01-10T08:00:00Z", "2024-01-10T11:00:00Z", true},
		{"fully inside existing", "2024-01-10T09:15:00Z", "2024-01-10T09:45:00Z", true},
		{"exact same interval", "2024-01-10T09:00:00Z", "2024-01-10T10:00:00Z", true},
		{"back-to-back after", "2024-01-10T10:00:00Z", "2024-01-10T11:00:00Z", false},
		{"back-to-back before", "2024-01-10T08:00:00Z", "2024-01-10T09:00:00Z", false},
		{"disjoint later", "2024-01-10T12:00:00Z", "2024-01-10T13:00:00Z", false},
		{"disjoint earlier", "2024-01-10T06:00:00Z", "2024-01-10T07:00:00Z", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HasConflict(mustParse(t, tc.start), mustParse(t, tc.end), existing)
			require.NoError(t, err)
			assert.Equal(t, tc.conflict, got)
		})
	}
}

func TestHasConflictIgnoresCancelled(t *testing.T) {
	existing := []models.Booking{
		booking(t, "2024-01-10T09:00:00Z", "2024-01-10T10:00:00Z", models.StatusCancelled),
	}

	conflict, err := HasConflict(
		mustParse(t, "2024-01-10T09:30:00Z"),
		mustParse(t, "2024-01-10T10:30:00Z"),
		existing,
	)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestHasConflictPendingBlocks(t *testing.T) {
	existing := []models.Booking{
		booking(t, "2024-01-10T09:00:00Z", "2024-01-10T10:00:00Z", models.StatusPending),
	}

	conflict, err := HasConflict(
		mustParse(t, "2024-01-10T09:30:00Z"),
		mustParse(t, "2024-01-10T10:30:00Z"),
		existing,
	)
	require.NoError(t, err)
	assert.True(t, conflict)
}

func TestFindConflictReturnsCollidingBooking(t *testing.T) {
	existing := []models.Booking{
		booking(t, "2024-01-10T09:00:00Z", "2024-01-10T10:00:00Z", models.StatusConfirmed),
	}

	got, err := FindConflict(
		mustParse(t, "2024-01-10T09:30:00Z"),
		mustParse(t, "2024-01-10T10:30:00Z"),
		existing,
	)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "existing", got.ID)

	got, err = FindConflict(
		mustParse(t, "2024-01-10T10:00:00Z"),
		mustParse(t, "2024-01-10T11:00:00Z"),
		existing,
	)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// Confirmed bookings admitted through the conflict check stay pairwise
// non-overlapping: each one checked against the others reports no conflict.
func TestConfirmedBookingsPairwiseDisjoint(t *testing.T) {
	stored := []models.Booking{
		booking(t, "2024-01-10T09:00:00Z", "2024-01-10T10:00:00Z", models.StatusConfirmed),
		booking(t, "2024-01-10T10:00:00Z", "2024-01-10T11:00:00Z", models.StatusConfirmed),
		booking(t, "2024-01-10T13:00:00Z", "2024-01-10T14:30:00Z", models.StatusConfirmed),
	}

	for i, a := range stored {
		others := make([]models.Booking, 0, len(stored)-1)
		others = append(others, stored[:i]...)
		others = append(others, stored[i+1:]...)

		conflict, err := HasConflict(a.StartTime, a.EndTime, others)
		require.NoError(t, err)
		assert.False(t, conflict, "booking %d overlaps a sibling", i)
	}
}
