package database

import (
	"context"
	"os"
	"testing"
	"time"

	"agendador/internal/domain"
	"agendador/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newBooking(id, roomID, userID string, start time.Time) *models.Booking {
	return &models.Booking{
		ID:        id,
		RoomID:    roomID,
		UserID:    userID,
		Title:     "Planning",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    models.StatusConfirmed,
	}
}

func TestBookingCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("InsertAndGet", func(t *testing.T) {
		b := newBooking("b1", "room1", "u1", start)
		b.Attendees = []string{"alice@example.com", "bob@example.com"}
		b.Description = "quarterly planning"
		require.NoError(t, db.Insert(ctx, b))

		got, err := db.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "room1", got.RoomID)
		assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, got.Attendees)
		assert.Equal(t, "quarterly planning", got.Description)
		assert.True(t, got.StartTime.Equal(start))
	})

	t.Run("InsertDuplicate", func(t *testing.T) {
		err := db.Insert(ctx, newBooking("b1", "room1", "u1", start))
		assert.ErrorIs(t, err, domain.ErrDuplicateID)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := db.GetBooking(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("UpdateReplacesAllFields", func(t *testing.T) {
		updated := newBooking("b1", "room2", "u2", start.Add(2*time.Hour))
		updated.Title = "Moved"
		require.NoError(t, db.Update(ctx, updated))

		got, err := db.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, "room2", got.RoomID)
		assert.Equal(t, "u2", got.UserID)
		assert.Equal(t, "Moved", got.Title)
		assert.Empty(t, got.Attendees)

		byRoom, err := db.ByRoom(ctx, "room1")
		require.NoError(t, err)
		assert.Empty(t, byRoom)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := db.Update(ctx, newBooking("missing", "room1", "u1", start))
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("ByUserAndByRoom", func(t *testing.T) {
		require.NoError(t, db.Insert(ctx, newBooking("b2", "room2", "u1", start.Add(24*time.Hour))))

		byUser, err := db.ByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, byUser, 1)

		byRoom, err := db.ByRoom(ctx, "room2")
		require.NoError(t, err)
		assert.Len(t, byRoom, 2)
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		require.NoError(t, db.Delete(ctx, "b2"))
		require.NoError(t, db.Delete(ctx, "b2"))

		all, err := db.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestInsertChecked(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertChecked(ctx, newBooking("b1", "room1", "u1", start)))

	t.Run("ConflictRejected", func(t *testing.T) {
		overlapping := newBooking("b2", "room1", "u2", start.Add(30*time.Minute))
		err := db.InsertChecked(ctx, overlapping)

		var conflictErr *domain.ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, "b1", conflictErr.With.ID)

		// Rejected insert leaves the store unchanged.
		all, err := db.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("BackToBackAllowed", func(t *testing.T) {
		next := newBooking("b3", "room1", "u2", start.Add(time.Hour))
		require.NoError(t, db.InsertChecked(ctx, next))
	})

	t.Run("OtherRoomAllowed", func(t *testing.T) {
		other := newBooking("b4", "room2", "u2", start.Add(30*time.Minute))
		require.NoError(t, db.InsertChecked(ctx, other))
	})

	t.Run("CancelledDoesNotBlock", func(t *testing.T) {
		cancelled := newBooking("b5", "room3", "u1", start)
		cancelled.Status = models.StatusCancelled
		require.NoError(t, db.Insert(ctx, cancelled))

		replacement := newBooking("b6", "room3", "u2", start)
		require.NoError(t, db.InsertChecked(ctx, replacement))
	})
}

func TestUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := &models.User{
		ID:           "u1",
		Name:         "Ana Souza",
		Email:        "ana@example.com",
		Role:         models.RoleAdmin,
		PasswordHash: "hash",
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		require.NoError(t, db.CreateUser(ctx, user))

		got, err := db.GetUserByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", got.Email)
		assert.True(t, got.IsAdmin())

		byEmail, err := db.GetUserByEmail(ctx, "ana@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", byEmail.ID)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		dup := &models.User{ID: "u2", Name: "Other", Email: "ana@example.com", Role: models.RoleUser, PasswordHash: "x"}
		err := db.CreateUser(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrUserExists)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := db.GetUserByID(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = db.GetUserByEmail(ctx, "nope@example.com")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
