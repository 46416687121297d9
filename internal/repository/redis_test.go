package repository

import (
	"context"
	"testing"
	"time"

	"agendador/internal/domain"
	"agendador/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testBooking(id, roomID, userID string) *models.Booking {
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
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

func TestRedisBookingStore(t *testing.T) {
	store := NewRedisBookingStore(newTestRedis(t))
	ctx := context.Background()

	t.Run("EmptySnapshot", func(t *testing.T) {
		got, err := store.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("InsertAndGetAll", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, testBooking("b1", "room1", "u1")))
		require.NoError(t, store.Insert(ctx, testBooking("b2", "room2", "u2")))

		got, err := store.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		// Insertion order is preserved by the snapshot.
		assert.Equal(t, "b1", got[0].ID)
		assert.Equal(t, "b2", got[1].ID)
	})

	t.Run("InsertDuplicate", func(t *testing.T) {
		err := store.Insert(ctx, testBooking("b1", "room1", "u1"))
		assert.ErrorIs(t, err, domain.ErrDuplicateID)
	})

	t.Run("GetBooking", func(t *testing.T) {
		got, err := store.GetBooking(ctx, "b2")
		require.NoError(t, err)
		assert.Equal(t, "room2", got.RoomID)

		_, err = store.GetBooking(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("UpdateReplacesAllFields", func(t *testing.T) {
		updated := testBooking("b2", "room3", "u3")
		updated.Title = "Moved meeting"
		require.NoError(t, store.Update(ctx, updated))

		byRoom, err := store.ByRoom(ctx, "room3")
		require.NoError(t, err)
		require.Len(t, byRoom, 1)
		assert.Equal(t, "Moved meeting", byRoom[0].Title)

		old, err := store.ByRoom(ctx, "room2")
		require.NoError(t, err)
		assert.Empty(t, old)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := store.Update(ctx, testBooking("missing", "room1", "u1"))
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("ByUser", func(t *testing.T) {
		got, err := store.ByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b1", got[0].ID)
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "b1"))
		require.NoError(t, store.Delete(ctx, "b1"))

		got, err := store.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b2", got[0].ID)
	})
}

func TestRedisBookingStoreDown(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	store := NewRedisBookingStore(client)
	s.Close()

	_, err = store.GetAll(context.Background())
	assert.Error(t, err)
}
