package repository

import (
	"context"
	"testing"
	"time"

	"agendador/internal/domain"
	"agendador/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionStore(t *testing.T) {
	store := NewRedisSessionStore(newTestRedis(t), time.Hour)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		session := &models.Session{Token: "tok-1", UserID: "u1", CreatedAt: time.Now().UTC()}
		require.NoError(t, store.SetSession(ctx, session))

		got, err := store.GetSession(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.UserID)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.GetSession(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		session := &models.Session{Token: "tok-2", UserID: "u2"}
		require.NoError(t, store.SetSession(ctx, session))
		require.NoError(t, store.DeleteSession(ctx, "tok-2"))

		_, err := store.GetSession(ctx, "tok-2")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("RateLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := store.CheckRateLimit(ctx, "u1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
		allowed, err := store.CheckRateLimit(ctx, "u1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		store := NewMemorySessionStore(time.Hour)
		session := &models.Session{Token: "tok-1", UserID: "u1"}
		require.NoError(t, store.SetSession(ctx, session))

		got, err := store.GetSession(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.UserID)
	})

	t.Run("Expiry", func(t *testing.T) {
		store := NewMemorySessionStore(-time.Second)
		require.NoError(t, store.SetSession(ctx, &models.Session{Token: "tok-3", UserID: "u3"}))

		_, err := store.GetSession(ctx, "tok-3")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("RateLimitWindowReset", func(t *testing.T) {
		store := NewMemorySessionStore(time.Hour)

		allowed, err := store.CheckRateLimit(ctx, "u1", 1, -time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)

		// The previous window already expired, so the counter resets.
		allowed, err = store.CheckRateLimit(ctx, "u1", 1, -time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
