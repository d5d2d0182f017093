package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idproof/internal/kyc/models"
	"idproof/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	newSession := func(ttl time.Duration) *models.Session {
		return models.NewSession(models.Contact{Email: "user@example.com"}, models.ProfileStandard, "", now, ttl)
	}

	t.Run("save then get", func(t *testing.T) {
		store := NewInMemoryStore()
		sess := newSession(time.Hour)
		require.NoError(t, store.Save(ctx, sess))
		got, err := store.Get(ctx, sess.ID, now)
		require.NoError(t, err)
		assert.Same(t, sess, got)
		assert.True(t, errors.Is(store.Save(ctx, sess), sentinel.ErrConflict))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := NewInMemoryStore().Get(ctx, models.NewSessionID(), now)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("expired sessions are hidden and swept", func(t *testing.T) {
		store := NewInMemoryStore()
		short, long := newSession(time.Minute), newSession(time.Hour)
		require.NoError(t, store.Save(ctx, short))
		require.NoError(t, store.Save(ctx, long))

		later := now.Add(2 * time.Minute)
		_, err := store.Get(ctx, short.ID, later)
		assert.True(t, errors.Is(err, sentinel.ErrExpired))

		removed, err := store.DeleteExpired(ctx, later)
		require.NoError(t, err)
		assert.Equal(t, []models.SessionID{short.ID}, removed)
		assert.Equal(t, 1, store.Len())
	})
}
