package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-report-portal/internal/models"

	appErrors "github.com/noah-isme/faculty-report-portal/pkg/errors"
)

func TestSessionRepositoryMemoryFallback(t *testing.T) {
	repo := NewSessionRepository(NewCacheRepository(nil, nil), nil)
	ctx := context.Background()

	session := &models.Session{ID: "s1", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, session))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSessionRepositoryExpiry(t *testing.T) {
	repo := NewSessionRepository(nil, nil)
	ctx := context.Background()

	err := repo.Save(ctx, &models.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Second)})
	assert.ErrorIs(t, err, appErrors.ErrSessionExpired)

	require.NoError(t, repo.Save(ctx, &models.Session{ID: "s2", ExpiresAt: time.Now().Add(time.Minute)}))
	repo.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	assert.Equal(t, []string{"s2"}, repo.PurgeExpired())
	_, err = repo.Get(ctx, "s2")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCacheRepositoryWithoutClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var out map[string]int
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", 1, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
	assert.False(t, repo.Enabled())
}
