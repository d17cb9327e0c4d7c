package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/internal/store"
	"github.com/booomerangs/relay-api/internal/store/model"
	"github.com/booomerangs/relay-api/internal/store/sqlite"
)

func newStore(t *testing.T) store.Repository {
	t.Helper()
	repo, err := sqlite.NewSQLiteStorage(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func entry(providerName string, age time.Duration) *model.DispatchLog {
	return &model.DispatchLog{
		ID:        uuid.New().String(),
		Endpoint:  "chat",
		Provider:  providerName,
		Model:     "test-model",
		Success:   true,
		Attempts:  1,
		LatencyMS: 250,
		CreatedAt: time.Now().UTC().Add(-age),
	}
}

func TestLogAndCountSince(t *testing.T) {
	repo := newStore(t)
	ctx := context.Background()

	require.NoError(t, repo.Dispatches().Log(ctx, entry("alpha", time.Minute)))
	require.NoError(t, repo.Dispatches().Log(ctx, entry("alpha", 2*time.Hour)))
	require.NoError(t, repo.Dispatches().Log(ctx, entry("alpha", 48*time.Hour)))
	require.NoError(t, repo.Dispatches().Log(ctx, entry("beta", time.Minute)))

	n, err := repo.Dispatches().CountSince(ctx, "alpha", 24)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "entries older than the window are excluded")

	n, err = repo.Dispatches().CountSince(ctx, "beta", 24)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.Dispatches().CountSince(ctx, "gamma", 24)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestLogRejectsDuplicateID(t *testing.T) {
	repo := newStore(t)
	ctx := context.Background()

	e := entry("alpha", 0)
	require.NoError(t, repo.Dispatches().Log(ctx, e))
	assert.Error(t, repo.Dispatches().Log(ctx, e))
}

func TestFallbackFlagRoundTrip(t *testing.T) {
	repo := newStore(t)
	ctx := context.Background()

	e := entry("alpha_fallback", 0)
	e.Fallback = true
	e.Model = "fallback"
	require.NoError(t, repo.Dispatches().Log(ctx, e))

	n, err := repo.Dispatches().CountSince(ctx, "alpha_fallback", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
