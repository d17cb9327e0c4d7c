package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/internal/analytics"
	"github.com/booomerangs/relay-api/internal/store/model"
	"github.com/booomerangs/relay-api/internal/store/sqlite"
)

func TestIngestorFlushesOnStop(t *testing.T) {
	repo, err := sqlite.NewSQLiteStorage(":memory:", zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()

	ing := analytics.NewIngestor(zap.NewNop(), repo)
	ing.Start(context.Background())

	for i := 0; i < 5; i++ {
		ing.Log(&model.DispatchLog{
			ID:        uuid.New().String(),
			Endpoint:  "chat",
			Provider:  "alpha",
			Model:     "m",
			Success:   true,
			Attempts:  1,
			CreatedAt: time.Now().UTC(),
		})
	}

	ing.Stop()

	assert.Eventually(t, func() bool {
		n, err := repo.Dispatches().CountSince(context.Background(), "alpha", 1)
		return err == nil && n == 5
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNopIngestorIsSafe(t *testing.T) {
	ing := analytics.Nop()
	ing.Start(context.Background())
	ing.Log(&model.DispatchLog{ID: "x"})
	ing.Stop()
}
