package gateway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booomerangs/relay-api/internal/provider"
	"github.com/booomerangs/relay-api/internal/store/cache/memory"
)

func TestProbeUnknownProvider(t *testing.T) {
	s := newTestService(newTestRegistry(), testDispatchConfig())

	_, err := s.Probe(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestProbeSuccess(t *testing.T) {
	r := newTestRegistry(&stubProvider{name: "alpha", complete: completeWith("Test")})
	s := newTestService(r, testDispatchConfig())

	resp, err := s.Probe(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Test", resp.Response)
	assert.Contains(t, resp.Message, "alpha")
	assert.False(t, resp.RequiresAPIKey)
}

func TestProbeTruncatesLongResponses(t *testing.T) {
	long := strings.Repeat("x", 500)
	r := newTestRegistry(&stubProvider{name: "alpha", complete: completeWith(long)})
	s := newTestService(r, testDispatchConfig())

	resp, err := s.Probe(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Len(t, resp.Response, 100)
}

func TestProbeMissingKeyDetection(t *testing.T) {
	r := newTestRegistry(&stubProvider{
		name:     "alpha",
		complete: completeErr("upstream 401: invalid api_key supplied"),
	})
	s := newTestService(r, testDispatchConfig())

	resp, err := s.Probe(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.True(t, resp.RequiresAPIKey)
}

func TestProbeResultIsCached(t *testing.T) {
	calls := 0
	r := newTestRegistry(&stubProvider{
		name: "alpha",
		complete: func(context.Context, *provider.Request) (string, error) {
			calls++
			if calls > 1 {
				return "", errors.New("should have been cached")
			}
			return "Test", nil
		},
	})
	s := newTestService(r, testDispatchConfig())
	s.cache = memory.NewMemoryCache()

	first, err := s.Probe(context.Background(), "alpha")
	require.NoError(t, err)

	second, err := s.Probe(context.Background(), "alpha")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}
