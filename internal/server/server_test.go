package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/internal/analytics"
	"github.com/booomerangs/relay-api/internal/config"
	"github.com/booomerangs/relay-api/internal/gateway"
	"github.com/booomerangs/relay-api/internal/provider"
	"github.com/booomerangs/relay-api/internal/server"
	"github.com/booomerangs/relay-api/internal/store/cache/memory"
	"github.com/booomerangs/relay-api/pkg/api"
)

// newTestServer wires a full HTTP surface over an empty provider
// registry: every chat request exercises the fallback path with no
// network traffic.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "5004", Env: "development"},
		Dispatch: config.DispatchConfig{
			DefaultProvider:   "Qwen_Qwen_2_72B",
			Backups:           []string{"Qwen_Qwen_2_72B", "Qwen_Qwen_2_5_Max"},
			DefaultTimeoutSec: 20,
			MinTimeoutSec:     1,
			MaxTimeoutSec:     60,
		},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 10000, Burst: 10000},
	}

	logger := zap.NewNop()
	registry := gateway.BuildRegistry(config.RegistryConfig{}, map[string]provider.Settings{}, logger)
	service := gateway.NewService(logger, registry, cfg.Dispatch, gateway.NewSeededResponder(42), analytics.Nop(), memory.NewMemoryCache())

	return server.New(cfg, logger, service).Handler()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "5004", resp.Port)
	assert.Equal(t, 0, resp.Providers)
	assert.Greater(t, resp.Timestamp, 0.0)
}

func TestBannerEndpoint(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BOOOMERANGS")
}

func TestChatRejectsMissingMessage(t *testing.T) {
	h := newTestServer(t)

	w := postJSON(t, h, "/chat", `{"provider": "anything"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "message")
}

func TestChatAlwaysSucceeds(t *testing.T) {
	h := newTestServer(t)

	w := postJSON(t, h, "/chat", `{"message": "привет"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success, "chat never surfaces provider failures")
	assert.Equal(t, gateway.GreetingReply, resp.Response)
	assert.Equal(t, "Qwen_Qwen_2_72B_fallback", resp.Provider)
	assert.Equal(t, "fallback", resp.Model)
	assert.InDelta(t, 0.1, resp.Elapsed, 0.001)
}

func TestChatPreferredProviderInFallbackLabel(t *testing.T) {
	h := newTestServer(t)

	w := postJSON(t, h, "/chat", `{"message": "что-нибудь", "provider": "Phind"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Phind_fallback", resp.Provider)
}

func TestDirectUnknownProviderIs404(t *testing.T) {
	h := newTestServer(t)

	w := postJSON(t, h, "/chat/direct", `{"message": "hi", "provider": "Ghost"}`)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp api.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Response, "Ghost")
	assert.Equal(t, "unknown", resp.Provider)
	assert.NotEmpty(t, resp.Error)
}

func TestDirectRequiresProvider(t *testing.T) {
	h := newTestServer(t)

	w := postJSON(t, h, "/chat/direct", `{"message": "hi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProbeUnknownProviderStableShape(t *testing.T) {
	h := newTestServer(t)

	var bodies []string
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test-provider/Ghost", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
		bodies = append(bodies, w.Body.String())
	}

	// Polling an unknown name yields an identical payload every time.
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[1], bodies[2])
	assert.Contains(t, bodies[0], "Ghost")
}

func TestStreamFallbackFrames(t *testing.T) {
	h := newTestServer(t)

	w := postJSON(t, h, "/chat/stream", `{"message": "привет", "timeout": 5000}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	frames := strings.Split(strings.TrimSpace(body), "\n\n")
	require.Len(t, frames, 3, "error, fallback text, done")

	for _, frame := range frames {
		assert.True(t, strings.HasPrefix(frame, "data: "))
	}

	assert.Contains(t, frames[0], "error")
	assert.Contains(t, frames[1], "BOOOMERANGS-Error")

	var done api.StreamDone
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[2], "data: ")), &done))
	assert.Equal(t, "done", done.Status)
	assert.Equal(t, gateway.GreetingReply, done.FullText)
	assert.Equal(t, "error-mode", done.Model)
}

func TestStreamRejectsMissingMessage(t *testing.T) {
	h := newTestServer(t)

	w := postJSON(t, h, "/chat/stream", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
