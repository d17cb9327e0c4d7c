package relay_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/internal/gateway"
	"github.com/booomerangs/relay-api/internal/provider"
	"github.com/booomerangs/relay-api/internal/relay"
	"github.com/booomerangs/relay-api/pkg/api"
)

// fakeService feeds the relay a pre-built stream handle or a dispatch
// error, without touching the network.
type fakeService struct {
	handle    *gateway.StreamHandle
	openErr   error
	responder *gateway.Responder
}

func (f *fakeService) Chat(ctx context.Context, req *api.ChatRequest) *api.ChatResponse {
	return nil
}

func (f *fakeService) Direct(ctx context.Context, req *api.DirectRequest) (*api.ChatResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeService) OpenStream(ctx context.Context, message, preferred string, timeout time.Duration) (*gateway.StreamHandle, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.handle, nil
}

func (f *fakeService) Probe(ctx context.Context, name string) (*api.ProbeResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeService) Registry() *gateway.Registry { return nil }

func (f *fakeService) Responder() *gateway.Responder { return f.responder }

func handleWith(providerName string, chunks ...provider.Chunk) *gateway.StreamHandle {
	ch := make(chan provider.Chunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return &gateway.StreamHandle{
		Provider: providerName,
		Model:    providerName + "-model",
		Chunks:   ch,
	}
}

// parseFrames splits an SSE body into decoded JSON payloads.
func parseFrames(t *testing.T, body string) []map[string]interface{} {
	t.Helper()

	var frames []map[string]interface{}
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		require.True(t, strings.HasPrefix(block, "data: "), "frame %q", block)

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(block, "data: ")), &payload))
		frames = append(frames, payload)
	}
	return frames
}

func newRelay() *relay.Relay {
	return relay.New(zap.NewNop())
}

func TestServeRelaysChunksAndDone(t *testing.T) {
	svc := &fakeService{
		handle: handleWith("alpha",
			provider.Chunk{Text: "Привет"},
			provider.Chunk{Text: ", мир"},
		),
		responder: gateway.NewSeededResponder(1),
	}

	var buf bytes.Buffer
	newRelay().Serve(context.Background(), &buf, svc, "hi", "alpha", 10*time.Second)

	frames := parseFrames(t, buf.String())
	require.Len(t, frames, 4)

	assert.Equal(t, "start", frames[0]["status"])
	assert.Equal(t, "alpha", frames[0]["provider"])

	assert.Equal(t, "Привет", frames[1]["chunk"])
	assert.Equal(t, ", мир", frames[2]["chunk"])

	done := frames[3]
	assert.Equal(t, "done", done["status"])
	assert.Equal(t, "Привет, мир", done["full_text"])
	assert.Equal(t, "alpha", done["provider"])
	assert.Equal(t, "alpha-model", done["model"])
	assert.GreaterOrEqual(t, done["elapsed"], 0.0)
}

func TestServeAbortsOnHTMLChunk(t *testing.T) {
	svc := &fakeService{
		handle: handleWith("alpha",
			provider.Chunk{Text: "ok so far"},
			provider.Chunk{Text: "<html><body>blocked</body></html>"},
			provider.Chunk{Text: "never delivered"},
		),
		responder: gateway.NewSeededResponder(1),
	}

	var buf bytes.Buffer
	newRelay().Serve(context.Background(), &buf, svc, "hi", "alpha", 10*time.Second)

	frames := parseFrames(t, buf.String())
	require.Len(t, frames, 4, "start, one chunk, error, done")

	assert.Equal(t, "start", frames[0]["status"])
	assert.Equal(t, "ok so far", frames[1]["chunk"])
	assert.Contains(t, frames[2]["error"], "HTML")

	done := frames[3]
	assert.Equal(t, "done", done["status"])
	assert.Equal(t, "ok so far", done["full_text"], "only text before the abort is kept")
}

func TestServeEmitsErrorFrameOnChunkError(t *testing.T) {
	svc := &fakeService{
		handle: handleWith("alpha",
			provider.Chunk{Err: errors.New("connection reset")},
		),
		responder: gateway.NewSeededResponder(1),
	}

	var buf bytes.Buffer
	newRelay().Serve(context.Background(), &buf, svc, "hi", "alpha", 10*time.Second)

	frames := parseFrames(t, buf.String())
	require.Len(t, frames, 3)

	assert.Equal(t, "start", frames[0]["status"])
	assert.Equal(t, "connection reset", frames[1]["error"])
	assert.Equal(t, "done", frames[2]["status"])
	assert.Equal(t, "", frames[2]["full_text"])
}

func TestServeFallbackWhenDispatchFails(t *testing.T) {
	svc := &fakeService{
		openErr:   gateway.ErrAllProvidersFailed,
		responder: gateway.NewSeededResponder(1),
	}

	var buf bytes.Buffer
	newRelay().Serve(context.Background(), &buf, svc, "привет", "alpha", 10*time.Second)

	frames := parseFrames(t, buf.String())
	require.Len(t, frames, 3, "error, fallback text, done")

	assert.Equal(t, gateway.ErrAllProvidersFailed.Error(), frames[0]["error"])

	assert.Equal(t, gateway.GreetingReply, frames[1]["text"])
	assert.Equal(t, "BOOOMERANGS-Error", frames[1]["provider"])

	done := frames[2]
	assert.Equal(t, "done", done["status"])
	assert.Equal(t, gateway.GreetingReply, done["full_text"])
	assert.Equal(t, "BOOOMERANGS-Error", done["provider"])
	assert.Equal(t, "error-mode", done["model"])
}
