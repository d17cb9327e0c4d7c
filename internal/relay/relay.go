// Package relay turns one dispatched provider stream into a finite
// sequence of server-sent-event frames. Frames are written as chunks
// arrive; nothing is buffered beyond the running transcript.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/internal/gateway"
	"github.com/booomerangs/relay-api/internal/httpclient"
	"github.com/booomerangs/relay-api/pkg/api"
)

const blockedMessage = "Провайдер вернул HTML вместо текста — возможно, заблокирован"

// Substitute provider labels for the error path, kept from the legacy
// wire format.
const (
	errorProvider = "BOOOMERANGS-Error"
	errorModel    = "error-mode"
)

type Relay struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Relay {
	return &Relay{logger: logger}
}

// Serve dispatches the message in streaming mode and writes the frame
// sequence to w. The stream always terminates in a usable text payload:
// when the open itself fails, fallback text is substituted and emitted
// as the done frame.
func (r *Relay) Serve(ctx context.Context, w io.Writer, svc gateway.Service, message, preferred string, timeout time.Duration) {
	start := time.Now()

	handle, err := svc.OpenStream(ctx, message, preferred, timeout)
	if err != nil {
		r.logger.Error("Stream dispatch failed", zap.Error(err))
		r.serveFallback(w, svc, message, start, err)
		return
	}

	if err := writeFrame(w, api.StreamStart{Status: "start", Provider: handle.Provider}); err != nil {
		return
	}

	var full string
	for chunk := range handle.Chunks {
		if chunk.Err != nil {
			r.logger.Error("Stream chunk error",
				zap.String("provider", handle.Provider),
				zap.Error(chunk.Err))
			_ = writeFrame(w, api.StreamError{Error: chunk.Err.Error()})
			break
		}
		if httpclient.LooksLikeBlockPage(chunk.Text) {
			r.logger.Error("Stream blocked",
				zap.String("provider", handle.Provider))
			_ = writeFrame(w, api.StreamError{Error: blockedMessage})
			break
		}

		if err := writeFrame(w, api.StreamChunk{Chunk: chunk.Text, Provider: handle.Provider}); err != nil {
			return
		}
		full += chunk.Text
	}

	_ = writeFrame(w, api.StreamDone{
		Status:   "done",
		FullText: full,
		Provider: handle.Provider,
		Model:    handle.Model,
		Elapsed:  time.Since(start).Seconds(),
	})
}

// serveFallback is the ERROR branch: an error frame, then canned text,
// then a done frame carrying that text.
func (r *Relay) serveFallback(w io.Writer, svc gateway.Service, message string, start time.Time, cause error) {
	if err := writeFrame(w, api.StreamError{Error: cause.Error()}); err != nil {
		return
	}

	text := svc.Responder().Reply(message)
	if err := writeFrame(w, api.StreamText{Text: text, Provider: errorProvider}); err != nil {
		return
	}

	_ = writeFrame(w, api.StreamDone{
		Status:   "done",
		FullText: text,
		Provider: errorProvider,
		Model:    errorModel,
		Elapsed:  time.Since(start).Seconds(),
	})
}

func writeFrame(w io.Writer, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
