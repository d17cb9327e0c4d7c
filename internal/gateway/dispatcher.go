package gateway

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/internal/httpclient"
	"github.com/booomerangs/relay-api/internal/provider"
	"github.com/booomerangs/relay-api/pkg/api"
)

// clampTimeout bounds a caller-supplied timeout to the configured
// [min, max] window, substituting the default for zero.
func (s *service) clampTimeout(caller time.Duration) time.Duration {
	if caller <= 0 {
		caller = time.Duration(s.dispatch.DefaultTimeoutSec) * time.Second
	}
	if min := time.Duration(s.dispatch.MinTimeoutSec) * time.Second; caller < min {
		caller = min
	}
	if max := time.Duration(s.dispatch.MaxTimeoutSec) * time.Second; caller > max {
		caller = max
	}
	return caller
}

// effectiveTimeout applies the per-provider floor on top of the clamped
// caller timeout. Large models get their floor even when the caller asks
// for less.
func (s *service) effectiveTimeout(providerName string, caller time.Duration) time.Duration {
	t := s.clampTimeout(caller)
	if floor := s.dispatch.Floor(providerName); floor > t {
		return floor
	}
	return t
}

// candidates resolves the attempt order: the preferred provider when
// registered (the configured default otherwise), then the backup list in
// its literal fixed order, skipping whatever came first. Unregistered
// names are dropped.
func (s *service) candidates(preferred string) []string {
	initial := preferred
	if initial == "" {
		initial = s.dispatch.DefaultProvider
	}
	if _, ok := s.registry.Lookup(initial); !ok {
		initial = s.dispatch.DefaultProvider
	}

	var order []string
	seen := make(map[string]bool)

	if _, ok := s.registry.Lookup(initial); ok {
		order = append(order, initial)
		seen[initial] = true
	}

	for _, name := range s.dispatch.Backups {
		if seen[name] {
			continue
		}
		if _, ok := s.registry.Lookup(name); !ok {
			continue
		}
		order = append(order, name)
		seen[name] = true
	}

	return order
}

// fallbackName is the provider label reported on soft failure.
func (s *service) fallbackName(preferred string) string {
	if preferred == "" {
		preferred = s.dispatch.DefaultProvider
	}
	return preferred + "_fallback"
}

func (s *service) Chat(ctx context.Context, req *api.ChatRequest) *api.ChatResponse {
	start := time.Now()
	attempts := 0

	for _, name := range s.candidates(req.Provider) {
		p, _ := s.registry.Lookup(name)
		attempts++

		timeout := s.effectiveTimeout(name, 0)
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		text, err := p.Complete(attemptCtx, &provider.Request{Prompt: req.Message})
		cancel()

		if err != nil {
			s.logger.Warn("Provider attempt failed",
				zap.String("provider", name),
				zap.Duration("timeout", timeout),
				zap.Error(err))
			continue
		}
		if text == "" || httpclient.LooksLikeBlockPage(text) {
			s.logger.Warn("Provider returned unusable payload",
				zap.String("provider", name),
				zap.Bool("blocked", httpclient.LooksLikeBlockPage(text)))
			continue
		}

		elapsed := time.Since(start)
		s.record("chat", name, p.DefaultModel(), true, false, attempts, elapsed)
		return &api.ChatResponse{
			Success:  true,
			Response: text,
			Provider: name,
			Model:    p.DefaultModel(),
			Elapsed:  elapsed.Seconds(),
		}
	}

	// Total exhaustion downgrades to a soft failure: canned text, success
	// still true. Chat callers never see a hard error.
	reply := s.responder.Reply(req.Message)
	name := s.fallbackName(req.Provider)
	s.record("chat", name, "fallback", true, true, attempts, time.Since(start))
	s.logger.Warn("All providers exhausted, serving fallback reply",
		zap.String("provider", name),
		zap.Int("attempts", attempts))

	return &api.ChatResponse{
		Success:  true,
		Response: reply,
		Provider: name,
		Model:    "fallback",
		Elapsed:  0.1,
	}
}

func (s *service) Direct(ctx context.Context, req *api.DirectRequest) (*api.ChatResponse, error) {
	p, ok := s.registry.Lookup(req.Provider)
	if !ok {
		return nil, ErrProviderNotFound
	}

	modelID := req.Model
	if modelID == "" {
		modelID = p.DefaultModel()
	}

	timeout := s.clampTimeout(time.Duration(req.Timeout * float64(time.Second)))
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := p.Complete(callCtx, &provider.Request{Prompt: req.Message, Model: req.Model})
	elapsed := time.Since(start)

	if err != nil {
		s.record("direct", req.Provider, modelID, false, false, 1, elapsed)
		return nil, err
	}
	if httpclient.LooksLikeBlockPage(text) {
		s.record("direct", req.Provider, modelID, false, false, 1, elapsed)
		return nil, fmt.Errorf("провайдер %s вернул HTML вместо текста", req.Provider)
	}

	s.logger.Info("Direct provider call succeeded",
		zap.String("provider", req.Provider),
		zap.Duration("elapsed", elapsed))
	s.record("direct", req.Provider, modelID, true, false, 1, elapsed)

	return &api.ChatResponse{
		Success:  true,
		Response: text,
		Provider: req.Provider,
		Model:    modelID,
		Elapsed:  elapsed.Seconds(),
	}, nil
}

// StreamHandle is one open provider stream after successful dispatch.
// Chunks is finite; it closes when the provider is done or the attempt
// context expires.
type StreamHandle struct {
	Provider string
	Model    string
	Chunks   <-chan provider.Chunk
}

func (s *service) OpenStream(ctx context.Context, message, preferred string, timeout time.Duration) (*StreamHandle, error) {
	start := time.Now()
	attempts := 0

	for _, name := range s.candidates(preferred) {
		p, _ := s.registry.Lookup(name)
		attempts++

		effective := s.effectiveTimeout(name, timeout)
		attemptCtx, cancel := context.WithTimeout(ctx, effective)

		ch, err := p.Stream(attemptCtx, &provider.Request{Prompt: message})
		if err != nil {
			cancel()
			s.logger.Warn("Stream open failed",
				zap.String("provider", name),
				zap.Error(err))
			continue
		}

		// Peek the first chunk: an error, an empty stream or a block page
		// at this point counts as a provider failure and moves dispatch
		// to the next backup.
		first, ok := <-ch
		if !ok {
			cancel()
			s.logger.Warn("Stream closed before first chunk", zap.String("provider", name))
			continue
		}
		if first.Err != nil {
			cancel()
			s.logger.Warn("Stream failed on first chunk",
				zap.String("provider", name),
				zap.Error(first.Err))
			continue
		}
		if httpclient.LooksLikeBlockPage(first.Text) {
			cancel()
			s.logger.Warn("Stream first chunk is a block page", zap.String("provider", name))
			continue
		}

		out := make(chan provider.Chunk)
		go func() {
			defer cancel()
			defer close(out)

			select {
			case out <- first:
			case <-attemptCtx.Done():
				return
			}
			for c := range ch {
				select {
				case out <- c:
				case <-attemptCtx.Done():
					return
				}
			}
		}()

		s.record("stream", name, p.DefaultModel(), true, false, attempts, time.Since(start))
		return &StreamHandle{
			Provider: name,
			Model:    p.DefaultModel(),
			Chunks:   out,
		}, nil
	}

	s.record("stream", s.fallbackName(preferred), "fallback", false, true, attempts, time.Since(start))
	return nil, ErrAllProvidersFailed
}
