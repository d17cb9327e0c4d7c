package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/internal/analytics"
	"github.com/booomerangs/relay-api/internal/config"
	"github.com/booomerangs/relay-api/internal/httpclient"
	"github.com/booomerangs/relay-api/internal/provider"
	"github.com/booomerangs/relay-api/internal/store/cache"
	"github.com/booomerangs/relay-api/internal/store/model"
	"github.com/booomerangs/relay-api/pkg/api"
)

var (
	// ErrProviderNotFound marks a user-supplied provider name that is not
	// in the registry. Never retried.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrAllProvidersFailed marks stream-open exhaustion. The relay turns
	// it into fallback text; non-streaming paths never surface it.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

const probePrompt = "Say just one word: Test"

// Service is the dispatch layer: provider selection, failover and
// probing.
type Service interface {
	// Chat dispatches with failover. It never fails: exhaustion produces
	// a soft-failure envelope with canned text.
	Chat(ctx context.Context, req *api.ChatRequest) *api.ChatResponse

	// Direct calls exactly the named provider once, no failover.
	Direct(ctx context.Context, req *api.DirectRequest) (*api.ChatResponse, error)

	// OpenStream dispatches in streaming mode with failover on the open
	// and on the first chunk. The returned handle is finite and not
	// restartable.
	OpenStream(ctx context.Context, message, preferred string, timeout time.Duration) (*StreamHandle, error)

	// Probe performs a one-shot availability check of a named provider.
	Probe(ctx context.Context, name string) (*api.ProbeResponse, error)

	Registry() *Registry
	Responder() *Responder
}

type service struct {
	logger    *zap.Logger
	registry  *Registry
	dispatch  config.DispatchConfig
	responder *Responder
	ingestor  analytics.Ingestor
	cache     cache.CacheService
}

func NewService(logger *zap.Logger, registry *Registry, dispatch config.DispatchConfig, responder *Responder, ingestor analytics.Ingestor, cacheService cache.CacheService) Service {
	return &service{
		logger:    logger,
		registry:  registry,
		dispatch:  dispatch,
		responder: responder,
		ingestor:  ingestor,
		cache:     cacheService,
	}
}

func (s *service) Registry() *Registry {
	return s.registry
}

func (s *service) Responder() *Responder {
	return s.responder
}

func (s *service) Probe(ctx context.Context, name string) (*api.ProbeResponse, error) {
	cacheKey := "probe:" + name

	if s.cache != nil {
		var cached api.ProbeResponse
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	p, ok := s.registry.Lookup(name)
	if !ok {
		return nil, ErrProviderNotFound
	}

	start := time.Now()
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	text, err := p.Complete(probeCtx, &provider.Request{Prompt: probePrompt})
	cancel()

	var resp api.ProbeResponse
	if err != nil {
		resp = api.ProbeResponse{
			Status:         "error",
			Message:        fmt.Sprintf("Ошибка при проверке провайдера %s", name),
			Error:          err.Error(),
			RequiresAPIKey: httpclient.LooksLikeMissingKey(err.Error()),
		}
	} else {
		if len(text) > 100 {
			text = text[:100]
		}
		resp = api.ProbeResponse{
			Status:   "ok",
			Message:  fmt.Sprintf("Провайдер %s доступен", name),
			Response: text,
		}
	}

	s.record("probe", name, p.DefaultModel(), err == nil, false, 1, time.Since(start))

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, resp, time.Minute)
	}

	return &resp, nil
}

func (s *service) record(endpoint, providerName, modelID string, success, fallback bool, attempts int, latency time.Duration) {
	if s.ingestor == nil {
		return
	}
	s.ingestor.Log(&model.DispatchLog{
		ID:        uuid.New().String(),
		Endpoint:  endpoint,
		Provider:  providerName,
		Model:     modelID,
		Success:   success,
		Fallback:  fallback,
		Attempts:  attempts,
		LatencyMS: latency.Milliseconds(),
		CreatedAt: time.Now(),
	})
}
