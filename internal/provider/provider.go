package provider

import (
	"context"
	"fmt"
	"sync"
)

// Tier is the priority grouping used to order provider attempts.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
	TierFallback  Tier = "fallback"
)

// Request is a single-prompt completion request. Model overrides the
// provider default when set.
type Request struct {
	Prompt string
	Model  string
}

// Chunk is one unit of streamed output. Err is set on transport failures;
// a chunk never carries both.
type Chunk struct {
	Text string
	Err  error
}

// Provider is an external capability that, given a prompt, returns
// generated text, optionally as a chunk stream. Implementations must be
// safe for concurrent use.
type Provider interface {
	Name() string
	Tier() Tier
	DefaultModel() string

	Complete(ctx context.Context, req *Request) (string, error)
	Stream(ctx context.Context, req *Request) (<-chan Chunk, error)
	Health(ctx context.Context) error
}

// Settings describes one backend from the catalog. Family selects the
// adapter constructor.
type Settings struct {
	Name         string
	Family       string
	BaseURL      string
	DefaultModel string
	Tier         Tier

	// APIKeyEnv names an env var holding an optional credential. Most
	// free-tier backends need none.
	APIKeyEnv string
}

// Factory constructs a Provider from its catalog settings.
type Factory func(Settings) (Provider, error)

var (
	familiesMu sync.RWMutex
	families   = make(map[string]Factory)
)

// Register makes an adapter family available by name. Called from the
// adapter packages' init().
func Register(family string, f Factory) {
	familiesMu.Lock()
	defer familiesMu.Unlock()
	families[family] = f
}

// New resolves the settings' family and constructs the adapter.
func New(s Settings) (Provider, error) {
	familiesMu.RLock()
	f, ok := families[s.Family]
	familiesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown adapter family: %s", s.Family)
	}
	return f(s)
}
