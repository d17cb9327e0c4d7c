package gateway

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/internal/config"
	"github.com/booomerangs/relay-api/internal/provider"
)

// Registry is the working set of providers, built once at startup and
// read-only afterwards. Concurrent reads are safe without locking.
type Registry struct {
	providers map[string]provider.Provider
	order     []string
}

// BuildRegistry resolves each wishlist candidate against the catalog.
// Unknown names are logged and dropped, never fatal. A second pass over
// the full catalog picks up every backend with "llama" in its name and
// registers it at the primary tier.
func BuildRegistry(cfg config.RegistryConfig, catalog map[string]provider.Settings, logger *zap.Logger) *Registry {
	r := &Registry{
		providers: make(map[string]provider.Provider),
	}

	for _, name := range cfg.Wishlist {
		settings, ok := catalog[name]
		if !ok {
			logger.Warn("Provider not found in catalog, skipping", zap.String("provider", name))
			continue
		}
		r.add(settings, cfg.Probe, logger)
	}

	// Llama scan over the whole catalog, in stable order.
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, exists := r.providers[name]; exists {
			continue
		}
		if !strings.Contains(strings.ToLower(name), "llama") {
			continue
		}

		settings := catalog[name]
		settings.Tier = provider.TierPrimary
		if r.add(settings, cfg.Probe, logger) {
			logger.Info("Promoted llama provider to primary tier", zap.String("provider", name))
		}
	}

	if len(r.providers) == 0 {
		logger.Warn("No providers were registered. Every chat request will fall back to canned replies.")
	}

	return r
}

func (r *Registry) add(settings provider.Settings, probe bool, logger *zap.Logger) bool {
	p, err := provider.New(settings)
	if err != nil {
		logger.Warn("Failed to construct provider",
			zap.String("provider", settings.Name),
			zap.Error(err))
		return false
	}

	if probe {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := p.Health(ctx)
		cancel()
		if err != nil {
			logger.Warn("Provider failed availability probe, skipping",
				zap.String("provider", settings.Name),
				zap.Error(err))
			return false
		}
	}

	r.providers[settings.Name] = p
	r.order = append(r.order, settings.Name)
	logger.Info("Registered provider",
		zap.String("provider", settings.Name),
		zap.String("tier", string(p.Tier())))
	return true
}

// Lookup returns the named provider if registered.
func (r *Registry) Lookup(name string) (provider.Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns provider names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Group returns the names registered at the given tier, in registration
// order.
func (r *Registry) Group(tier provider.Tier) []string {
	var out []string
	for _, name := range r.order {
		if r.providers[name].Tier() == tier {
			out = append(out, name)
		}
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.providers)
}
