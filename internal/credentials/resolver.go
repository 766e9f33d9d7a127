package credentials

import (
	"context"
	"os"
	"sync"

	"github.com/skillsenselab/medscribe/internal/errors"
	"github.com/skillsenselab/medscribe/internal/logger"
)

// Store loads and persists credential values.
type Store interface {
	Load() (map[string]string, error)
	Store(values map[string]string) error
}

// Resolver looks up credentials by name through a platform-specific chain
// of sources. On native platforms the encrypted store is consulted first,
// then values bundled with the configuration. On web platforms bundled
// values are consulted first, then PUBLIC_-prefixed environment variables.
// A name with no value in any source yields a ConfigurationError; there is
// no built-in fallback.
type Resolver struct {
	platform string
	store    Store
	values   map[string]string
	log      *logger.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewResolver creates a resolver for the given platform ("native" or "web").
// store may be nil on web platforms, where the encrypted store is unused.
func NewResolver(platform string, store Store, cfg Config, log *logger.Logger) *Resolver {
	values := cfg.Values
	if values == nil {
		values = map[string]string{}
	}
	return &Resolver{
		platform: platform,
		store:    store,
		values:   values,
		log:      log.WithComponent("credentials"),
		cache:    map[string]string{},
	}
}

// Resolve returns the value for name, consulting sources in platform order.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	r.mu.RLock()
	if v, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return v, nil
	}
	r.mu.RUnlock()

	value, source := r.lookup(name)
	if value == "" {
		r.log.Warn("credential not found in any source", logger.Fields(
			"name", name,
			logger.FieldPlatform, r.platform,
		))
		return "", errors.Configuration(name)
	}

	r.mu.Lock()
	r.cache[name] = value
	r.mu.Unlock()

	r.log.Debug("credential resolved", logger.Fields(
		"name", name,
		"source", source,
	))
	return value, nil
}

func (r *Resolver) lookup(name string) (value, source string) {
	if r.platform == "web" {
		if v := r.values[name]; v != "" {
			return v, "config"
		}
		if v := os.Getenv("PUBLIC_" + name); v != "" {
			return v, "env"
		}
		return "", ""
	}

	if r.store != nil {
		stored, err := r.store.Load()
		if err != nil {
			r.log.Warn("secure store unreadable, falling through", logger.Fields(
				"name", name,
				"error", err.Error(),
			))
		} else if v := stored[name]; v != "" {
			return v, "secure_store"
		}
	}
	if v := r.values[name]; v != "" {
		return v, "config"
	}
	return "", ""
}

// Save persists a credential. On native platforms the value is written to
// the encrypted store; on web platforms saving is a no-op because browser
// storage is not trusted with secrets.
func (r *Resolver) Save(ctx context.Context, name, value string) error {
	if r.platform == "web" {
		r.log.Warn("credential save ignored on web platform", logger.Fields("name", name))
		return nil
	}
	if r.store == nil {
		return errors.Configuration("credentials.store_key")
	}

	stored, err := r.store.Load()
	if err != nil {
		return errors.Internal(err)
	}
	stored[name] = value
	if err := r.store.Store(stored); err != nil {
		return errors.Internal(err)
	}

	r.mu.Lock()
	r.cache[name] = value
	r.mu.Unlock()

	r.log.Info("credential saved", logger.Fields("name", name))
	return nil
}

// Invalidate drops a cached value so the next Resolve re-reads sources.
func (r *Resolver) Invalidate(name string) {
	r.mu.Lock()
	delete(r.cache, name)
	r.mu.Unlock()
}
