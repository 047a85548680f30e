package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Belphemur/MediaFetch/internal/config"
)

// ProviderConfig holds what a backend needs to build a Cache.
type ProviderConfig struct {
	Size int
	TTL  time.Duration

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Group labels the cache_* metrics. Empty disables instrumentation.
	Group string
}

// Provider builds a Cache from config.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a backend available under name. Registering twice panics.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New builds the named backend, wrapped with metrics when cfg.Group is set.
func New(name string, cfg ProviderConfig) (Cache, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Group == "" {
		return inner, nil
	}
	return newInstrumentedCache(inner, cfg.Group), nil
}

// FromConfig builds the metadata cache described by the application config.
func FromConfig(cfg *config.Config) (Cache, error) {
	name := cfg.Cache.Provider
	if name == "" {
		name = config.DefaultCacheProvider
	}
	size := cfg.Cache.Size
	if size <= 0 {
		size = config.DefaultCacheSize
	}
	return New(name, ProviderConfig{
		Size:          size,
		TTL:           cfg.CacheTTL(),
		RedisAddress:  cfg.Cache.RedisAddress,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
		Group:         "metadata",
	})
}

// RegisteredProviders returns the sorted provider names.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
