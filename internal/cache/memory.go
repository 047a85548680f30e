package cache

import (
	"bytes"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
	Register("none", func(ProviderConfig) (Cache, error) { return noopCache{}, nil })
}

// memoryCache keeps serialized video details in process, bounded by entry count and TTL.
// Entries are copied in and out so a caller editing a returned slice cannot change what
// the next /video-details or /download lookup sees.
type memoryCache struct {
	entries *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	group := cfg.Group
	if group == "" {
		group = "unlabeled"
	}
	evicted := EvictionsTotal.WithLabelValues(group)
	return &memoryCache{
		entries: lru.NewLRU[string, []byte](cfg.Size, func(string, []byte) { evicted.Inc() }, cfg.TTL),
	}, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) {
	details, ok := m.entries.Get(key)
	if !ok {
		return nil, false
	}
	return bytes.Clone(details), true
}

func (m *memoryCache) Set(key string, value []byte) {
	m.entries.Add(key, bytes.Clone(value))
}

func (m *memoryCache) Len() int { return m.entries.Len() }

// Close drops every entry; nothing else is held.
func (m *memoryCache) Close() error {
	m.entries.Purge()
	return nil
}

// noopCache never stores anything. It backs the "none" provider.
type noopCache struct{}

func (noopCache) Get(string) ([]byte, bool) { return nil, false }
func (noopCache) Set(string, []byte)        {}
func (noopCache) Len() int                  { return 0 }
func (noopCache) Close() error              { return nil }
