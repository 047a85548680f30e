package cache

import "github.com/prometheus/client_golang/prometheus"

// instrumentedCache wraps a backend with the per-group lookup counters, so the metadata
// hit ratio can be read the same way whichever provider is configured.
type instrumentedCache struct {
	Cache
	hits, misses, stores prometheus.Counter
	group                string
}

func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	registerEntriesCollector(group, inner.Len)
	return &instrumentedCache{
		Cache:  inner,
		hits:   HitsTotal.WithLabelValues(group),
		misses: MissesTotal.WithLabelValues(group),
		stores: StoresTotal.WithLabelValues(group),
		group:  group,
	}
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.Cache.Get(key)
	if !ok {
		c.misses.Inc()
		return nil, false
	}
	c.hits.Inc()
	return val, true
}

func (c *instrumentedCache) Set(key string, value []byte) {
	c.stores.Inc()
	c.Cache.Set(key, value)
}

// Close also retires the group's entries gauge.
func (c *instrumentedCache) Close() error {
	unregisterEntriesCollector(c.group)
	return c.Cache.Close()
}
