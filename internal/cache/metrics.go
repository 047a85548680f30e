package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafetch_cache_hits_total",
			Help: "Total number of cache hits.",
		},
		[]string{"cache"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafetch_cache_misses_total",
			Help: "Total number of cache misses.",
		},
		[]string{"cache"},
	)

	StoresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafetch_cache_stores_total",
			Help: "Total number of entries written to the cache.",
		},
		[]string{"cache"},
	)

	// EvictionsTotal only counts in-memory evictions, expired or displaced; Redis expires keys server side.
	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafetch_cache_evictions_total",
			Help: "Total number of entries evicted from the in-memory cache.",
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(HitsTotal, MissesTotal, StoresTotal, EvictionsTotal)
}

var (
	entriesMu  sync.Mutex
	entries    = make(map[string]prometheus.Collector)
	entriesReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector exposes the live entry count of a group, read at scrape time.
// A previous collector for the same group is replaced.
func registerEntriesCollector(group string, lenFunc func() int) {
	c := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "mediafetch_cache_entries",
		Help:        "Current number of entries in the cache.",
		ConstLabels: prometheus.Labels{"cache": group},
	}, func() float64 { return float64(lenFunc()) })

	entriesMu.Lock()
	defer entriesMu.Unlock()

	if old, ok := entries[group]; ok {
		entriesReg.Unregister(old)
	}
	entries[group] = c
	_ = entriesReg.Register(c)
}

func unregisterEntriesCollector(group string) {
	entriesMu.Lock()
	defer entriesMu.Unlock()

	if c, ok := entries[group]; ok {
		entriesReg.Unregister(c)
		delete(entries, group)
	}
}
