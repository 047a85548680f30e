// Package cache stores yt-dlp metadata lookups so repeated /video-details
// calls for the same URL do not hit the upstream site again.
package cache

// Cache is a size-bounded key-value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)

	// Len returns the number of live entries.
	Len() int

	// Close releases connections held by the backend.
	Close() error
}
