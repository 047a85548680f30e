package download

import (
	"sync"

	"github.com/samber/lo"
)

// inflightSet tracks output paths currently being written.
type inflightSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflightSet() *inflightSet {
	return &inflightSet{keys: make(map[string]struct{})}
}

// acquire claims key and returns its release func, or false when key is already held.
func (s *inflightSet) acquire(key string) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.keys[key]; busy {
		return nil, false
	}
	s.keys[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.keys, key)
			s.mu.Unlock()
		})
	}, true
}

// snapshot returns the keys currently held.
func (s *inflightSet) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Keys(s.keys)
}
