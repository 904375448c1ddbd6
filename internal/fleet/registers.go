package fleet

import (
	"sort"
	"sync"
)

// Store is a unit's register store: a thread-safe mapping from register
// name to value.
//
// Each simulated unit owns exactly one Store; control loops, publishers and
// subscribers of that unit all read and write it, never another unit's.
//
// Thread Safety:
//   - Get, GetOr and Set are individually atomic (one mutex guards all
//     access). The store deliberately provides no compound atomic
//     operations: a Get followed by a Set is two critical sections, and
//     callers needing read-modify-write consistency must coordinate at a
//     higher level. This keeps lock contention minimal for the common
//     single-key read/write traffic.
type Store struct {
	mu     sync.Mutex
	values map[string]any
}

// NewStore creates a register store seeded with the unit's initial registers.
// The initial map is copied; the caller's map is not retained.
func NewStore(initial map[string]any) *Store {
	values := make(map[string]any, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &Store{values: values}
}

// Get returns the current value for key, or nil if the key is absent.
// A missing key is never an error.
func (s *Store) Get(key string) any {
	return s.GetOr(key, nil)
}

// GetOr returns the current value for key, or def if the key is absent.
// The store is not mutated.
func (s *Store) GetOr(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Set unconditionally overwrites the value for key, creating the key if
// absent. Keys are never deleted, only replaced.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Keys returns the register names currently in the store, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
