package reference

import "sync"

// MapStore is an in-memory Store that is safe for concurrent use.
type MapStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMapStore returns an empty MapStore.
func NewMapStore() *MapStore {
	return &MapStore{data: make(map[string][]byte)}
}

// Put stores encoded image bytes under key, replacing any previous value.
func (s *MapStore) Put(key string, data []byte) {
	s.mu.Lock()
	s.data[key] = data
	s.mu.Unlock()
}

// Lookup implements Store.
func (s *MapStore) Lookup(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	return data, ok
}

// Len returns the number of stored keys.
func (s *MapStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
