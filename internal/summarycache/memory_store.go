package summarycache

import (
	"sync"
)

// MemoryStore is the default in-process Store. A read-write mutex guards the
// session map; each entry carries its own mutex so sessions with distinct
// keys never contend on appends.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]*memoryEntry
}

type memoryEntry struct {
	mu        sync.Mutex
	summaries []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[Key]*memoryEntry),
	}
}

// entryFor returns the entry for key, creating it if absent.
func (s *MemoryStore) entryFor(key Key) *memoryEntry {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[key]; ok {
		return e
	}
	e = &memoryEntry{}
	s.entries[key] = e
	return e
}

// Append adds a summary to the tail of the entry for key.
func (s *MemoryStore) Append(key Key, summary string) error {
	e := s.entryFor(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.summaries = append(e.summaries, summary)
	return nil
}

// Read returns a copy of the ordered summaries for key. Reading an absent
// entry does not create one.
func (s *MemoryStore) Read(key Key) ([]string, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.summaries))
	copy(out, e.summaries)
	return out, nil
}

// IsEmpty reports whether the entry for key holds no summaries.
func (s *MemoryStore) IsEmpty(key Key) (bool, error) {
	summaries, err := s.Read(key)
	if err != nil {
		return false, err
	}
	return len(summaries) == 0, nil
}

// Reset drops the entry for key and returns the number of summaries removed.
func (s *MemoryStore) Reset(key Key) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return 0, nil
	}
	e.mu.Lock()
	removed := len(e.summaries)
	e.mu.Unlock()
	delete(s.entries, key)
	return removed, nil
}

// SessionCount returns the number of sessions currently held.
func (s *MemoryStore) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close releases nothing for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
