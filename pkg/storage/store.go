package storage

import "sync"

// VisitedStore records which normalized URLs a crawl session has admitted
// for processing. MarkVisited must be atomic per key: under concurrent
// access exactly one caller observes true for a given URL (first writer
// wins). The store is session-scoped; nothing persists across runs.
type VisitedStore interface {
	// MarkVisited marks a normalized URL as visited.
	// Returns true if the URL was newly added, false if it already existed.
	MarkVisited(normalizedURL string) bool

	// Visited reports whether a normalized URL has been marked
	Visited(normalizedURL string) bool

	// Count returns the number of marked URLs
	Count() int
}

// MemoryStore is the in-memory VisitedStore used for every crawl session
type MemoryStore struct {
	mu      sync.Mutex
	visited map[string]struct{}
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{visited: make(map[string]struct{})}
}

// MarkVisited implements the atomic check-then-set admission
func (s *MemoryStore) MarkVisited(normalizedURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.visited[normalizedURL]; exists {
		return false
	}
	s.visited[normalizedURL] = struct{}{}
	return true
}

// Visited reports whether the URL was already marked
func (s *MemoryStore) Visited(normalizedURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.visited[normalizedURL]
	return exists
}

// Count returns the number of marked URLs
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visited)
}
