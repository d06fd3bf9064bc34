// Package findings keeps the records a user has marked as findings.
package findings

import (
	"sync"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
)

// Set is an insertion-ordered set of records keyed by record id.
// It is safe for concurrent use.
type Set struct {
	mu      sync.RWMutex
	records []domain.LogRecord
	index   map[int]struct{}
}

// NewSet creates an empty set
func NewSet() *Set {
	return &Set{index: make(map[int]struct{})}
}

// Add appends r unless a record with the same id is present
// It reports whether the set changed
func (s *Set) Add(r domain.LogRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[r.ID]; ok {
		return false
	}
	s.index[r.ID] = struct{}{}
	s.records = append(s.records, r)
	return true
}

// Remove drops the record with the given id
// It reports whether the set changed
func (s *Set) Remove(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			break
		}
	}
	return true
}

// Toggle adds r if absent and removes it otherwise
// It reports whether r is a finding afterwards
func (s *Set) Toggle(r domain.LogRecord) bool {
	if s.Remove(r.ID) {
		return false
	}
	s.Add(r)
	return true
}

// Contains reports whether a record with id is present
func (s *Set) Contains(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

// All returns the records in insertion order
func (s *Set) All() []domain.LogRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.LogRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of findings
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear discards every finding
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.index = make(map[int]struct{})
}
