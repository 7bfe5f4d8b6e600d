package memory

import (
	"sync"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
)

// Ensure OptInStore implements the interface.
var _ driven.OptInStore = (*OptInStore)(nil)

// OptInStore keeps the opt-in set in memory.
type OptInStore struct {
	mu      sync.Mutex
	authors []domain.AuthorID
	saves   int
	saveErr error
}

// NewOptInStore creates a store preloaded with authors.
func NewOptInStore(authors ...domain.AuthorID) *OptInStore {
	return &OptInStore{authors: append([]domain.AuthorID(nil), authors...)}
}

// Load returns a copy of the stored set.
func (s *OptInStore) Load() ([]domain.AuthorID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuthorID(nil), s.authors...), nil
}

// Save replaces the stored set.
func (s *OptInStore) Save(authors []domain.AuthorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.authors = append([]domain.AuthorID(nil), authors...)
	s.saves++
	return nil
}

// FailSaves makes every later Save return err.
func (s *OptInStore) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves returns how many times Save succeeded.
func (s *OptInStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
