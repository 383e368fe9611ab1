package contentstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MemoryStore keeps published content in memory. Used when
// CONTENT_STORE_MODE=memory (local development) and throughout the tests.
type MemoryStore struct {
	mu        sync.Mutex
	published map[string]datatypes.JSON
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{published: map[string]datatypes.JSON{}}
}

func (s *MemoryStore) Publish(ctx context.Context, payload datatypes.JSON) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := uuid.NewString()
	s.published[ref] = payload
	return ref, nil
}

func (s *MemoryStore) Unpublish(ctx context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.published, reference)
	return nil
}

// Has reports whether a reference is currently live.
func (s *MemoryStore) Has(reference string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.published[reference]
	return ok
}

// Len reports how many entries are currently live.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}
