package memory

import (
	"context"
	"sync"

	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/google/uuid"
)

// Store implements ports.ThumbnailStore in memory.
// Safe for concurrent use.
type Store struct {
	// data maps a scope (document and layer) to node path keys to thumbnails,
	// so Invalidate drops a whole scope at once.
	data map[string]map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory thumbnail store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]map[string]string),
	}
}

// Save stores the thumbnail, replacing any previous one.
func (s *Store) Save(ctx context.Context, key ports.ThumbnailKey, svg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := key.Scope()
	if s.data[scope] == nil {
		s.data[scope] = make(map[string]string)
	}
	s.data[scope][key.String()] = svg
	return nil
}

// Load retrieves a thumbnail.
func (s *Store) Load(ctx context.Context, key ports.ThumbnailKey) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svg, ok := s.data[key.Scope()][key.String()]
	if !ok {
		return "", ports.ErrThumbnailNotFound
	}
	return svg, nil
}

// Invalidate drops every thumbnail of a document layer.
func (s *Store) Invalidate(ctx context.Context, document uuid.UUID, layer []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, ports.ThumbnailKey{Document: document, Layer: layer}.Scope())
	return nil
}

// Len returns the number of cached thumbnails.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, scope := range s.data {
		n += len(scope)
	}
	return n
}
