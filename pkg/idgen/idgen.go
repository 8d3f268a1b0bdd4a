// Package idgen provides ports.IDGenerator implementations.
package idgen

import (
	"encoding/binary"
	"sync"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/google/uuid"
)

// Sequential hands out consecutive ids starting at a fixed value.
// It is deterministic, which makes paste and duplicate replayable in tests.
type Sequential struct {
	mu   sync.Mutex
	next domain.NodeID
}

// NewSequential returns a generator whose first id is start.
func NewSequential(start domain.NodeID) *Sequential {
	return &Sequential{next: start}
}

// NextID returns the next id in sequence.
func (s *Sequential) NextID() domain.NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return id
}

// Random derives ids from random (v4) UUIDs.
type Random struct{}

// NewRandom returns a random id generator.
func NewRandom() Random {
	return Random{}
}

// NextID returns the high 64 bits of a fresh UUID.
func (Random) NextID() domain.NodeID {
	u := uuid.New()
	return domain.NodeID(binary.BigEndian.Uint64(u[:8]))
}
