package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/ports"
)

// Loader implements ports.DocumentLoader using an in-memory map.
type Loader struct {
	documents map[string]*domain.NodeNetwork
}

// NewLoader creates a Loader holding deep copies of the given networks.
func NewLoader(documents map[string]*domain.NodeNetwork) *Loader {
	l := &Loader{documents: make(map[string]*domain.NodeNetwork, len(documents))}
	for name, network := range documents {
		l.documents[name] = network.Clone()
	}
	return l
}

// LoadDocument returns a copy of the named network, so callers may edit it freely.
func (l *Loader) LoadDocument(ctx context.Context, name string) (*domain.NodeNetwork, error) {
	network, ok := l.documents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrDocumentNotFound, name)
	}
	return network.Clone(), nil
}

// ListDocuments returns all document names.
func (l *Loader) ListDocuments(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.documents))
	for k := range l.documents {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
