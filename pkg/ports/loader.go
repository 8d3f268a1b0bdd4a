package ports

import (
	"context"
	"errors"

	"github.com/aretw0/nodegraph/pkg/domain"
)

// ErrDocumentNotFound is returned by loaders for unknown document names.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentLoader defines how node networks are retrieved.
// This allows the storage layer (files, memory) to be decoupled.
type DocumentLoader interface {
	// LoadDocument returns a fresh copy of the named network.
	// Returns ErrDocumentNotFound if the name is unknown.
	LoadDocument(ctx context.Context, name string) (*domain.NodeNetwork, error)

	// ListDocuments returns the available document names in sorted order.
	ListDocuments(ctx context.Context) ([]string, error)
}
