package ports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/google/uuid"
)

// ErrThumbnailNotFound is returned when no thumbnail is cached for a key.
var ErrThumbnailNotFound = errors.New("thumbnail not found")

// ThumbnailKey addresses one node's intermediate output.
type ThumbnailKey struct {
	Document uuid.UUID
	// Layer is the path of the layer owning the network; empty for the document network.
	Layer []uint64
	// Node is the nested path from the layer network to the node, ending with its id.
	Node []domain.NodeID
}

// Scope returns the document and layer part of the key. Thumbnails sharing a
// scope are invalidated together.
func (k ThumbnailKey) Scope() string {
	return k.Document.String() + "/" + joinPath(k.Layer)
}

// String returns a stable textual form usable as a map or cache key.
func (k ThumbnailKey) String() string {
	return k.Scope() + "/" + joinPath(k.Node)
}

func joinPath[T ~uint64](path []T) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprint(uint64(p))
	}
	return strings.Join(parts, ".")
}

// ThumbnailStore caches rendered thumbnails for graph nodes.
type ThumbnailStore interface {
	// Save stores the rendered thumbnail for key, replacing any previous one.
	Save(ctx context.Context, key ThumbnailKey, svg string) error

	// Load returns the thumbnail for key.
	// Returns ErrThumbnailNotFound if nothing is cached.
	Load(ctx context.Context, key ThumbnailKey) (string, error)

	// Invalidate drops every thumbnail of the given document layer.
	Invalidate(ctx context.Context, document uuid.UUID, layer []uint64) error
}
