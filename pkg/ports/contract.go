package ports

import (
	"context"
	"testing"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunThumbnailStoreContract runs a suite of tests to verify that a ThumbnailStore
// implementation adheres to the defined interface contract.
func RunThumbnailStoreContract(t *testing.T, store ThumbnailStore) {
	ctx := context.Background()
	doc := uuid.New()
	key := ThumbnailKey{Document: doc, Layer: []uint64{3}, Node: []domain.NodeID{7, 2}}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, "<svg>a</svg>"))

		got, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "<svg>a</svg>", got)

		require.NoError(t, store.Save(ctx, key, "<svg>b</svg>"))
		got, err = store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "<svg>b</svg>", got, "Save replaces the previous thumbnail")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, ThumbnailKey{Document: uuid.New(), Node: []domain.NodeID{1}})
		assert.ErrorIs(t, err, ErrThumbnailNotFound)
	})

	t.Run("Invalidate Scope", func(t *testing.T) {
		sibling := ThumbnailKey{Document: doc, Layer: []uint64{3}, Node: []domain.NodeID{9}}
		other := ThumbnailKey{Document: doc, Layer: []uint64{4}, Node: []domain.NodeID{9}}
		require.NoError(t, store.Save(ctx, key, "k"))
		require.NoError(t, store.Save(ctx, sibling, "s"))
		require.NoError(t, store.Save(ctx, other, "o"))

		require.NoError(t, store.Invalidate(ctx, doc, []uint64{3}))

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, ErrThumbnailNotFound)
		_, err = store.Load(ctx, sibling)
		assert.ErrorIs(t, err, ErrThumbnailNotFound)

		got, err := store.Load(ctx, other)
		require.NoError(t, err, "other layers are untouched")
		assert.Equal(t, "o", got)
	})
}
