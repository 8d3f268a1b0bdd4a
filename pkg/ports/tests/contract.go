package tests

import (
	"context"
	"testing"

	"github.com/aretw0/nodegraph/pkg/ports"
)

// DocumentLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.DocumentLoader.
// expected maps each document name to its number of nodes.
func DocumentLoaderContractTest(t *testing.T, loader ports.DocumentLoader, expected map[string]int) {
	t.Helper()
	ctx := context.Background()

	// 1. LoadDocument (Success)
	t.Run("LoadDocument_Success", func(t *testing.T) {
		for name, count := range expected {
			network, err := loader.LoadDocument(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading %s: %v", name, err)
			}
			if len(network.Nodes) != count {
				t.Errorf("node count mismatch for %s. got %d, want %d", name, len(network.Nodes), count)
			}
		}
	})

	// 2. LoadDocument returns independent copies
	t.Run("LoadDocument_Isolation", func(t *testing.T) {
		for name := range expected {
			first, err := loader.LoadDocument(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error loading %s: %v", name, err)
			}
			for id := range first.Nodes {
				delete(first.Nodes, id)
			}
			second, err := loader.LoadDocument(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error reloading %s: %v", name, err)
			}
			if len(second.Nodes) != expected[name] {
				t.Errorf("mutating a loaded copy of %s leaked into the loader", name)
			}
		}
	})

	// 3. LoadDocument (NotFound)
	t.Run("LoadDocument_NotFound", func(t *testing.T) {
		_, err := loader.LoadDocument(ctx, "non-existent-document")
		if err == nil {
			t.Error("expected error for non-existent document, got nil")
		}
	})

	// 4. ListDocuments
	t.Run("ListDocuments", func(t *testing.T) {
		names, err := loader.ListDocuments(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing documents: %v", err)
		}

		if len(names) != len(expected) {
			t.Errorf("expected %d documents, got %d", len(expected), len(names))
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}

		for name := range expected {
			if !lookup[name] {
				t.Errorf("document %s missing from list", name)
			}
		}
	})
}
