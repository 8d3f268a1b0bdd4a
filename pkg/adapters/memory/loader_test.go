package memory_test

import (
	"testing"

	"github.com/aretw0/nodegraph/pkg/adapters/memory"
	"github.com/aretw0/nodegraph/pkg/domain"
	contract "github.com/aretw0/nodegraph/pkg/ports/tests"
)

func TestInMemoryLoader_Contract(t *testing.T) {
	single := domain.NewNetwork()
	single.Nodes[1] = &domain.DocumentNode{Name: "Output", Implementation: domain.Primitive{Type: "Output"}}
	single.Outputs = []domain.NodeOutput{{Node: 1}}

	pair := single.Clone()
	pair.Nodes[2] = &domain.DocumentNode{Name: "Number", Implementation: domain.Primitive{Type: "Number"}}

	loader := memory.NewLoader(map[string]*domain.NodeNetwork{
		"single": single,
		"pair":   pair,
	})

	contract.DocumentLoaderContractTest(t, loader, map[string]int{"single": 1, "pair": 2})
}
