package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/dsl"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/aretw0/nodegraph/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	r := registry.Builtin()
	b := dsl.New(r)
	b.Add(1, registry.TypeNumber).Set(0, domain.Number(2))
	b.Add(2, "Multiply").Link(0, 1).Expose(1, domain.Number(5))
	b.Output(2, 0)
	loader, err := b.Loader("product")
	require.NoError(t, err)
	return NewServer(session.NewManager(session.FromLoader(loader)), r)
}

func TestServer_EditThenEvaluate(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleEvaluate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"document": "product"})
	require.NoError(t, err)
	assert.Equal(t, "10", res.Output)
	assert.Equal(t, domain.KindNumber, res.Kind)

	edit, err := s.handleEdit(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"document": "product",
		"requests": `[{"request": "SetInputValue", "params": {"node": 2, "index": 1, "value": {"kind": "f64", "value": 7}}}]`,
	})
	require.NoError(t, err)
	assert.Empty(t, edit.Errors)
	assert.NotEmpty(t, edit.Responses)

	res, err = s.handleEvaluate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"document": "product"})
	require.NoError(t, err)
	assert.Equal(t, "14", res.Output)
	assert.Equal(t, edit.Generation, res.Generation)
}

func TestServer_EditRejections(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	_, err := s.handleEdit(ctx, mcp.CallToolRequest{}, map[string]interface{}{"document": "product", "requests": `{"request": "Copy"}`})
	assert.Error(t, err, "a single object is not an array")

	_, err = s.handleEdit(ctx, mcp.CallToolRequest{}, map[string]interface{}{"document": "product", "requests": `[{"request": "Teleport"}]`})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	edit, err := s.handleEdit(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"document": "product",
		"requests": `[{"request": "ConnectNodesByLink", "params": {"outputNode": 2, "inputNode": 2, "inputPosition": 0}}]`,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, edit.Errors)

	_, err = s.handleEvaluate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"document": "missing"})
	assert.Error(t, err)
}

func TestServer_ListsTools(t *testing.T) {
	s := newServer(t)
	msg := s.mcpServer.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc": "2.0", "id": 1, "method": "tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	for _, name := range []string{"list_node_types", "get_graph", "edit", "evaluate"} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}
