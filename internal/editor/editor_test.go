package editor

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/idgen"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var emptyRaster = domain.ImageFrame{Transform: domain.IdentityAffine()}

func newNode(t *testing.T, r *registry.Registry, typeName string, x, y int) *domain.DocumentNode {
	t.Helper()
	node, err := r.NewNode(typeName, domain.IVec2{X: x, Y: y})
	require.NoError(t, err)
	return node
}

// exampleNetwork is {1:Input, 2:Exposure(Link 1), 3:Output(Link 2), 4:Image} with outputs [(3,0)].
func exampleNetwork(t *testing.T, r *registry.Registry) *domain.NodeNetwork {
	t.Helper()
	n := domain.NewNetwork()
	n.Nodes[1] = newNode(t, r, registry.TypeInput, 0, 0)
	n.Nodes[2] = newNode(t, r, registry.TypeExposure, 8, 0)
	n.Nodes[2].Inputs[0] = domain.LinkTo(1, 0)
	n.Nodes[3] = newNode(t, r, registry.TypeOutput, 16, 0)
	n.Nodes[3].Inputs[0] = domain.LinkTo(2, 0)
	n.Nodes[4] = newNode(t, r, registry.TypeImage, 0, 8)
	n.Inputs = []domain.NodeID{1}
	n.Outputs = []domain.NodeOutput{{Node: 3}}
	return n
}

func setup(t *testing.T, opts ...Option) (*Dispatcher, *domain.NodeNetwork, *registry.Registry) {
	t.Helper()
	r := registry.Builtin()
	opts = append([]Option{WithIDGenerator(idgen.NewSequential(100))}, opts...)
	return NewDispatcher(NewHandler(r, opts...)), exampleNetwork(t, r), r
}

func dispatch(t *testing.T, d *Dispatcher, root *domain.NodeNetwork, reqs ...Request) []Response {
	t.Helper()
	responses, err := d.Dispatch(context.Background(), root, reqs...)
	require.NoError(t, err)
	return responses
}

func find[T Response](responses []Response) (T, bool) {
	for _, r := range responses {
		if typed, ok := r.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

func TestConnectNodesByLink_Example(t *testing.T) {
	d, n, _ := setup(t)
	before := n.Generation

	responses := dispatch(t, d, n, ConnectNodesByLink{OutputNode: 4, OutputIndex: 0, InputNode: 2, InputPosition: 0})

	assert.Equal(t, domain.LinkTo(4, 0), n.Nodes[2].Inputs[0])
	assert.Contains(t, n.Nodes, domain.NodeID(1), "unreferenced nodes are not removed")
	assert.Greater(t, n.Generation, before)

	_, ok := find[StartTransaction](responses)
	assert.True(t, ok)
	rerender, ok := find[Rerender](responses)
	require.True(t, ok, "node 2 feeds the output")
	assert.Equal(t, n.Generation, rerender.Generation)
}

func TestConnectNodesByLink_Rejected(t *testing.T) {
	tests := []struct {
		name string
		req  ConnectNodesByLink
		want error
	}{
		{"hidden input position", ConnectNodesByLink{OutputNode: 4, InputNode: 2, InputPosition: 1}, domain.ErrInvalidInputIndex},
		{"missing destination", ConnectNodesByLink{OutputNode: 4, InputNode: 42}, domain.ErrNodeNotFound},
		{"missing source", ConnectNodesByLink{OutputNode: 42, InputNode: 2}, domain.ErrNodeNotFound},
		{"invalid output index", ConnectNodesByLink{OutputNode: 4, OutputIndex: 3, InputNode: 2}, domain.ErrInvalidOutputIndex},
		{"cycle", ConnectNodesByLink{OutputNode: 3, InputNode: 2}, domain.ErrCyclicNetwork},
		{"self link", ConnectNodesByLink{OutputNode: 2, InputNode: 2}, domain.ErrCyclicNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, n, _ := setup(t)
			before := n.Clone()

			_, err := d.Dispatch(context.Background(), n, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, n)
		})
	}
}

func TestDisconnectNodes(t *testing.T) {
	d, n, _ := setup(t)

	dispatch(t, d, n, DisconnectNodes{Node: 2, InputPosition: 0})
	assert.Equal(t, domain.Value(emptyRaster, true), n.Nodes[2].Inputs[0])
	assert.Equal(t, domain.Value(domain.Number(0), false), n.Nodes[2].Inputs[1], "other slots untouched")

	_, err := d.Dispatch(context.Background(), n, DisconnectNodes{Node: 2, InputPosition: 4})
	assert.ErrorIs(t, err, domain.ErrInvalidInputIndex)
}

func TestExposeInput_PreservesValue(t *testing.T) {
	d, n, _ := setup(t)

	dispatch(t, d, n, SetInputValue{Node: 2, Index: 1, Value: domain.Number(2.5)})
	dispatch(t, d, n, ExposeInput{Node: 2, Index: 1, Exposed: true})
	assert.Equal(t, domain.Value(domain.Number(2.5), true), n.Nodes[2].Inputs[1])

	dispatch(t, d, n, ExposeInput{Node: 2, Index: 1, Exposed: false})
	dispatch(t, d, n, ExposeInput{Node: 2, Index: 1, Exposed: true})
	assert.Equal(t, domain.Value(domain.Number(2.5), true), n.Nodes[2].Inputs[1])
}

func TestExposeInput_HidingLinkDropsConnection(t *testing.T) {
	d, n, _ := setup(t)

	dispatch(t, d, n, ExposeInput{Node: 2, Index: 0, Exposed: false})
	assert.Equal(t, domain.Value(emptyRaster, false), n.Nodes[2].Inputs[0])
}

func TestDeleteNode_RewritesReferences(t *testing.T) {
	d, n, r := setup(t)
	n.Nodes[2].Inputs[0] = domain.LinkTo(4, 0)

	blend := newNode(t, r, "Blend", 8, 16)
	blend.Inputs[0] = domain.LinkTo(4, 0)
	blend.Inputs[1] = domain.LinkTo(1, 0)
	n.Nodes[6] = blend

	inner := domain.NewNetwork()
	inner.Nodes[4] = newNode(t, r, registry.TypeIdentity, 0, 0)
	inner.Nodes[11] = newNode(t, r, registry.TypeInvert, 8, 0)
	inner.Nodes[11].Inputs[0] = domain.LinkTo(4, 0)
	inner.Outputs = []domain.NodeOutput{{Node: 11}}
	n.Nodes[5] = &domain.DocumentNode{Name: "Custom", Implementation: domain.Nested{Network: inner}, Position: domain.IVec2{X: 30}}

	dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{4, 2}}, DeleteNode{ID: 4})

	assert.NotContains(t, n.Nodes, domain.NodeID(4))
	assert.Equal(t, domain.Value(emptyRaster, true), n.Nodes[2].Inputs[0])
	assert.Equal(t, domain.Value(emptyRaster, true), n.Nodes[6].Inputs[0])
	assert.Equal(t, domain.LinkTo(1, 0), n.Nodes[6].Inputs[1], "only the slot linked to the deleted node changes")
	assert.Equal(t, domain.Value(emptyRaster, true), inner.Nodes[11].Inputs[0], "nested networks are rewritten too")
	assert.Equal(t, []domain.NodeID{2}, d.Handler().Selected)
}

func TestDeleteNode_BoundaryRejected(t *testing.T) {
	for _, id := range []domain.NodeID{1, 3} {
		d, n, _ := setup(t)
		before := n.Clone()

		_, err := d.Dispatch(context.Background(), n, DeleteNode{ID: id})
		assert.ErrorIs(t, err, domain.ErrBoundaryNode)
		assert.Equal(t, before, n)
	}
}

func TestDeleteNode_StashedOutputProtected(t *testing.T) {
	d, n, _ := setup(t)
	dispatch(t, d, n, TogglePreview{ID: 2})
	require.Equal(t, domain.NodeID(2), n.Outputs[0].Node)

	_, err := d.Dispatch(context.Background(), n, DeleteNode{ID: 3})
	assert.ErrorIs(t, err, domain.ErrBoundaryNode)
	assert.Contains(t, n.Nodes, domain.NodeID(3))
}

func TestDeleteNodes_AllRejectedOpensNoTransaction(t *testing.T) {
	d, n, _ := setup(t)
	before := n.Clone()

	responses, err := d.Dispatch(context.Background(), n, DeleteNodes{IDs: []domain.NodeID{1, 3, 99}})
	assert.ErrorIs(t, err, domain.ErrBoundaryNode)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	assert.Equal(t, before, n)
	assert.Empty(t, responses)

	responses = dispatch(t, d, n, DeleteNodes{IDs: []domain.NodeID{4, 2}})
	transactions := 0
	for _, r := range responses {
		if _, ok := r.(StartTransaction); ok {
			transactions++
		}
	}
	assert.Equal(t, 1, transactions)
}

func TestDeleteSelectedNodes_SkipsBoundary(t *testing.T) {
	d, n, _ := setup(t)

	_, err := d.Dispatch(context.Background(), n, SelectNodes{IDs: []domain.NodeID{1, 4}}, DeleteSelectedNodes{})
	assert.ErrorIs(t, err, domain.ErrBoundaryNode)
	assert.Contains(t, n.Nodes, domain.NodeID(1))
	assert.NotContains(t, n.Nodes, domain.NodeID(4))
}

func TestCopyPaste_DisjointIDsAndPositions(t *testing.T) {
	d, n, _ := setup(t)
	n.Nodes[2].Inputs[0] = domain.LinkTo(4, 0)

	existingIDs := n.SortedIDs()
	existingPositions := make(map[domain.IVec2]bool)
	for _, node := range n.Nodes {
		existingPositions[node.Position] = true
	}

	responses := dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{2, 4, 3}}, Copy{})
	clip, ok := find[TriggerTextCopy](responses)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(clip.Text, ClipboardPrefix))

	entries, err := DecodeClipboard(clip.Text)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "output nodes are not copied")

	dispatch(t, d, n, PasteNodes{Payload: clip.Text})
	pasted := d.Handler().Selected
	require.Len(t, pasted, 2)

	for _, id := range pasted {
		assert.NotContains(t, existingIDs, id)
		assert.False(t, existingPositions[n.Nodes[id].Position], "pasted node %d overlaps", id)
	}

	// The pasted Exposure reads the pasted Image, not the original one.
	var exposure, image domain.NodeID
	for _, id := range pasted {
		switch n.Nodes[id].TypeName() {
		case registry.TypeExposure:
			exposure = id
		case registry.TypeImage:
			image = id
		}
	}
	assert.Equal(t, domain.LinkTo(image, 0), n.Nodes[exposure].Inputs[0])
	assert.True(t, n.IsAcyclic())
}

func TestPaste_InvalidPayload(t *testing.T) {
	d, n, _ := setup(t)
	before := n.Clone()

	for _, payload := range []string{
		ClipboardPrefix + "{not json",
		`[[1, {"name": "X", "inputs": [{"kind": "warp"}], "type": "Identity"}]]`,
		`[[1, null]]`,
	} {
		_, err := d.Dispatch(context.Background(), n, PasteNodes{Payload: payload})
		assert.ErrorIs(t, err, domain.ErrInvalidPayload, payload)
		assert.Equal(t, before, n)
	}
}

func TestPaste_RejectsLinkToMissingOutput(t *testing.T) {
	d, n, r := setup(t)
	before := n.Clone()

	consumer := newNode(t, r, registry.TypeIdentity, 8, 0)
	consumer.Inputs[0] = domain.LinkTo(1, 7)
	payload, err := EncodeClipboard([]ClipboardEntry{
		{ID: 1, Node: newNode(t, r, registry.TypeIdentity, 0, 0)},
		{ID: 2, Node: consumer},
	})
	require.NoError(t, err)

	responses, err := d.Dispatch(context.Background(), n, PasteNodes{Payload: payload})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	assert.ErrorIs(t, err, domain.ErrInvalidOutputIndex)
	assert.Equal(t, before, n, "nothing from the payload is inserted")
	_, ok := find[StartTransaction](responses)
	assert.False(t, ok)
}

func TestPaste_ExternalLinksFallBackToDefaults(t *testing.T) {
	d, n, _ := setup(t)

	responses := dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{2}}, Copy{})
	clip, _ := find[TriggerTextCopy](responses)
	dispatch(t, d, n, PasteNodes{Payload: clip.Text})

	id := d.Handler().Selected[0]
	assert.Equal(t, domain.Value(emptyRaster, true), n.Nodes[id].Inputs[0])
}

func TestDuplicate_RepeatedNeverOverlaps(t *testing.T) {
	d, n, _ := setup(t)

	for i := 0; i < 6; i++ {
		dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{2, 4}}, DuplicateSelectedNodes{})
	}
	// Selection follows the duplicates.
	for i := 0; i < 3; i++ {
		dispatch(t, d, n, DuplicateSelectedNodes{})
	}

	assert.Len(t, n.Nodes, 4+9*2)
	positions := make(map[domain.IVec2]domain.NodeID)
	for id, node := range n.Nodes {
		other, taken := positions[node.Position]
		assert.False(t, taken, "nodes %d and %d share position %v", id, other, node.Position)
		positions[node.Position] = id
	}
}

func TestDuplicate_SkipsOutputs(t *testing.T) {
	d, n, _ := setup(t)
	dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{3}}, DuplicateSelectedNodes{})
	assert.Len(t, n.Nodes, 4)
}

func TestTogglePreview_RoundTrip(t *testing.T) {
	d, n, _ := setup(t)
	n.Outputs = []domain.NodeOutput{{Node: 3}, {Node: 2, Index: 0}}
	original := append([]domain.NodeOutput(nil), n.Outputs...)

	dispatch(t, d, n, TogglePreview{ID: 4})
	assert.Equal(t, domain.NodeOutput{Node: 4}, n.Outputs[0])
	assert.Equal(t, original, n.PreviousOutputs)

	dispatch(t, d, n, TogglePreview{ID: 4})
	assert.Equal(t, original, n.Outputs)
	assert.Nil(t, n.PreviousOutputs)
}

func TestTogglePreview_RetargetKeepsOriginalStash(t *testing.T) {
	d, n, _ := setup(t)

	dispatch(t, d, n, TogglePreview{ID: 4})
	dispatch(t, d, n, TogglePreview{ID: 2})
	assert.Equal(t, []domain.NodeOutput{{Node: 2}}, n.Outputs)
	assert.Equal(t, []domain.NodeOutput{{Node: 3}}, n.PreviousOutputs)

	dispatch(t, d, n, TogglePreview{ID: 2})
	assert.Equal(t, []domain.NodeOutput{{Node: 3}}, n.Outputs)
	assert.Nil(t, n.PreviousOutputs)
}

func TestTogglePreview_OnlyPrimaryOutputIsPreviewed(t *testing.T) {
	d, n, _ := setup(t)
	n.Outputs = []domain.NodeOutput{{Node: 3}, {Node: 2}}

	dispatch(t, d, n, TogglePreview{ID: 4})
	require.Equal(t, []domain.NodeOutput{{Node: 4}, {Node: 2}}, n.Outputs)

	snapshot, err := d.Handler().Snapshot(context.Background(), n)
	require.NoError(t, err)
	previewed := map[domain.NodeID]bool{}
	for _, node := range snapshot.Nodes {
		previewed[node.ID] = node.Previewed
	}
	assert.True(t, previewed[4])
	assert.False(t, previewed[2], "secondary outputs keep their own state")
	assert.False(t, previewed[3])
}

func TestTogglePreview_OutputWithoutStashIsNoop(t *testing.T) {
	d, n, _ := setup(t)
	before := n.Clone()

	dispatch(t, d, n, TogglePreview{ID: 3})
	assert.Equal(t, before, n)
}

func TestToggleHidden_ExcludesBoundaryNodes(t *testing.T) {
	d, n, _ := setup(t)

	dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{1, 2, 3}}, ToggleHidden{})
	assert.Equal(t, []domain.NodeID{2}, n.Disabled)

	dispatch(t, d, n, ToggleHidden{})
	assert.Empty(t, n.Disabled)

	dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{1, 3}}, ToggleHidden{})
	assert.Empty(t, n.Disabled)
}

func TestShiftNode_EnforcesGap(t *testing.T) {
	r := registry.Builtin()
	d := NewDispatcher(NewHandler(r))

	n := domain.NewNetwork()
	n.Nodes[10] = newNode(t, r, registry.TypeIdentity, 0, 0)
	n.Nodes[11] = newNode(t, r, registry.TypeIdentity, 3, 0)
	n.Nodes[11].Inputs[0] = domain.LinkTo(10, 0)
	n.Nodes[12] = newNode(t, r, registry.TypeIdentity, 5, 0)
	n.Nodes[12].Inputs[0] = domain.LinkTo(11, 0)
	n.Nodes[13] = newNode(t, r, registry.TypeIdentity, 30, 4)
	n.Nodes[13].Inputs[0] = domain.LinkTo(11, 0)
	n.Nodes[14] = newNode(t, r, "Add", 7, 8)
	n.Nodes[14].Inputs[0] = domain.LinkTo(12, 0)
	n.Nodes[14].Inputs[1] = domain.LinkTo(13, 0)
	n.Outputs = []domain.NodeOutput{{Node: 14}}

	dispatch(t, d, n, ShiftNode{ID: 11})

	require.True(t, n.IsAcyclic())
	for _, link := range [][2]domain.NodeID{{10, 11}, {11, 12}, {11, 13}} {
		gap := n.Nodes[link[1]].Position.X - n.Nodes[link[0]].Position.X
		assert.GreaterOrEqual(t, gap, minimumGap, "gap %d -> %d", link[0], link[1])
	}
	assert.Equal(t, 8, n.Nodes[11].Position.X)
	assert.Equal(t, 30, n.Nodes[13].Position.X, "already spaced consumers stay put")
}

func TestMoveSelectedNodes(t *testing.T) {
	d, n, _ := setup(t)
	dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{2, 4}}, MoveSelectedNodes{DX: 1, DY: -2})
	assert.Equal(t, domain.IVec2{X: 9, Y: -2}, n.Nodes[2].Position)
	assert.Equal(t, domain.IVec2{X: 1, Y: 6}, n.Nodes[4].Position)
	assert.Equal(t, domain.IVec2{X: 16}, n.Nodes[3].Position)
}

func TestCreateNode(t *testing.T) {
	d, n, _ := setup(t)

	dispatch(t, d, n, CreateNode{Type: "Grayscale", Position: domain.IVec2{X: 40}})
	require.Contains(t, n.Nodes, domain.NodeID(100))
	assert.Equal(t, "Grayscale", n.Nodes[100].Name)

	responses, err := d.Dispatch(context.Background(), n, CreateNode{Type: "Teleport"})
	assert.ErrorIs(t, err, domain.ErrUnknownNodeType)
	_, ok := find[DisplayError](responses)
	assert.True(t, ok)

	id := domain.NodeID(2)
	_, err = d.Dispatch(context.Background(), n, CreateNode{ID: &id, Type: "Grayscale"})
	assert.ErrorIs(t, err, domain.ErrNodeExists)
}

func TestNestedNavigation(t *testing.T) {
	d, n, _ := setup(t)
	id := domain.NodeID(50)

	dispatch(t, d, n, CreateNode{ID: &id, Type: registry.TypeInvertExposure, Position: domain.IVec2{X: 40}})
	responses := dispatch(t, d, n, EnterNestedNetwork{ID: 50})

	h := d.Handler()
	assert.Equal(t, []domain.NodeID{50}, h.NestedPath)
	assert.Equal(t, []string{"Document", registry.TypeInvertExposure}, h.Breadcrumb(n))
	graph, ok := find[UpdateNodeGraph](responses)
	require.True(t, ok)
	assert.Len(t, graph.Snapshot.Nodes, 3)

	// Edits now apply inside the nested network, and bump the root generation.
	before := n.Generation
	dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{2}}, MoveSelectedNodes{DX: 1})
	assert.Equal(t, 17, n.Nodes[50].Network().Nodes[2].Position.X)
	assert.Greater(t, n.Generation, before)

	dispatch(t, d, n, ExitNestedNetwork{Depth: 1})
	assert.Empty(t, h.NestedPath)

	_, err := d.Dispatch(context.Background(), n, EnterNestedNetwork{ID: 2})
	assert.ErrorIs(t, err, domain.ErrNoActiveNetwork)
}

func TestCut_ProcessesFollowUpsInOrder(t *testing.T) {
	d, n, _ := setup(t)

	responses := dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{4}}, Cut{})

	copyAt, transactionAt := -1, -1
	for i, r := range responses {
		switch r.(type) {
		case TriggerTextCopy:
			copyAt = i
		case StartTransaction:
			if transactionAt < 0 {
				transactionAt = i
			}
		}
	}
	require.GreaterOrEqual(t, copyAt, 0)
	assert.Less(t, copyAt, transactionAt, "copy runs before the delete it emitted")
	assert.NotContains(t, n.Nodes, domain.NodeID(4))
}

func TestInit_ListsNodeTypes(t *testing.T) {
	d, n, r := setup(t)
	responses := dispatch(t, d, n, Init{})
	types, ok := find[UpdateNodeTypes](responses)
	require.True(t, ok)
	assert.Equal(t, r.Types(), types.Types)
}

func TestSelectionActions(t *testing.T) {
	d, n, _ := setup(t)
	h := d.Handler()

	dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{2}})
	actions := h.SelectionActions(n)
	assert.Equal(t, "Hide", actions.HideLabel)
	assert.True(t, actions.HideEnabled)
	assert.Equal(t, "Preview", actions.PreviewLabel)

	dispatch(t, d, n, ToggleHidden{}, TogglePreview{ID: 2})
	actions = h.SelectionActions(n)
	assert.Equal(t, "Show", actions.HideLabel)
	assert.Equal(t, "End Preview", actions.PreviewLabel)

	dispatch(t, d, n, SelectNodes{IDs: []domain.NodeID{1}})
	assert.False(t, h.SelectionActions(n).HideEnabled)
}
