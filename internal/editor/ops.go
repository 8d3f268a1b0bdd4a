package editor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/nodegraph/pkg/domain"
)

// minimumGap is the horizontal spacing ShiftNode enforces between linked nodes.
const minimumGap = 8

// duplicateStep is the offset applied to duplicated and pasted nodes until they
// no longer overlap existing ones.
var duplicateStep = domain.Splat(2)

func (h *Handler) createNode(network *domain.NodeNetwork, r CreateNode) (Outcome, error) {
	var out Outcome
	node, err := h.catalog.NewNode(r.Type, r.Position)
	if err != nil {
		out.respond(DisplayError{
			Title:       "Cannot create node",
			Description: "The node type \"" + r.Type + "\" does not exist in the node library.",
		})
		return out, err
	}

	var id domain.NodeID
	if r.ID != nil {
		id = *r.ID
	} else {
		id = h.freshID(network, nil)
	}
	out.respond(StartTransaction{})
	out.follow(InsertNode{ID: id, Node: node}, SendGraph{})
	return out, nil
}

func (h *Handler) insertNode(network *domain.NodeNetwork, id domain.NodeID, node *domain.DocumentNode) error {
	if node == nil {
		return domain.NewGraphError("insert", id, "missing node", domain.ErrInvalidPayload)
	}
	if _, exists := network.Nodes[id]; exists {
		return domain.NewGraphError("insert", id, "id already in use", domain.ErrNodeExists)
	}
	for _, input := range node.Inputs {
		link, ok := input.(domain.Link)
		if !ok {
			continue
		}
		if err := h.validateLink(network, id, link); err != nil {
			return err
		}
	}
	network.Nodes[id] = node
	h.markDirty()
	return nil
}

func (h *Handler) deleteNodes(network *domain.NodeNetwork, ids []domain.NodeID) (Outcome, error) {
	var out Outcome
	var errs []error
	deleted := false
	for _, id := range ids {
		if err := h.checkDeletable(network, id); err != nil {
			errs = append(errs, err)
			continue
		}
		if !deleted {
			out.respond(StartTransaction{})
		}
		h.removeNode(network, id)
		deleted = true
	}
	if deleted {
		out.follow(SendGraph{ShouldRerender: true})
	}
	return out, errors.Join(errs...)
}

func (h *Handler) checkDeletable(network *domain.NodeNetwork, id domain.NodeID) error {
	if _, ok := network.Nodes[id]; !ok {
		return domain.NewGraphError("delete", id, "node does not exist", domain.ErrNodeNotFound)
	}
	if network.IsInput(id) {
		return domain.NewGraphError("delete", id, "cannot delete an input node", domain.ErrBoundaryNode)
	}
	if network.OutputsContain(id) || network.OriginalOutputsContain(id) {
		return domain.NewGraphError("delete", id, "cannot delete an output node", domain.ErrBoundaryNode)
	}
	return nil
}

func (h *Handler) removeNode(network *domain.NodeNetwork, id domain.NodeID) {
	h.removeReferences(network, id)
	delete(network.Nodes, id)
	network.Disabled = slices.DeleteFunc(network.Disabled, func(d domain.NodeID) bool { return d == id })
	h.Selected = slices.DeleteFunc(h.Selected, func(s domain.NodeID) bool { return s == id })
	h.markDirty()
}

// removeReferences replaces every link to id with the slot default, descending
// into nested networks that do not use id as a boundary node of their own.
func (h *Handler) removeReferences(network *domain.NodeNetwork, id domain.NodeID) {
	for nodeID, node := range network.Nodes {
		if nodeID == id {
			continue
		}
		for i, input := range node.Inputs {
			if link, ok := input.(domain.Link); ok && link.Target == id {
				node.Inputs[i] = h.unlinkedDefault(node, i)
			}
		}
		if nested := node.Network(); nested != nil && !nested.IsBoundary(id) {
			h.removeReferences(nested, id)
			nested.Touch()
		}
	}
}

// unlinkedDefault is the exposed default literal for a slot that lost its link.
func (h *Handler) unlinkedDefault(node *domain.DocumentNode, index int) domain.Literal {
	if def, ok := h.catalog.DefaultInput(node, index); ok {
		if literal, ok := def.(domain.Literal); ok {
			return domain.Value(literal.Value, true)
		}
	}
	return domain.Value(domain.None{}, true)
}

// outputCount is the number of outputs a link may address on node.
func (h *Handler) outputCount(node *domain.DocumentNode) int {
	if nested := node.Network(); nested != nil {
		return max(len(nested.Outputs), 1)
	}
	return max(len(h.catalog.OutputSlots(node)), 1)
}

// validateLink checks that consumer may read link without breaking the store invariants.
func (h *Handler) validateLink(network *domain.NodeNetwork, consumer domain.NodeID, link domain.Link) error {
	source, ok := network.Nodes[link.Target]
	if !ok {
		return domain.NewGraphError("link", link.Target, "link source does not exist", domain.ErrNodeNotFound)
	}
	if link.OutputIndex < 0 || link.OutputIndex >= h.outputCount(source) {
		return domain.NewGraphError("link", link.Target, "output index out of range", domain.ErrInvalidOutputIndex)
	}
	if link.Target == consumer || dependsOn(network, link.Target, consumer) {
		return domain.NewGraphError("link", consumer, "link would create a cycle", domain.ErrCyclicNetwork)
	}
	return nil
}

// dependsOn reports whether from reads, directly or transitively, the output of target.
func dependsOn(network *domain.NodeNetwork, from, target domain.NodeID) bool {
	visited := make(map[domain.NodeID]bool)
	stack := []domain.NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		if node, ok := network.Nodes[id]; ok {
			stack = append(stack, node.LinkedTargets()...)
		}
	}
	return false
}

func (h *Handler) lookupInput(network *domain.NodeNetwork, op string, id domain.NodeID, index int) (*domain.DocumentNode, error) {
	node, ok := network.Nodes[id]
	if !ok {
		return nil, domain.NewGraphError(op, id, "node does not exist", domain.ErrNodeNotFound)
	}
	if index < 0 || index >= len(node.Inputs) {
		return nil, domain.NewGraphError(op, id, "input index out of range", domain.ErrInvalidInputIndex)
	}
	return node, nil
}

func (h *Handler) lookupExposed(network *domain.NodeNetwork, op string, id domain.NodeID, position int) (*domain.DocumentNode, int, error) {
	node, ok := network.Nodes[id]
	if !ok {
		return nil, 0, domain.NewGraphError(op, id, "node does not exist", domain.ErrNodeNotFound)
	}
	index, ok := node.ExposedIndex(position)
	if !ok {
		return nil, 0, domain.NewGraphError(op, id, "no exposed input at that position", domain.ErrInvalidInputIndex)
	}
	return node, index, nil
}

func (h *Handler) setNodeInput(network *domain.NodeNetwork, r SetNodeInput) error {
	node, err := h.lookupInput(network, "set input", r.Node, r.Index)
	if err != nil {
		return err
	}
	if r.Input == nil {
		return domain.NewGraphError("set input", r.Node, "missing input", domain.ErrInvalidPayload)
	}
	if link, ok := r.Input.(domain.Link); ok {
		if err := h.validateLink(network, r.Node, link); err != nil {
			return err
		}
	}
	node.Inputs[r.Index] = r.Input
	h.markDirty()
	return nil
}

func (h *Handler) connect(network *domain.NodeNetwork, r ConnectNodesByLink) (Outcome, error) {
	_, index, err := h.lookupExposed(network, "connect", r.InputNode, r.InputPosition)
	if err != nil {
		return Outcome{}, err
	}
	link := domain.LinkTo(r.OutputNode, r.OutputIndex)
	if err := h.validateLink(network, r.InputNode, link); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	out.respond(StartTransaction{})
	out.follow(
		SetNodeInput{Node: r.InputNode, Index: index, Input: link},
		SendGraph{ShouldRerender: network.ConnectedToOutput(r.InputNode)},
	)
	return out, nil
}

func (h *Handler) disconnect(network *domain.NodeNetwork, r DisconnectNodes) (Outcome, error) {
	node, index, err := h.lookupExposed(network, "disconnect", r.Node, r.InputPosition)
	if err != nil {
		return Outcome{}, err
	}
	input, ok := h.catalog.DefaultInput(node, index)
	if !ok {
		return Outcome{}, domain.NewGraphError("disconnect", r.Node, "node type "+node.TypeName()+" is not in the library", domain.ErrUnknownNodeType)
	}
	if literal, ok := input.(domain.Literal); ok {
		input = domain.Value(literal.Value, node.Inputs[index].IsExposed())
	}

	var out Outcome
	out.respond(StartTransaction{})
	out.follow(
		SetNodeInput{Node: r.Node, Index: index, Input: input},
		SendGraph{ShouldRerender: network.ConnectedToOutput(r.Node)},
	)
	return out, nil
}

func (h *Handler) exposeInput(network *domain.NodeNetwork, r ExposeInput) (Outcome, error) {
	node, err := h.lookupInput(network, "expose", r.Node, r.Index)
	if err != nil {
		return Outcome{}, err
	}

	var input domain.NodeInput
	rerender := false
	switch current := node.Inputs[r.Index].(type) {
	case domain.Literal:
		input = domain.Value(current.Value, r.Exposed)
	case domain.Link:
		// Connections do not survive hiding.
		input = domain.Value(h.unlinkedDefault(node, r.Index).Value, r.Exposed)
		rerender = network.ConnectedToOutput(r.Node)
	default:
		return Outcome{}, nil
	}

	var out Outcome
	out.respond(StartTransaction{})
	out.follow(
		SetNodeInput{Node: r.Node, Index: r.Index, Input: input},
		SendGraph{ShouldRerender: rerender},
	)
	return out, nil
}

func (h *Handler) setInputValue(network *domain.NodeNetwork, r SetInputValue) (Outcome, error) {
	node, err := h.lookupInput(network, "set value", r.Node, r.Index)
	if err != nil {
		return Outcome{}, err
	}
	if r.Value == nil {
		return Outcome{}, domain.NewGraphError("set value", r.Node, "missing value", domain.ErrInvalidPayload)
	}
	exposed := false
	if literal, ok := node.Inputs[r.Index].(domain.Literal); ok {
		exposed = literal.Exposed
	}

	var out Outcome
	out.follow(
		SetNodeInput{Node: r.Node, Index: r.Index, Input: domain.Value(r.Value, exposed)},
		SendGraph{ShouldRerender: network.ConnectedToOutput(r.Node)},
	)
	return out, nil
}

func (h *Handler) moveSelected(network *domain.NodeNetwork, r MoveSelectedNodes) Outcome {
	delta := domain.IVec2{X: r.DX, Y: r.DY}
	for _, id := range h.Selected {
		if node, ok := network.Nodes[id]; ok {
			node.Position = node.Position.Add(delta)
			h.markDirty()
		}
	}

	var out Outcome
	out.follow(SendGraph{})
	return out
}

// shiftNode moves id right until it clears each of its inputs by minimumGap,
// then pushes each consumer's downstream subtree right by the deficit of that
// consumer, so gaps between already separated nodes never shrink.
func (h *Handler) shiftNode(network *domain.NodeNetwork, id domain.NodeID) (Outcome, error) {
	if !network.IsAcyclic() {
		return Outcome{}, domain.NewGraphError("shift", id, "network is not acyclic", domain.ErrCyclicNetwork)
	}
	node, ok := network.Nodes[id]
	if !ok {
		return Outcome{}, domain.NewGraphError("shift", id, "node does not exist", domain.ErrNodeNotFound)
	}

	requiredShift := func(left, right domain.NodeID) int {
		l, lok := network.Nodes[left]
		r, rok := network.Nodes[right]
		if !lok || !rok {
			return 0
		}
		return max(minimumGap-(r.Position.X-l.Position.X), 0)
	}

	for _, input := range node.LinkedTargets() {
		if shift := requiredShift(input, id); shift > 0 {
			node.Position.X += shift
			h.markDirty()
		}
	}

	outwards := network.OutwardsLinks()
	for _, descendant := range outwards[id] {
		shift := requiredShift(id, descendant)
		if shift == 0 {
			continue
		}
		visited := make(map[domain.NodeID]bool)
		stack := []domain.NodeID{descendant}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[current] {
				continue
			}
			visited[current] = true
			if n, ok := network.Nodes[current]; ok {
				n.Position.X += shift
			}
			stack = append(stack, outwards[current]...)
		}
		h.markDirty()
	}

	var out Outcome
	out.follow(SendGraph{})
	return out, nil
}

func (h *Handler) toggleHidden(network *domain.NodeNetwork) Outcome {
	anyDisabled := slices.ContainsFunc(h.Selected, network.IsDisabled)

	rerender := false
	for _, id := range h.Selected {
		if _, ok := network.Nodes[id]; !ok {
			continue
		}
		switch {
		case anyDisabled && network.IsDisabled(id):
			network.Disabled = slices.DeleteFunc(network.Disabled, func(d domain.NodeID) bool { return d == id })
		case !anyDisabled && !network.IsBoundary(id):
			network.Disabled = append(network.Disabled, id)
		default:
			continue
		}
		h.markDirty()
		rerender = rerender || network.ConnectedToOutput(id)
	}

	var out Outcome
	out.follow(SendGraph{ShouldRerender: rerender})
	return out
}

// togglePreview retargets the primary output to id, stashing the outputs the
// first time. Toggling the previewed node again restores the stash. Retargeting
// while already previewing keeps the original stash.
func (h *Handler) togglePreview(network *domain.NodeNetwork, id domain.NodeID) (Outcome, error) {
	if _, ok := network.Nodes[id]; !ok {
		return Outcome{}, domain.NewGraphError("preview", id, "node does not exist", domain.ErrNodeNotFound)
	}

	if network.OutputsContain(id) {
		if network.PreviousOutputs == nil {
			return Outcome{}, nil
		}
		network.Outputs = network.PreviousOutputs
		network.PreviousOutputs = nil
	} else {
		if network.PreviousOutputs == nil {
			network.PreviousOutputs = append(make([]domain.NodeOutput, 0, len(network.Outputs)), network.Outputs...)
		}
		outputs := slices.Clone(network.Outputs)
		if len(outputs) == 0 {
			outputs = []domain.NodeOutput{{Node: id}}
		} else {
			outputs[0] = domain.NodeOutput{Node: id}
		}
		network.Outputs = outputs
	}
	h.markDirty()

	var out Outcome
	out.follow(SendGraph{ShouldRerender: true})
	return out, nil
}

// copyable returns the selected nodes that may be copied, in selection order.
// Output nodes are never copied.
func (h *Handler) copyable(network *domain.NodeNetwork) []domain.NodeID {
	ids := make([]domain.NodeID, 0, len(h.Selected))
	for _, id := range h.Selected {
		if _, ok := network.Nodes[id]; !ok {
			continue
		}
		if network.OutputsContain(id) || network.OriginalOutputsContain(id) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// remap clones the nodes in ids with every link rewritten through idMap.
func (h *Handler) remap(network *domain.NodeNetwork, ids []domain.NodeID, idMap map[domain.NodeID]domain.NodeID) []ClipboardEntry {
	entries := make([]ClipboardEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, ClipboardEntry{
			ID:   idMap[id],
			Node: network.Nodes[id].MapIDs(h.catalog.DefaultInput, idMap),
		})
	}
	return entries
}

func (h *Handler) copySelected(network *domain.NodeNetwork) (Outcome, error) {
	ids := h.copyable(network)
	idMap := make(map[domain.NodeID]domain.NodeID, len(ids))
	for i, id := range ids {
		idMap[id] = domain.NodeID(i)
	}

	text, err := EncodeClipboard(h.remap(network, ids, idMap))
	if err != nil {
		return Outcome{}, err
	}
	var out Outcome
	out.respond(TriggerTextCopy{Text: text})
	return out, nil
}

func (h *Handler) paste(network *domain.NodeNetwork, payload string) (Outcome, error) {
	entries, err := DecodeClipboard(payload)
	if err != nil {
		return Outcome{}, err
	}
	if len(entries) == 0 {
		return Outcome{}, nil
	}

	reserved := make(map[domain.NodeID]bool, len(entries))
	idMap := make(map[domain.NodeID]domain.NodeID, len(entries))
	for _, entry := range entries {
		if _, dup := idMap[entry.ID]; dup {
			return Outcome{}, domain.NewGraphError("paste", entry.ID, "duplicate id in payload", domain.ErrInvalidPayload)
		}
		idMap[entry.ID] = h.freshID(network, reserved)
	}

	staged := domain.NewNetwork()
	for _, entry := range entries {
		staged.Nodes[idMap[entry.ID]] = entry.Node.MapIDs(h.catalog.DefaultInput, idMap)
	}
	if !staged.IsAcyclic() {
		return Outcome{}, domain.NewGraphError("paste", 0, "pasted nodes form a cycle", domain.ErrCyclicNetwork)
	}
	if err := h.validateStaged(staged); err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", domain.ErrInvalidPayload, err)
	}

	newIDs := h.insertStaged(network, staged, domain.IVec2{})

	var out Outcome
	out.respond(StartTransaction{})
	out.follow(SelectNodes{IDs: newIDs}, SendGraph{})
	return out, nil
}

func (h *Handler) duplicateSelected(network *domain.NodeNetwork) Outcome {
	ids := h.copyable(network)
	if len(ids) == 0 {
		return Outcome{}
	}

	reserved := make(map[domain.NodeID]bool, len(ids))
	idMap := make(map[domain.NodeID]domain.NodeID, len(ids))
	for _, id := range ids {
		idMap[id] = h.freshID(network, reserved)
	}

	staged := domain.NewNetwork()
	for _, entry := range h.remap(network, ids, idMap) {
		staged.Nodes[entry.ID] = entry.Node
	}
	newIDs := h.insertStaged(network, staged, duplicateStep)
	h.Selected = newIDs

	var out Outcome
	out.respond(StartTransaction{}, UpdateSelection{Selected: slices.Clone(newIDs)})
	out.follow(SendGraph{})
	return out
}

// validateStaged checks every link between staged nodes. MapIDs already
// replaced links leaving the payload, so each target must be staged too.
func (h *Handler) validateStaged(staged *domain.NodeNetwork) error {
	for _, id := range staged.SortedIDs() {
		for _, input := range staged.Nodes[id].Inputs {
			link, ok := input.(domain.Link)
			if !ok {
				continue
			}
			source, ok := staged.Nodes[link.Target]
			if !ok {
				return domain.NewGraphError("paste", id, "link source is not part of the payload", domain.ErrNodeNotFound)
			}
			if link.OutputIndex < 0 || link.OutputIndex >= h.outputCount(source) {
				return domain.NewGraphError("paste", id, "output index out of range", domain.ErrInvalidOutputIndex)
			}
		}
	}
	return nil
}

// insertStaged offsets the staged nodes by initial, then shifts them together
// by duplicateStep until none overlaps an existing node, and moves them into
// network. Returns the new ids in ascending order.
func (h *Handler) insertStaged(network, staged *domain.NodeNetwork, initial domain.IVec2) []domain.NodeID {
	occupied := make(map[domain.IVec2]bool, len(network.Nodes))
	for _, node := range network.Nodes {
		occupied[node.Position] = true
	}
	collides := func(shift domain.IVec2) bool {
		for _, node := range staged.Nodes {
			if occupied[node.Position.Add(shift)] {
				return true
			}
		}
		return false
	}

	shift := initial
	for collides(shift) {
		shift = shift.Add(duplicateStep)
	}

	ids := staged.SortedIDs()
	for _, id := range ids {
		node := staged.Nodes[id]
		node.Position = node.Position.Add(shift)
		network.Nodes[id] = node
	}
	h.markDirty()
	return ids
}

// freshID draws ids until one is neither live in network nor reserved.
func (h *Handler) freshID(network *domain.NodeNetwork, reserved map[domain.NodeID]bool) domain.NodeID {
	for {
		id := h.ids.NextID()
		if _, live := network.Nodes[id]; live || reserved[id] {
			continue
		}
		if reserved != nil {
			reserved[id] = true
		}
		return id
	}
}
