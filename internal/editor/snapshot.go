package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/ports"
)

// Snapshot is the graph as presented to the UI.
type Snapshot struct {
	Nodes []FrontendNode `json:"nodes"`
	Links []FrontendLink `json:"links"`
}

// FrontendSlot is one input or output connector.
type FrontendSlot struct {
	DataType domain.DataType `json:"dataType"`
	Name     string          `json:"name"`
}

// FrontendNode is one node of a Snapshot.
type FrontendNode struct {
	ID             domain.NodeID  `json:"id"`
	DisplayName    string         `json:"displayName"`
	PrimaryInput   *FrontendSlot  `json:"primaryInput,omitempty"`
	ExposedInputs  []FrontendSlot `json:"exposedInputs"`
	PrimaryOutput  *FrontendSlot  `json:"primaryOutput,omitempty"`
	ExposedOutputs []FrontendSlot `json:"exposedOutputs"`
	Position       domain.IVec2   `json:"position"`
	Disabled       bool           `json:"disabled"`
	Previewed      bool           `json:"previewed"`
	Thumbnail      string         `json:"thumbnailSvg,omitempty"`
}

// FrontendLink connects an output to an exposed input. LinkEndInputIndex
// counts exposed inputs only.
type FrontendLink struct {
	LinkStart            domain.NodeID `json:"linkStart"`
	LinkStartOutputIndex int           `json:"linkStartOutputIndex"`
	LinkEnd              domain.NodeID `json:"linkEnd"`
	LinkEndInputIndex    int           `json:"linkEndInputIndex"`
}

// Snapshot builds the snapshot of the active network.
func (h *Handler) Snapshot(ctx context.Context, root *domain.NodeNetwork) (Snapshot, error) {
	network, err := root.NestedNetwork(h.NestedPath)
	if err != nil {
		return Snapshot{}, err
	}
	return h.buildSnapshot(ctx, network), nil
}

func (h *Handler) buildSnapshot(ctx context.Context, network *domain.NodeNetwork) Snapshot {
	snapshot := Snapshot{Nodes: []FrontendNode{}, Links: []FrontendLink{}}
	previewing := network.PreviousOutputs != nil

	for _, id := range network.SortedIDs() {
		node := network.Nodes[id]
		inputs, outputs := h.slots(node)

		frontend := FrontendNode{
			ID:             id,
			DisplayName:    node.Name,
			ExposedInputs:  []FrontendSlot{},
			ExposedOutputs: []FrontendSlot{},
			Position:       node.Position,
			Disabled:       network.IsDisabled(id),
			Previewed:      previewing && len(network.Outputs) > 0 && network.Outputs[0].Node == id,
			Thumbnail:      h.thumbnail(ctx, id),
		}
		for i, input := range node.Inputs {
			if !input.IsExposed() {
				continue
			}
			if i == 0 {
				primary := inputs[0]
				frontend.PrimaryInput = &primary
				continue
			}
			frontend.ExposedInputs = append(frontend.ExposedInputs, inputs[i])
		}
		if len(outputs) > 0 {
			primary := outputs[0]
			frontend.PrimaryOutput = &primary
			frontend.ExposedOutputs = append(frontend.ExposedOutputs, outputs[1:]...)
		}
		snapshot.Nodes = append(snapshot.Nodes, frontend)

		position := 0
		for _, input := range node.Inputs {
			if !input.IsExposed() {
				continue
			}
			if link, ok := input.(domain.Link); ok {
				snapshot.Links = append(snapshot.Links, FrontendLink{
					LinkStart:            link.Target,
					LinkStartOutputIndex: link.OutputIndex,
					LinkEnd:              id,
					LinkEndInputIndex:    position,
				})
			}
			position++
		}
	}
	return snapshot
}

// slots describes every input and output of node. Types missing from the
// catalog get general slots so the node can still be shown and deleted.
func (h *Handler) slots(node *domain.DocumentNode) ([]FrontendSlot, []FrontendSlot) {
	inputs := make([]FrontendSlot, len(node.Inputs))
	described := h.catalog.InputSlots(node)
	for i := range inputs {
		if i < len(described) {
			inputs[i] = FrontendSlot{DataType: described[i].DataType, Name: described[i].Name}
		} else {
			inputs[i] = FrontendSlot{DataType: domain.DataTypeGeneral, Name: fmt.Sprintf("In %d", i)}
		}
	}

	var outputs []FrontendSlot
	for _, slot := range h.catalog.OutputSlots(node) {
		outputs = append(outputs, FrontendSlot{DataType: slot.DataType, Name: slot.Name})
	}
	if outputs == nil {
		count := 1
		if nested := node.Network(); nested != nil {
			count = max(len(nested.Outputs), 1)
		}
		for i := 0; i < count; i++ {
			outputs = append(outputs, FrontendSlot{DataType: domain.DataTypeGeneral, Name: fmt.Sprintf("Out %d", i)})
		}
	}
	return inputs, outputs
}

func (h *Handler) thumbnail(ctx context.Context, id domain.NodeID) string {
	if h.thumbnails == nil {
		return ""
	}
	key := ports.ThumbnailKey{
		Document: h.document,
		Layer:    h.LayerPath,
		Node:     append(slices.Clone(h.NestedPath), id),
	}
	svg, err := h.thumbnails.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrThumbnailNotFound) {
			h.logger.Warn("failed to load thumbnail", "node", id, "error", err)
		}
		return ""
	}
	return svg
}
