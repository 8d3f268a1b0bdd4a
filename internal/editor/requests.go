package editor

import "github.com/aretw0/nodegraph/pkg/domain"

// Request is one edit command consumed from the host UI layer.
type Request interface {
	// Name identifies the request kind in logs and metrics.
	Name() string
}

// Init announces the available node types to the UI.
type Init struct{}

// CreateNode builds a node of a registered type from its defaults and inserts it.
// A nil ID asks the editor to generate one.
type CreateNode struct {
	ID       *domain.NodeID `json:"id,omitempty"`
	Type     string         `json:"type"`
	Position domain.IVec2   `json:"position"`
}

// InsertNode adds a fully built node under a caller-chosen id.
type InsertNode struct {
	ID   domain.NodeID        `json:"id"`
	Node *domain.DocumentNode `json:"node"`
}

// DeleteNode removes one node after rewriting every link that targets it.
type DeleteNode struct {
	ID domain.NodeID `json:"id"`
}

// DeleteNodes removes several nodes; each is validated on its own.
type DeleteNodes struct {
	IDs []domain.NodeID `json:"ids"`
}

// DeleteSelectedNodes removes the current selection.
type DeleteSelectedNodes struct{}

// ConnectNodesByLink links output OutputIndex of OutputNode into the exposed
// input at InputPosition of InputNode. The position counts exposed inputs only.
type ConnectNodesByLink struct {
	OutputNode    domain.NodeID `json:"outputNode"`
	OutputIndex   int           `json:"outputIndex"`
	InputNode     domain.NodeID `json:"inputNode"`
	InputPosition int           `json:"inputPosition"`
}

// DisconnectNodes resets the exposed input at InputPosition to its default.
type DisconnectNodes struct {
	Node          domain.NodeID `json:"node"`
	InputPosition int           `json:"inputPosition"`
}

// ExposeInput shows or hides the input at Index (a real input index).
type ExposeInput struct {
	Node    domain.NodeID `json:"node"`
	Index   int           `json:"index"`
	Exposed bool          `json:"exposed"`
}

// SetInputValue stores a literal value into the input at Index.
type SetInputValue struct {
	Node  domain.NodeID      `json:"node"`
	Index int                `json:"index"`
	Value domain.TaggedValue `json:"value"`
}

// SetNodeInput replaces the input at Index. It is the primitive behind
// connect, disconnect and expose.
type SetNodeInput struct {
	Node  domain.NodeID    `json:"node"`
	Index int              `json:"index"`
	Input domain.NodeInput `json:"input"`
}

// MoveSelectedNodes translates every selected node.
type MoveSelectedNodes struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// ShiftNode spaces a node and its descendants away from their neighbours.
type ShiftNode struct {
	ID domain.NodeID `json:"id"`
}

// ToggleHidden flips the disabled state of the selection as a group.
type ToggleHidden struct{}

// ToggleHiddenImpl applies ToggleHidden after the transaction marker.
type ToggleHiddenImpl struct{}

// TogglePreview makes a node the primary output, or ends the preview.
type TogglePreview struct {
	ID domain.NodeID `json:"id"`
}

// TogglePreviewImpl applies TogglePreview after the transaction marker.
type TogglePreviewImpl struct {
	ID domain.NodeID `json:"id"`
}

// Copy serializes the selection to the clipboard.
type Copy struct{}

// Cut copies the selection and deletes it.
type Cut struct{}

// PasteNodes inserts nodes from a clipboard payload.
type PasteNodes struct {
	Payload string `json:"payload"`
}

// DuplicateSelectedNodes clones the selection next to itself.
type DuplicateSelectedNodes struct{}

// SelectNodes replaces the selection.
type SelectNodes struct {
	IDs []domain.NodeID `json:"ids"`
}

// EnterNestedNetwork opens the nested network of a node (double click).
type EnterNestedNetwork struct {
	ID domain.NodeID `json:"id"`
}

// ExitNestedNetwork leaves Depth levels of nesting.
type ExitNestedNetwork struct {
	Depth int `json:"depth"`
}

// SendGraph publishes a snapshot of the active network, optionally requesting
// a rerender of the document.
type SendGraph struct {
	ShouldRerender bool `json:"shouldRerender"`
}

func (Init) Name() string                   { return "Init" }
func (CreateNode) Name() string             { return "CreateNode" }
func (InsertNode) Name() string             { return "InsertNode" }
func (DeleteNode) Name() string             { return "DeleteNode" }
func (DeleteNodes) Name() string            { return "DeleteNodes" }
func (DeleteSelectedNodes) Name() string    { return "DeleteSelectedNodes" }
func (ConnectNodesByLink) Name() string     { return "ConnectNodesByLink" }
func (DisconnectNodes) Name() string        { return "DisconnectNodes" }
func (ExposeInput) Name() string            { return "ExposeInput" }
func (SetInputValue) Name() string          { return "SetInputValue" }
func (SetNodeInput) Name() string           { return "SetNodeInput" }
func (MoveSelectedNodes) Name() string      { return "MoveSelectedNodes" }
func (ShiftNode) Name() string              { return "ShiftNode" }
func (ToggleHidden) Name() string           { return "ToggleHidden" }
func (ToggleHiddenImpl) Name() string       { return "ToggleHiddenImpl" }
func (TogglePreview) Name() string          { return "TogglePreview" }
func (TogglePreviewImpl) Name() string      { return "TogglePreviewImpl" }
func (Copy) Name() string                   { return "Copy" }
func (Cut) Name() string                    { return "Cut" }
func (PasteNodes) Name() string             { return "PasteNodes" }
func (DuplicateSelectedNodes) Name() string { return "DuplicateSelectedNodes" }
func (SelectNodes) Name() string            { return "SelectNodes" }
func (EnterNestedNetwork) Name() string     { return "EnterNestedNetwork" }
func (ExitNestedNetwork) Name() string      { return "ExitNestedNetwork" }
func (SendGraph) Name() string              { return "SendGraph" }
