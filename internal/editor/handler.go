package editor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/nodegraph/internal/logging"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/idgen"
	"github.com/aretw0/nodegraph/pkg/observability"
	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/google/uuid"
)

// Catalog is the subset of the node type registry the editor needs.
type Catalog interface {
	NewNode(name string, position domain.IVec2) (*domain.DocumentNode, error)
	DefaultInput(node *domain.DocumentNode, index int) (domain.NodeInput, bool)
	InputSlots(node *domain.DocumentNode) []registry.InputSlot
	OutputSlots(node *domain.DocumentNode) []registry.OutputSlot
	Types() []registry.TypeInfo
}

// Outcome is what processing one request produced: follow-up requests to be
// queued after it and responses for the collaborators.
type Outcome struct {
	Requests  []Request
	Responses []Response
}

func (o *Outcome) follow(reqs ...Request) {
	o.Requests = append(o.Requests, reqs...)
}

func (o *Outcome) respond(resps ...Response) {
	o.Responses = append(o.Responses, resps...)
}

// Handler applies edit requests to the active network of a document.
// It is not safe for concurrent use; callers serialize requests per document.
type Handler struct {
	catalog    Catalog
	ids        ports.IDGenerator
	logger     *slog.Logger
	metrics    *observability.Metrics
	thumbnails ports.ThumbnailStore
	document   uuid.UUID

	// LayerPath identifies the layer whose network is being edited.
	LayerPath []uint64
	// NestedPath leads from the layer network to the active network.
	NestedPath []domain.NodeID
	// Selected holds the selected nodes of the active network.
	Selected []domain.NodeID

	dirty bool
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger configures a logger for the Handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithIDGenerator sets the source of fresh node ids.
func WithIDGenerator(ids ports.IDGenerator) Option {
	return func(h *Handler) {
		h.ids = ids
	}
}

// WithMetrics enables request counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithThumbnails attaches the thumbnail cache of a document. Snapshots embed
// cached thumbnails and rerender requests invalidate them.
func WithThumbnails(store ports.ThumbnailStore, document uuid.UUID) Option {
	return func(h *Handler) {
		h.thumbnails = store
		h.document = document
	}
}

// WithLayerPath sets the edited layer.
func WithLayerPath(path []uint64) Option {
	return func(h *Handler) {
		h.LayerPath = slices.Clone(path)
	}
}

// NewHandler creates a Handler editing the document network at the root.
func NewHandler(catalog Catalog, opts ...Option) *Handler {
	h := &Handler{
		catalog: catalog,
		ids:     idgen.NewRandom(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Process applies one request to root and returns its follow-ups and responses.
// On error the network is left unchanged.
func (h *Handler) Process(ctx context.Context, root *domain.NodeNetwork, req Request) (Outcome, error) {
	switch r := req.(type) {
	case Init:
		var out Outcome
		out.respond(UpdateNodeTypes{Types: h.catalog.Types()})
		return out, nil
	case ExitNestedNetwork:
		return h.exitNested(r), nil
	case SelectNodes:
		return h.selectNodes(r), nil
	}

	network, err := root.NestedNetwork(h.NestedPath)
	if err != nil {
		return Outcome{}, err
	}

	h.dirty = false
	out, err := h.apply(ctx, root, network, req)
	if h.dirty {
		network.Touch()
		if network != root {
			root.Touch()
		}
		h.dirty = false
	}
	return out, err
}

func (h *Handler) apply(ctx context.Context, root, network *domain.NodeNetwork, req Request) (Outcome, error) {
	switch r := req.(type) {
	case CreateNode:
		return h.createNode(network, r)
	case InsertNode:
		return Outcome{}, h.insertNode(network, r.ID, r.Node)
	case DeleteNode:
		return h.deleteNodes(network, []domain.NodeID{r.ID})
	case DeleteNodes:
		return h.deleteNodes(network, r.IDs)
	case DeleteSelectedNodes:
		var out Outcome
		out.respond(StartTransaction{})
		out.follow(DeleteNodes{IDs: slices.Clone(h.Selected)})
		return out, nil
	case ConnectNodesByLink:
		return h.connect(network, r)
	case DisconnectNodes:
		return h.disconnect(network, r)
	case ExposeInput:
		return h.exposeInput(network, r)
	case SetInputValue:
		return h.setInputValue(network, r)
	case SetNodeInput:
		return Outcome{}, h.setNodeInput(network, r)
	case MoveSelectedNodes:
		return h.moveSelected(network, r), nil
	case ShiftNode:
		return h.shiftNode(network, r.ID)
	case ToggleHidden:
		var out Outcome
		out.respond(StartTransaction{})
		out.follow(ToggleHiddenImpl{})
		return out, nil
	case ToggleHiddenImpl:
		return h.toggleHidden(network), nil
	case TogglePreview:
		var out Outcome
		out.respond(StartTransaction{})
		out.follow(TogglePreviewImpl(r))
		return out, nil
	case TogglePreviewImpl:
		return h.togglePreview(network, r.ID)
	case Copy:
		return h.copySelected(network)
	case Cut:
		var out Outcome
		out.follow(Copy{}, DeleteSelectedNodes{})
		return out, nil
	case PasteNodes:
		return h.paste(network, r.Payload)
	case DuplicateSelectedNodes:
		return h.duplicateSelected(network), nil
	case EnterNestedNetwork:
		return h.enterNested(network, r.ID)
	case SendGraph:
		return h.sendGraph(ctx, root, network, r.ShouldRerender), nil
	default:
		return Outcome{}, fmt.Errorf("unsupported request %T", req)
	}
}

func (h *Handler) markDirty() {
	h.dirty = true
}

func (h *Handler) selectNodes(r SelectNodes) Outcome {
	selected := make([]domain.NodeID, 0, len(r.IDs))
	for _, id := range r.IDs {
		if !slices.Contains(selected, id) {
			selected = append(selected, id)
		}
	}
	h.Selected = selected

	var out Outcome
	out.respond(UpdateSelection{Selected: slices.Clone(selected)})
	return out
}

func (h *Handler) enterNested(network *domain.NodeNetwork, id domain.NodeID) (Outcome, error) {
	node, ok := network.Nodes[id]
	if !ok {
		return Outcome{}, domain.NewGraphError("enter", id, "node does not exist", domain.ErrNodeNotFound)
	}
	if node.Network() == nil {
		return Outcome{}, domain.NewGraphError("enter", id, "node has no nested network", domain.ErrNoActiveNetwork)
	}
	h.NestedPath = append(h.NestedPath, id)
	h.Selected = nil

	var out Outcome
	out.respond(UpdateSelection{})
	out.follow(SendGraph{})
	return out, nil
}

func (h *Handler) exitNested(r ExitNestedNetwork) Outcome {
	depth := min(max(r.Depth, 0), len(h.NestedPath))
	h.NestedPath = h.NestedPath[:len(h.NestedPath)-depth]
	h.Selected = nil

	var out Outcome
	out.respond(UpdateSelection{})
	out.follow(SendGraph{})
	return out
}

func (h *Handler) sendGraph(ctx context.Context, root, network *domain.NodeNetwork, rerender bool) Outcome {
	if rerender && h.thumbnails != nil {
		if err := h.thumbnails.Invalidate(ctx, h.document, h.LayerPath); err != nil {
			h.logger.Warn("failed to invalidate thumbnails", "document", h.document, "error", err)
		}
	}

	var out Outcome
	out.respond(UpdateNodeGraph{Snapshot: h.buildSnapshot(ctx, network)})
	if rerender {
		out.respond(Rerender{Generation: root.Generation})
	}
	return out
}

// Breadcrumb returns the names along the nested path, starting with "Document".
func (h *Handler) Breadcrumb(root *domain.NodeNetwork) []string {
	crumbs := []string{"Document"}
	network := root
	for _, id := range h.NestedPath {
		node, ok := network.Nodes[id]
		if !ok || node.Network() == nil {
			break
		}
		crumbs = append(crumbs, node.Name)
		network = node.Network()
	}
	return crumbs
}

// SelectionActions describes the hide and preview buttons for the current selection.
type SelectionActions struct {
	HideLabel      string `json:"hideLabel"`
	HideEnabled    bool   `json:"hideEnabled"`
	PreviewLabel   string `json:"previewLabel"`
	PreviewEnabled bool   `json:"previewEnabled"`
}

// SelectionActions computes the button state for the current selection.
func (h *Handler) SelectionActions(root *domain.NodeNetwork) SelectionActions {
	actions := SelectionActions{HideLabel: "Hide", PreviewLabel: "Preview"}
	network, err := root.NestedNetwork(h.NestedPath)
	if err != nil {
		return actions
	}

	for _, id := range h.Selected {
		if network.IsDisabled(id) {
			actions.HideLabel = "Show"
		}
		if _, ok := network.Nodes[id]; ok && !network.IsBoundary(id) {
			actions.HideEnabled = true
		}
	}

	if len(h.Selected) == 1 {
		id := h.Selected[0]
		if _, ok := network.Nodes[id]; ok {
			actions.PreviewEnabled = true
			if network.OutputsContain(id) && network.PreviousOutputs != nil {
				actions.PreviewLabel = "End Preview"
			}
		}
	}
	return actions
}
