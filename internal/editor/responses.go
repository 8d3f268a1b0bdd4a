package editor

import (
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
)

// Response is a message from the editor to its collaborators (UI, history, renderer).
type Response interface {
	isResponse()
}

// StartTransaction marks the start of a structural edit so the history
// collaborator can group it atomically.
type StartTransaction struct{}

// UpdateNodeGraph carries a fresh snapshot of the active network.
type UpdateNodeGraph struct {
	Snapshot Snapshot `json:"snapshot"`
}

// UpdateSelection carries the new selection.
type UpdateSelection struct {
	Selected []domain.NodeID `json:"selected"`
}

// TriggerTextCopy asks the host to put Text on the clipboard.
type TriggerTextCopy struct {
	Text string `json:"text"`
}

// Rerender asks for a new evaluation of the network at Generation.
type Rerender struct {
	Generation uint64 `json:"generation"`
}

// DisplayError asks the host to show an error dialog.
type DisplayError struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateNodeTypes lists the node types the UI may create.
type UpdateNodeTypes struct {
	Types []registry.TypeInfo `json:"types"`
}

func (StartTransaction) isResponse() {}
func (UpdateNodeGraph) isResponse()  {}
func (UpdateSelection) isResponse()  {}
func (TriggerTextCopy) isResponse()  {}
func (Rerender) isResponse()         {}
func (DisplayError) isResponse()     {}
func (UpdateNodeTypes) isResponse()  {}
