package editor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/nodegraph/pkg/domain"
)

// ClipboardPrefix marks clipboard text as node data.
const ClipboardPrefix = "nodegraph/nodes: "

// ClipboardEntry is one (id, node) pair of a clipboard payload.
type ClipboardEntry struct {
	ID   domain.NodeID
	Node *domain.DocumentNode
}

// MarshalJSON encodes the entry as a two-element array.
func (e ClipboardEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.ID, e.Node})
}

// UnmarshalJSON decodes a two-element [id, node] array.
func (e *ClipboardEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("expected [id, node], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.ID); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	var node domain.DocumentNode
	if err := json.Unmarshal(pair[1], &node); err != nil {
		return fmt.Errorf("node %d: %w", e.ID, err)
	}
	e.Node = &node
	return nil
}

// EncodeClipboard renders entries as prefixed clipboard text.
func EncodeClipboard(entries []ClipboardEntry) (string, error) {
	if entries == nil {
		entries = []ClipboardEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode clipboard: %w", err)
	}
	return ClipboardPrefix + string(data), nil
}

// DecodeClipboard parses clipboard text. The prefix is optional so hosts may
// strip it before forwarding the payload.
func DecodeClipboard(text string) ([]ClipboardEntry, error) {
	payload := strings.TrimPrefix(strings.TrimSpace(text), ClipboardPrefix)
	var entries []ClipboardEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, domain.NewGraphError("paste", 0, "invalid node data: "+err.Error(), domain.ErrInvalidPayload)
	}
	for _, entry := range entries {
		if p, ok := entry.Node.Implementation.(domain.Primitive); ok && p.Type == "" {
			return nil, domain.NewGraphError("paste", entry.ID, "node has no type", domain.ErrInvalidPayload)
		}
	}
	return entries, nil
}
