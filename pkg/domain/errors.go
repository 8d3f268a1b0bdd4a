package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveNetwork is returned when a nested path cannot be resolved.
	ErrNoActiveNetwork = errors.New("no active network")

	// ErrNodeNotFound is returned when an operation names a node absent from the network.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeExists is returned when inserting under an id that is already live.
	ErrNodeExists = errors.New("node id already in use")

	// ErrBoundaryNode is returned when deleting or disabling an input or output node.
	ErrBoundaryNode = errors.New("node is an input or output of the network")

	// ErrInvalidInputIndex is returned when an input position does not resolve to a real input.
	ErrInvalidInputIndex = errors.New("invalid input index")

	// ErrInvalidOutputIndex is returned when a link names an output the source node does not have.
	ErrInvalidOutputIndex = errors.New("invalid output index")

	// ErrCyclicNetwork is returned when the link graph contains a cycle.
	ErrCyclicNetwork = errors.New("cyclic dependency detected")

	// ErrUnknownNodeType is returned when a type name is not in the catalog.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrTypeMismatch is returned when a boxed value does not have the expected kind.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidPayload is returned when external data (clipboard, files) cannot be decoded.
	ErrInvalidPayload = errors.New("invalid payload")
)

// GraphError is a structural-invariant violation with context.
type GraphError struct {
	Op      string // operation that failed, e.g. "delete"
	NodeID  NodeID
	Message string
	Err     error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	return fmt.Sprintf("%s node %d: %s", e.Op, e.NodeID, e.Message)
}

// Unwrap returns the underlying sentinel.
func (e *GraphError) Unwrap() error {
	return e.Err
}

// NewGraphError creates a GraphError.
func NewGraphError(op string, id NodeID, message string, err error) *GraphError {
	return &GraphError{Op: op, NodeID: id, Message: message, Err: err}
}

// TypeMismatchError reports a failed downcast of a boxed value.
type TypeMismatchError struct {
	Expected ValueKind
	Got      ValueKind
	Context  string // e.g. "Exposure input 1"
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: expected %s, got %s", e.Context, e.Expected, e.Got)
	}
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
}

// Unwrap makes errors.Is(err, ErrTypeMismatch) hold.
func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// As converts a boxed value to T, reporting a TypeMismatchError instead of panicking.
func As[T TaggedValue](v TaggedValue) (T, error) {
	typed, ok := v.(T)
	if !ok {
		var zero T
		got := ValueKind("nil")
		if v != nil {
			got = v.Kind()
		}
		return zero, &TypeMismatchError{Expected: zero.Kind(), Got: got}
	}
	return typed, nil
}
