package sequence

import (
	"errors"
	"fmt"
)

var (
	// ErrTriggerProtected is returned when an operation would remove or
	// duplicate the singular trigger node.
	ErrTriggerProtected = errors.New("trigger node cannot be removed or duplicated")

	// ErrNodeNotFound is returned when an operation targets a node ID
	// absent from the graph.
	ErrNodeNotFound = errors.New("node not found in sequence")

	// ErrEdgeNotFound is returned when an operation targets an edge ID
	// absent from the graph.
	ErrEdgeNotFound = errors.New("edge not found in sequence")

	// ErrInvalidPort is returned when an edge names an output port its
	// source node does not expose.
	ErrInvalidPort = errors.New("source node does not expose the named output port")

	// ErrDuplicateEdge is returned when an identical connection already
	// exists.
	ErrDuplicateEdge = errors.New("edge already exists")

	// ErrMergeFanOut is returned when a merge node would gain a second
	// outgoing edge. A merge is many-in, exactly one-out.
	ErrMergeFanOut = errors.New("merge node allows a single outgoing edge")

	// ErrKindMismatch is returned when a configuration payload is applied
	// to a node of a different kind.
	ErrKindMismatch = errors.New("configuration does not match node kind")

	// ErrNodeUnconfigurable is returned when a node carries no usable kind
	// tag. The node stays on the canvas but cannot be configured.
	ErrNodeUnconfigurable = errors.New("node is missing its kind tag and cannot be configured")

	// ErrDuplicateVariable is returned when a variable name collides with
	// an existing declaration.
	ErrDuplicateVariable = errors.New("variable name already declared")

	// ErrVariableNotFound is returned when an operation targets an unknown
	// variable ID.
	ErrVariableNotFound = errors.New("variable not found in sequence")
)

// NodeError attaches the offending node ID to a validation failure so the
// operator can be pointed at the step that blocks the save.
type NodeError struct {
	NodeID string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q: %s", e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// NewNodeError wraps err with the node it concerns.
func NewNodeError(nodeID string, err error) *NodeError {
	return &NodeError{NodeID: nodeID, Err: err}
}
