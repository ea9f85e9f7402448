// Package persistence provides standardized error types for persistence
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrSequenceNotFound indicates a sequence was not found by the given
	// identifier.
	ErrSequenceNotFound = errors.New("sequence not found")

	// ErrSequenceAlreadyExists indicates a sequence with the same
	// identifier already exists.
	ErrSequenceAlreadyExists = errors.New("sequence already exists")

	// ErrInvalidSequenceStatus indicates an invalid sequence status was
	// provided.
	ErrInvalidSequenceStatus = errors.New("invalid sequence status")

	// ErrNodeNotFound indicates a node was not found by the given
	// identifier.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound indicates an edge was not found by the given
	// identifier.
	ErrEdgeNotFound = errors.New("edge not found")
)

// SequenceError wraps sequence-related errors with additional context.
type SequenceError struct {
	Op         string // Operation being performed (e.g., "SequenceByID", "Save")
	SequenceID string // Sequence ID if applicable
	Err        error  // Underlying error
	Message    string // Additional context message
}

func (e *SequenceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for sequence %s: %s (%v)", e.Op, e.SequenceID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for sequence %s: %v", e.Op, e.SequenceID, e.Err)
}

func (e *SequenceError) Unwrap() error {
	return e.Err
}

func (e *SequenceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSequenceError creates a new sequence error with context.
func NewSequenceError(op, sequenceID string, err error) *SequenceError {
	return &SequenceError{
		Op:         op,
		SequenceID: sequenceID,
		Err:        err,
	}
}

// IsSequenceNotFound checks if an error indicates a sequence was not found.
func IsSequenceNotFound(err error) bool {
	return errors.Is(err, ErrSequenceNotFound)
}

// IsNodeNotFound checks if an error indicates a node was not found.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}
