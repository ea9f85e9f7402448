// Package services provides the sequence management operations exposed over
// the editing API, with standardized error types.
package services

import (
	"errors"
	"fmt"

	"github.com/sequor-io/sequor/pkg/persistence"
	"github.com/sequor-io/sequor/pkg/scope"
	"github.com/sequor-io/sequor/pkg/sequence"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrSequenceNameRequired = errors.New("sequence name is required")
	ErrSequenceNil          = errors.New("sequence cannot be nil")
	ErrTriggerNodeRequired  = errors.New("sequence must have a trigger node")

	// Not found (404).
	ErrSequenceNotFound = persistence.ErrSequenceNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError checks if an error should map to HTTP 400: a malformed
// request, a structurally incomplete node, or a dangling variable
// reference. Either blocks the save.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrSequenceNameRequired) ||
		errors.Is(err, ErrSequenceNil) ||
		errors.Is(err, ErrTriggerNodeRequired) ||
		sequence.IsValidationFailure(err) ||
		scope.IsUnknownReference(err)
}

// IsNotFoundError checks if an error should map to HTTP 404.
func IsNotFoundError(err error) bool {
	return persistence.IsSequenceNotFound(err)
}
