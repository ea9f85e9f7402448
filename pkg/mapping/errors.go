package mapping

import (
	"errors"
	"fmt"

	"github.com/sequor-io/sequor/pkg/models"
)

var (
	// ErrUnmappedMandatory indicates a mandatory parameter has no usable
	// mapping.
	errUnmappedMandatory = errors.New("mandatory parameter unmapped")

	// errUndeclaredParameter indicates a mapping targets a parameter the
	// action does not declare.
	errUndeclaredParameter = errors.New("undeclared parameter")

	// errEmptyExpression indicates a DSL-mode group with mandatory
	// parameters carries no expression.
	errEmptyExpression = errors.New("empty DSL expression")
)

// Exported sentinels for callers gating save on mapping validity.
var (
	ErrUnmappedMandatory   = errUnmappedMandatory
	ErrUndeclaredParameter = errUndeclaredParameter
	ErrEmptyExpression     = errEmptyExpression
)

// GroupError wraps a validation failure with the parameter group it
// occurred in.
type GroupError struct {
	Group models.ParameterGroup
	Err   error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("%s parameters: %v", e.Group, e.Err)
}

func (e *GroupError) Unwrap() error {
	return e.Err
}
