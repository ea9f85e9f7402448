package scope

import (
	"errors"
	"fmt"
)

// ErrUnknownReference is the sentinel all failed resolutions match.
var ErrUnknownReference = errors.New("unknown variable reference")

// UnknownReferenceError reports a reference that does not resolve within
// the current scope.
type UnknownReferenceError struct {
	Reference string
	Reason    string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown variable reference %q: %s", e.Reference, e.Reason)
}

func (e *UnknownReferenceError) Is(target error) bool {
	return target == ErrUnknownReference
}

// IsUnknownReference checks if an error indicates a failed reference
// resolution.
func IsUnknownReference(err error) bool {
	return errors.Is(err, ErrUnknownReference)
}
