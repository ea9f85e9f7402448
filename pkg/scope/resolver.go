// Package scope resolves variable reference paths against a sequence's
// bound trigger events and declared variables.
package scope

import (
	"fmt"
	"strings"

	"github.com/sequor-io/sequor/pkg/models"
)

// Reference roots. These two namespaces are the only valid roots; anything
// else fails resolution.
const (
	EventRoot    = "@event."
	WorkflowRoot = "@workflow."
)

// Origin tags where a resolved reference's value comes from at execution
// time.
type Origin string

const (
	OriginEvent    Origin = "event"    // Field of the trigger event payload
	OriginWorkflow Origin = "workflow" // Sequence-scoped variable
)

// Reference is one resolvable path, tagged with its origin and declared
// type. The resolver exposes the merged list of these to populate selection
// choices.
type Reference struct {
	Path        string           `json:"path"`  // Full reference, e.g. "@event.document_id"
	Label       string           `json:"label"` // Display name, falls back to the field name
	Origin      Origin           `json:"origin"`
	Type        models.FieldType `json:"type"`
	Description string           `json:"description,omitempty"`
	EventName   string           `json:"event_name,omitempty"` // First event declaring the field
}

// Resolver classifies reference strings for one sequence's scope. Built
// once per editing session from the bound trigger events and declared
// variables; rebuild after either changes.
type Resolver struct {
	byPath  map[string]Reference
	ordered []Reference
}

// NewResolver merges the field schemas of all bound trigger events with the
// sequence's declared variables. Event field collisions across events are
// resolved first-seen-wins, in event binding order.
func NewResolver(events []models.EventDescriptor, variables []*models.Variable) *Resolver {
	r := &Resolver{byPath: make(map[string]Reference)}

	for _, event := range events {
		for _, field := range event.Fields {
			path := field.Path
			if !strings.HasPrefix(path, EventRoot) {
				path = EventRoot + path
			}

			if _, seen := r.byPath[path]; seen {
				continue
			}

			label := field.Label
			if label == "" {
				label = strings.TrimPrefix(path, EventRoot)
			}

			ref := Reference{
				Path:        path,
				Label:       label,
				Origin:      OriginEvent,
				Type:        field.DeclaredType(),
				Description: field.Description,
				EventName:   event.Name,
			}

			r.byPath[path] = ref
			r.ordered = append(r.ordered, ref)
		}
	}

	for _, variable := range variables {
		path := WorkflowRoot + variable.Name

		if _, seen := r.byPath[path]; seen {
			continue
		}

		fieldType := models.FieldTypeString
		if variable.Kind == models.VariableKindArray {
			fieldType = models.FieldTypeArray
		}

		ref := Reference{
			Path:        path,
			Label:       variable.Name,
			Origin:      OriginWorkflow,
			Type:        fieldType,
			Description: variable.Description,
		}

		r.byPath[path] = ref
		r.ordered = append(r.ordered, ref)
	}

	return r
}

// ResolverForSequence builds the resolver from a persisted sequence: the
// trigger node's bound events merged with the declared variables.
func ResolverForSequence(seq *models.Sequence) *Resolver {
	var events []models.EventDescriptor

	if trigger, ok := seq.TriggerNode(); ok {
		if config, ok := trigger.Config.(*models.TriggerConfig); ok {
			events = config.Events
		}
	}

	return NewResolver(events, seq.Variables)
}

// Resolve classifies a reference string into exactly one origin, failing
// with UnknownReferenceError when the root is unrecognized or the remainder
// does not exist in scope.
func (r *Resolver) Resolve(reference string) (Reference, error) {
	switch {
	case strings.HasPrefix(reference, EventRoot):
		if ref, ok := r.byPath[reference]; ok {
			return ref, nil
		}

		return Reference{}, &UnknownReferenceError{
			Reference: reference,
			Reason:    fmt.Sprintf("event field %q is not declared by any bound trigger event", strings.TrimPrefix(reference, EventRoot)),
		}
	case strings.HasPrefix(reference, WorkflowRoot):
		if ref, ok := r.byPath[reference]; ok {
			return ref, nil
		}

		return Reference{}, &UnknownReferenceError{
			Reference: reference,
			Reason:    fmt.Sprintf("variable %q is not declared in this sequence", strings.TrimPrefix(reference, WorkflowRoot)),
		}
	default:
		return Reference{}, &UnknownReferenceError{
			Reference: reference,
			Reason:    "reference must be rooted at @event. or @workflow.",
		}
	}
}

// References returns the merged, de-duplicated list of all resolvable
// references in declaration order: event fields first, then variables.
func (r *Resolver) References() []Reference {
	out := make([]Reference, len(r.ordered))
	copy(out, r.ordered)

	return out
}
