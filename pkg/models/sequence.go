// Package models defines the core domain models for event-triggered sequence automation.
package models

import (
	"errors"
	"fmt"
	"regexp"
)

// SequenceStatus represents the lifecycle state of a sequence.
type SequenceStatus string

const (
	SequenceStatusDraft  SequenceStatus = "draft"  // Editable, not picked up by the execution engine
	SequenceStatusActive SequenceStatus = "active" // Published, executable
)

// Sequence is the persisted automation definition: trigger events, variables
// and the node graph. Identity is ID once persisted, transient before.
type Sequence struct {
	ID            string         `json:"id,omitempty"`
	Name          string         `json:"name"           validate:"required,min=3"`
	Version       string         `json:"version"        validate:"required"` // Decimal string, e.g. "1.0"
	Status        SequenceStatus `json:"status"`
	TriggerEvents []string       `json:"trigger_events"` // Ordered event references
	Variables     []*Variable    `json:"variables"`
	Nodes         []*Node        `json:"flow_nodes"`
	Edges         []*Edge        `json:"flow_edges"`
}

// VariableKind distinguishes scalar from list-valued sequence variables.
type VariableKind string

const (
	VariableKindSingle VariableKind = "single"
	VariableKindArray  VariableKind = "array"
)

var variableNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Variable is a sequence-scoped variable, referenced as "@workflow.<name>".
type Variable struct {
	ID           string       `json:"id"`
	Name         string       `json:"name" validate:"required"`
	Kind         VariableKind `json:"type"`
	DefaultValue *string      `json:"defaultValue,omitempty"`
	Description  string       `json:"description,omitempty"`
}

// Validate checks the variable's structural invariants.
func (v *Variable) Validate() error {
	if v.Name == "" {
		return errors.New("variable name is required")
	}

	if !variableNamePattern.MatchString(v.Name) {
		return fmt.Errorf("variable name %q must start with a letter and contain only letters, numbers, and underscores", v.Name)
	}

	if v.Kind != VariableKindSingle && v.Kind != VariableKindArray {
		return fmt.Errorf("variable %q has unknown kind %q", v.Name, v.Kind)
	}

	return nil
}

// VariableByName looks up a declared variable by name.
func (s *Sequence) VariableByName(name string) (*Variable, bool) {
	for _, v := range s.Variables {
		if v.Name == name {
			return v, true
		}
	}

	return nil, false
}

// NodeByID looks up a node by its ID.
func (s *Sequence) NodeByID(id string) (*Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}

	return nil, false
}

// TriggerNode returns the singular trigger node, if present.
func (s *Sequence) TriggerNode() (*Node, bool) {
	for _, n := range s.Nodes {
		if n.Kind == NodeKindTrigger {
			return n, true
		}
	}

	return nil, false
}
