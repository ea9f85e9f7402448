package models

import (
	"encoding/json"
	"fmt"
)

// ParameterGroup names the four independent parameter groups of an action
// request.
type ParameterGroup string

const (
	GroupPath    ParameterGroup = "path"
	GroupQuery   ParameterGroup = "query"
	GroupHeaders ParameterGroup = "headers"
	GroupBody    ParameterGroup = "body"
)

// ParameterGroups lists the groups in their canonical order.
var ParameterGroups = []ParameterGroup{GroupPath, GroupQuery, GroupHeaders, GroupBody}

// GroupMode selects how a parameter group's value is produced at execution
// time: discrete per-parameter mappings or a single inline DSL expression.
type GroupMode string

const (
	GroupModeParameters GroupMode = "parameters"
	GroupModeDSL        GroupMode = "dsl"
)

// MappingSource is the origin of one parameter's value.
type MappingSource string

const (
	MappingSourceStatic   MappingSource = "static"   // Value used verbatim
	MappingSourceVariable MappingSource = "variable" // Value is a reference, resolved at execution time
)

// ParameterMapping binds one declared parameter to a value source.
type ParameterMapping struct {
	Type  MappingSource `json:"type"`
	Value string        `json:"value"`
}

// Mapped reports whether the mapping carries both a source and a value.
// Empty mappings are kept in the tree so the editor can render placeholders,
// but they never count as configured.
func (m ParameterMapping) Mapped() bool {
	return m.Type != "" && m.Value != ""
}

// MappingNode is one entry of a parameter mapping tree: either a leaf
// holding a ParameterMapping, or a subtree mirroring an object-typed body
// parameter definition.
type MappingNode struct {
	Leaf     *ParameterMapping
	Children map[string]*MappingNode
}

// IsLeaf reports whether this node holds a concrete mapping.
func (n *MappingNode) IsLeaf() bool {
	return n.Leaf != nil
}

// UnmarshalJSON distinguishes leaves from subtrees the way the persisted
// form does: an object carrying a string "type" alongside "value" is a
// mapping, anything else is a container of nested entries.
func (n *MappingNode) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if typeRaw, ok := raw["type"]; ok {
		var source string
		if err := json.Unmarshal(typeRaw, &source); err == nil {
			if _, hasValue := raw["value"]; hasValue || len(raw) == 1 {
				var leaf ParameterMapping
				if err := json.Unmarshal(data, &leaf); err != nil {
					return err
				}

				n.Leaf = &leaf
				n.Children = nil

				return nil
			}
		}
	}

	children := make(map[string]*MappingNode, len(raw))

	for key, value := range raw {
		child := &MappingNode{}
		if err := json.Unmarshal(value, child); err != nil {
			return fmt.Errorf("mapping entry %q: %w", key, err)
		}

		children[key] = child
	}

	n.Leaf = nil
	n.Children = children

	return nil
}

// MarshalJSON writes leaves as plain mappings and subtrees as objects.
func (n *MappingNode) MarshalJSON() ([]byte, error) {
	if n.Leaf != nil {
		return json.Marshal(n.Leaf)
	}

	return json.Marshal(n.Children)
}

// MappingTree is the mapping state of one parameter group, keyed by
// parameter name.
type MappingTree map[string]*MappingNode

// GroupMappings holds the per-group mapping trees of an action node.
type GroupMappings map[ParameterGroup]MappingTree

// GroupModes holds the authoritative mode per parameter group.
type GroupModes map[ParameterGroup]GroupMode

// GroupExpressions holds the inline DSL expression per parameter group. The
// expression text is persisted uninterpreted; its grammar belongs to the
// rule engine.
type GroupExpressions map[ParameterGroup]string

// Mode returns the group's mode, defaulting to parameters.
func (m GroupModes) Mode(group ParameterGroup) GroupMode {
	if m == nil {
		return GroupModeParameters
	}

	if mode, ok := m[group]; ok && mode != "" {
		return mode
	}

	return GroupModeParameters
}

// ActionConfig configures an action node: a connector action selection, a
// credential set (nil selects the connector's default) and the parameter
// mapping state of all four groups. A group's inactive representation is
// never discarded on mode switch; MappingMode selects which one is
// authoritative at execution time.
type ActionConfig struct {
	ConnectorID     string           `json:"connectorId"`
	ConnectorName   string           `json:"connectorName,omitempty"`
	ActionID        string           `json:"actionId"`
	ActionName      string           `json:"actionName,omitempty"`
	HTTPMethod      string           `json:"httpMethod,omitempty"`
	CredentialSetID *string          `json:"credentialSetId"`
	Mappings        GroupMappings    `json:"parameterMappings"`
	MappingMode     GroupModes       `json:"mappingMode"`
	DSLExpressions  GroupExpressions `json:"dslExpressions"`
	MappedParams    int              `json:"mappedParams,omitempty"` // Diagnostic, recomputed on save
}

func (c *ActionConfig) ConfigKind() NodeKind { return NodeKindAction }

// Validate checks the action node's structural preconditions: a connector
// and action must be selected. Mapping completeness is checked against the
// action's parameter definitions by the mapping engine.
func (c *ActionConfig) Validate() error {
	if c.ConnectorID == "" {
		return fmt.Errorf("action node requires a connector selection")
	}

	if c.ActionID == "" {
		return fmt.Errorf("action node requires an action selection")
	}

	return nil
}
