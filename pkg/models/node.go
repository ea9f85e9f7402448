package models

import (
	"encoding/json"
	"fmt"
)

// NodeKind tags a node with its step type. Every consumer that branches on
// the kind switches exhaustively over these constants.
type NodeKind string

const (
	NodeKindTrigger    NodeKind = "trigger"
	NodeKindEvent      NodeKind = "event"
	NodeKindAction     NodeKind = "action"
	NodeKindCondition  NodeKind = "condition"
	NodeKindCustomRule NodeKind = "custom_rule"
	NodeKindParallel   NodeKind = "parallel"
	NodeKindMerge      NodeKind = "merge"
)

// NodeKinds lists every known node kind.
var NodeKinds = []NodeKind{
	NodeKindTrigger,
	NodeKindEvent,
	NodeKindAction,
	NodeKindCondition,
	NodeKindCustomRule,
	NodeKindParallel,
	NodeKindMerge,
}

// Known returns whether k is a recognized node kind.
func (k NodeKind) Known() bool {
	for _, kind := range NodeKinds {
		if k == kind {
			return true
		}
	}

	return false
}

// Position is the canvas coordinate of a node. Presentation-only data, but
// part of the persisted form so an editor can restore the layout.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeConfig is the kind-specific configuration payload of a node. Exactly
// one concrete type exists per node kind, so dispatching on the config is a
// compile-time-checked exercise.
type NodeConfig interface {
	ConfigKind() NodeKind
	// Validate reports whether the configuration is structurally complete,
	// i.e. the node may be persisted and later interpreted by the engine.
	Validate() error
}

// Node is one step in a sequence: an opaque monotonically allocated ID, a
// kind tag and the kind-specific configuration. Node data is pure and
// serializable; editor-side behavior hooks never live on this struct.
type Node struct {
	ID       string     `json:"id"       validate:"required"`
	Kind     NodeKind   `json:"kind"     validate:"required"`
	Position Position   `json:"position"`
	Config   NodeConfig `json:"config,omitempty"`
}

// TriggerConfig is the read-only configuration of the singular trigger node:
// the descriptors of the events bound to the sequence. Not independently
// configurable beyond the event binding itself.
type TriggerConfig struct {
	Events []EventDescriptor `json:"events"`
}

func (c *TriggerConfig) ConfigKind() NodeKind { return NodeKindTrigger }

func (c *TriggerConfig) Validate() error {
	if len(c.Events) == 0 {
		return fmt.Errorf("trigger node requires at least one bound event")
	}

	return nil
}

// EventConfig configures a node that fires an event mid-sequence, distinct
// from the sequence's own trigger.
type EventConfig struct {
	EventID   string `json:"eventId"`
	EventName string `json:"eventName,omitempty"`
	EventType string `json:"eventType,omitempty"`
}

func (c *EventConfig) ConfigKind() NodeKind { return NodeKindEvent }

func (c *EventConfig) Validate() error {
	if c.EventID == "" {
		return fmt.Errorf("event node requires an event selection")
	}

	return nil
}

// CustomRuleConfig configures a custom-rule script node. The script grammar
// and execution belong to the rule engine; this only guarantees a non-empty
// name and code as a structural precondition.
type CustomRuleConfig struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Code        string `json:"code"`
}

func (c *CustomRuleConfig) ConfigKind() NodeKind { return NodeKindCustomRule }

func (c *CustomRuleConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("custom rule requires a name")
	}

	if c.Code == "" {
		return fmt.Errorf("custom rule requires script code")
	}

	return nil
}

// ParallelConfig carries no payload: a parallel split is purely topological
// (one source, many targets).
type ParallelConfig struct{}

func (c *ParallelConfig) ConfigKind() NodeKind { return NodeKindParallel }
func (c *ParallelConfig) Validate() error      { return nil }

// MergeConfig carries no payload: a merge join is purely topological (many
// sources, one target). It is a synchronization point, not a computation.
type MergeConfig struct{}

func (c *MergeConfig) ConfigKind() NodeKind { return NodeKindMerge }
func (c *MergeConfig) Validate() error      { return nil }

// NewConfigForKind returns the zero configuration value for a node kind.
func NewConfigForKind(kind NodeKind) (NodeConfig, error) {
	switch kind {
	case NodeKindTrigger:
		return &TriggerConfig{}, nil
	case NodeKindEvent:
		return &EventConfig{}, nil
	case NodeKindAction:
		return &ActionConfig{}, nil
	case NodeKindCondition:
		return &ConditionConfig{}, nil
	case NodeKindCustomRule:
		return &CustomRuleConfig{}, nil
	case NodeKindParallel:
		return &ParallelConfig{}, nil
	case NodeKindMerge:
		return &MergeConfig{}, nil
	default:
		return nil, fmt.Errorf("unknown node kind %q", kind)
	}
}

type nodeEnvelope struct {
	ID       string          `json:"id"`
	Kind     NodeKind        `json:"kind"`
	Position Position        `json:"position"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// UnmarshalJSON decodes the node's configuration into the concrete type
// selected by the kind tag. A node without a kind is rejected here; it can
// appear on a canvas but never round-trip through persistence.
func (n *Node) UnmarshalJSON(data []byte) error {
	var envelope nodeEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	if envelope.Kind == "" {
		return fmt.Errorf("node %q is missing its kind tag", envelope.ID)
	}

	config, err := NewConfigForKind(envelope.Kind)
	if err != nil {
		return err
	}

	if len(envelope.Config) > 0 {
		if err := json.Unmarshal(envelope.Config, config); err != nil {
			return fmt.Errorf("node %q: decoding %s config: %w", envelope.ID, envelope.Kind, err)
		}
	}

	n.ID = envelope.ID
	n.Kind = envelope.Kind
	n.Position = envelope.Position
	n.Config = config

	return nil
}
