package models

// Port names. Most node kinds expose a single default output port; condition
// nodes expose one port per condition set (named by the set's ID) plus the
// reserved else port taken when no set matches.
const (
	PortDefault = "main"
	PortElse    = "else"
)

// Edge is a directed connection between two nodes. SourcePort selects a
// named output port on the source node; empty means the default port.
type Edge struct {
	ID         string `json:"id,omitempty"`
	Source     string `json:"source"               validate:"required"`
	SourcePort string `json:"sourceHandle,omitempty"`
	Target     string `json:"target"               validate:"required"`
}

// OutputPorts returns the output port names a node exposes, given its
// configuration. Parallel nodes fan out on the default port; a merge node
// has exactly one output.
func (n *Node) OutputPorts() []string {
	if n.Kind != NodeKindCondition {
		return []string{PortDefault}
	}

	config, ok := n.Config.(*ConditionConfig)
	if !ok {
		return []string{PortElse}
	}

	ports := make([]string, 0, len(config.ConditionSets)+1)
	for _, set := range config.ConditionSets {
		ports = append(ports, set.ID)
	}

	return append(ports, PortElse)
}

// HasOutputPort reports whether the node exposes the named output port. The
// empty name always maps to the default port.
func (n *Node) HasOutputPort(name string) bool {
	if name == "" {
		name = PortDefault
	}

	for _, port := range n.OutputPorts() {
		if port == name {
			return true
		}
	}

	return false
}
