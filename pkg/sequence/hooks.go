package sequence

import (
	"github.com/sequor-io/sequor/pkg/models"
)

// Hooks are the canvas-side behaviors attached to a node kind: opening its
// settings drawer, jumping into an inline editor, listing bound items. They
// are session-local and never serialize; node data stays pure.
type Hooks struct {
	OpenSettings func(node *models.Node)
	OpenEditor   func(node *models.Node)
	ViewAll      func(node *models.Node)
}

// HookTable dispatches UI behaviors by node kind. It is the side table that
// keeps behavioral hooks out of the node structs.
type HookTable struct {
	byKind map[models.NodeKind]Hooks
}

func NewHookTable() *HookTable {
	return &HookTable{byKind: make(map[models.NodeKind]Hooks)}
}

// Register installs the hooks for one node kind, replacing any previous
// registration.
func (t *HookTable) Register(kind models.NodeKind, hooks Hooks) {
	t.byKind[kind] = hooks
}

// OpenSettings invokes the settings hook for the node's kind. Nodes without
// a usable kind tag cannot be configured until the sequence is reloaded.
func (t *HookTable) OpenSettings(node *models.Node) error {
	if !node.Kind.Known() {
		return NewNodeError(node.ID, ErrNodeUnconfigurable)
	}

	if hooks, ok := t.byKind[node.Kind]; ok && hooks.OpenSettings != nil {
		hooks.OpenSettings(node)
	}

	return nil
}

// OpenEditor invokes the editor hook for the node's kind, if registered.
func (t *HookTable) OpenEditor(node *models.Node) error {
	if !node.Kind.Known() {
		return NewNodeError(node.ID, ErrNodeUnconfigurable)
	}

	if hooks, ok := t.byKind[node.Kind]; ok && hooks.OpenEditor != nil {
		hooks.OpenEditor(node)
	}

	return nil
}

// ViewAll invokes the listing hook for the node's kind, if registered.
func (t *HookTable) ViewAll(node *models.Node) error {
	if !node.Kind.Known() {
		return NewNodeError(node.ID, ErrNodeUnconfigurable)
	}

	if hooks, ok := t.byKind[node.Kind]; ok && hooks.ViewAll != nil {
		hooks.ViewAll(node)
	}

	return nil
}
