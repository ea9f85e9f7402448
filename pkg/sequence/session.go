// Package sequence implements the editing session that owns an in-memory
// sequence graph: node and edge mutations, trigger event binding, the
// variable manager and the validated save pipeline. All session-local state
// (ID allocation, merged variable scope) lives on the Session and is
// initialized explicitly on create or load.
package sequence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sequor-io/sequor/pkg/codec"
	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/persistence"
	"github.com/sequor-io/sequor/pkg/scope"
)

// ActionCatalog resolves an action selection to its parameter schema and
// async behavior. Implemented by the collaborator API client; nil disables
// schema-aware validation (reference checks still apply).
type ActionCatalog interface {
	ActionByID(ctx context.Context, actionID string) (*models.ActionDescriptor, error)
}

// Session owns one sequence graph for the duration of an edit. Mutations are
// synchronous; the only suspension points are Load and Save.
type Session struct {
	logger    *slog.Logger
	store     persistence.Persistence
	catalog   ActionCatalog
	sequence  *models.Sequence
	events    []models.EventDescriptor
	allocator *codec.IDAllocator
	resolver  *scope.Resolver

	saving saveGate
}

// NewSession starts an editing session on a fresh, empty sequence. The
// trigger node is inserted later, once trigger events are bound.
func NewSession(logger *slog.Logger, store persistence.Persistence, catalog ActionCatalog) *Session {
	return &Session{
		logger:  logger,
		store:   store,
		catalog: catalog,
		sequence: &models.Sequence{
			Version: "1.0",
			Status:  models.SequenceStatusDraft,
		},
		allocator: codec.NewIDAllocator(),
		resolver:  scope.NewResolver(nil, nil),
	}
}

// LoadSession starts an editing session on a persisted sequence. The node ID
// allocator is seeded past the highest existing ID so new nodes never reuse
// one, even after deletions.
func LoadSession(
	ctx context.Context,
	logger *slog.Logger,
	store persistence.Persistence,
	catalog ActionCatalog,
	id string,
) (*Session, error) {
	seq, err := store.SequenceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	session := &Session{
		logger:    logger,
		store:     store,
		catalog:   catalog,
		sequence:  seq,
		allocator: codec.SeedIDAllocator(seq.Nodes),
	}

	if trigger, ok := seq.TriggerNode(); ok {
		if config, ok := trigger.Config.(*models.TriggerConfig); ok {
			session.events = config.Events
		}
	}

	session.rebuildScope()

	return session, nil
}

// Resume wraps an already materialized graph in a session, as when the API
// receives a whole sequence document from the editor. The allocator and
// scope are initialized exactly as LoadSession would.
func Resume(logger *slog.Logger, store persistence.Persistence, catalog ActionCatalog, seq *models.Sequence) *Session {
	session := &Session{
		logger:    logger,
		store:     store,
		catalog:   catalog,
		sequence:  seq,
		allocator: codec.SeedIDAllocator(seq.Nodes),
	}

	if trigger, ok := seq.TriggerNode(); ok {
		if config, ok := trigger.Config.(*models.TriggerConfig); ok {
			session.events = config.Events
		}
	}

	session.rebuildScope()

	return session
}

// Sequence exposes the in-memory graph. Callers treat it as read-only;
// mutations go through the session so scope and allocation stay consistent.
func (s *Session) Sequence() *models.Sequence {
	return s.sequence
}

// Resolver exposes the current variable scope, used to populate reference
// pickers and to validate configurations as they are edited.
func (s *Session) Resolver() *scope.Resolver {
	return s.resolver
}

// Rename sets the sequence name.
func (s *Session) Rename(name string) {
	s.sequence.Name = name
}

// BindTriggerEvents replaces the sequence's trigger event bindings. The
// singular trigger node is inserted on the first non-empty binding and its
// configuration tracks the bound descriptors afterwards.
func (s *Session) BindTriggerEvents(events []models.EventDescriptor) {
	s.events = events

	ids := make([]string, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}

	s.sequence.TriggerEvents = ids

	trigger, ok := s.sequence.TriggerNode()
	if !ok && len(events) > 0 {
		trigger = &models.Node{
			ID:   s.allocator.Next(),
			Kind: models.NodeKindTrigger,
		}
		s.sequence.Nodes = append([]*models.Node{trigger}, s.sequence.Nodes...)
		ok = true
	}

	if ok {
		trigger.Config = &models.TriggerConfig{Events: events}
	}

	s.rebuildScope()
}

// AddNode appends a new node of the given kind with its zero configuration.
// Trigger nodes are managed exclusively through BindTriggerEvents.
func (s *Session) AddNode(kind models.NodeKind, position models.Position) (*models.Node, error) {
	if kind == models.NodeKindTrigger {
		return nil, ErrTriggerProtected
	}

	config, err := models.NewConfigForKind(kind)
	if err != nil {
		return nil, err
	}

	node := &models.Node{
		ID:       s.allocator.Next(),
		Kind:     kind,
		Position: position,
		Config:   config,
	}

	s.sequence.Nodes = append(s.sequence.Nodes, node)

	return node, nil
}

// RemoveNode deletes a node and every edge touching it. The trigger node is
// non-deletable. Removed node IDs are never reallocated.
func (s *Session) RemoveNode(id string) error {
	node, ok := s.sequence.NodeByID(id)
	if !ok {
		return ErrNodeNotFound
	}

	if node.Kind == models.NodeKindTrigger {
		return ErrTriggerProtected
	}

	nodes := s.sequence.Nodes[:0]

	for _, n := range s.sequence.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}

	s.sequence.Nodes = nodes

	edges := s.sequence.Edges[:0]

	for _, edge := range s.sequence.Edges {
		if edge.Source != id && edge.Target != id {
			edges = append(edges, edge)
		}
	}

	s.sequence.Edges = edges

	return nil
}

// MoveNode updates a node's canvas position.
func (s *Session) MoveNode(id string, position models.Position) error {
	node, ok := s.sequence.NodeByID(id)
	if !ok {
		return ErrNodeNotFound
	}

	node.Position = position

	return nil
}

// ConfigureNode replaces a node's configuration. The payload's kind must
// match the node's kind tag; a node without a kind tag cannot be configured
// at all until the sequence is reloaded.
func (s *Session) ConfigureNode(id string, config models.NodeConfig) error {
	node, ok := s.sequence.NodeByID(id)
	if !ok {
		return ErrNodeNotFound
	}

	if !node.Kind.Known() {
		return NewNodeError(id, ErrNodeUnconfigurable)
	}

	if config.ConfigKind() != node.Kind {
		return NewNodeError(id, fmt.Errorf("%w: %s config on %s node",
			ErrKindMismatch, config.ConfigKind(), node.Kind))
	}

	node.Config = config

	return nil
}

// Connect adds a directed edge from the source node's named output port to
// the target node. An empty port means the default port. Condition nodes
// expose one port per condition set plus the reserved else port.
func (s *Session) Connect(sourceID, port, targetID string) (*models.Edge, error) {
	source, ok := s.sequence.NodeByID(sourceID)
	if !ok {
		return nil, NewNodeError(sourceID, ErrNodeNotFound)
	}

	target, ok := s.sequence.NodeByID(targetID)
	if !ok {
		return nil, NewNodeError(targetID, ErrNodeNotFound)
	}

	if port == "" {
		port = models.PortDefault
	}

	if !source.HasOutputPort(port) {
		return nil, NewNodeError(sourceID, fmt.Errorf("%w: %q", ErrInvalidPort, port))
	}

	if target.Kind == models.NodeKindTrigger {
		return nil, NewNodeError(targetID, fmt.Errorf("trigger node accepts no incoming edges"))
	}

	if sourceID == targetID {
		return nil, NewNodeError(sourceID, fmt.Errorf("a node cannot connect to itself"))
	}

	for _, edge := range s.sequence.Edges {
		if edge.Source == sourceID && edge.SourcePort == port && edge.Target == targetID {
			return nil, ErrDuplicateEdge
		}
	}

	if source.Kind == models.NodeKindMerge && s.outgoingCount(sourceID) > 0 {
		return nil, NewNodeError(sourceID, ErrMergeFanOut)
	}

	edge := &models.Edge{
		ID:         uuid.New().String(),
		Source:     sourceID,
		SourcePort: port,
		Target:     targetID,
	}

	s.sequence.Edges = append(s.sequence.Edges, edge)

	return edge, nil
}

// Disconnect removes an edge by ID.
func (s *Session) Disconnect(edgeID string) error {
	for i, edge := range s.sequence.Edges {
		if edge.ID == edgeID {
			s.sequence.Edges = append(s.sequence.Edges[:i], s.sequence.Edges[i+1:]...)

			return nil
		}
	}

	return ErrEdgeNotFound
}

func (s *Session) outgoingCount(nodeID string) int {
	count := 0

	for _, edge := range s.sequence.Edges {
		if edge.Source == nodeID {
			count++
		}
	}

	return count
}

// AddVariable declares a sequence-scoped variable. Names must match the
// variable naming pattern and be unique within the sequence.
func (s *Session) AddVariable(variable *models.Variable) error {
	if err := variable.Validate(); err != nil {
		return err
	}

	if _, exists := s.sequence.VariableByName(variable.Name); exists {
		return fmt.Errorf("%w: %q", ErrDuplicateVariable, variable.Name)
	}

	if variable.ID == "" {
		variable.ID = uuid.New().String()
	}

	s.sequence.Variables = append(s.sequence.Variables, variable)
	s.rebuildScope()

	return nil
}

// UpdateVariable replaces an existing variable declaration, keeping the name
// unique across the rest of the sequence.
func (s *Session) UpdateVariable(updated *models.Variable) error {
	if err := updated.Validate(); err != nil {
		return err
	}

	for i, variable := range s.sequence.Variables {
		if variable.ID != updated.ID {
			continue
		}

		if other, exists := s.sequence.VariableByName(updated.Name); exists && other.ID != updated.ID {
			return fmt.Errorf("%w: %q", ErrDuplicateVariable, updated.Name)
		}

		s.sequence.Variables[i] = updated
		s.rebuildScope()

		return nil
	}

	return ErrVariableNotFound
}

// RemoveVariable deletes a variable declaration. Configurations still
// referencing it fail reference resolution at the next save.
func (s *Session) RemoveVariable(id string) error {
	for i, variable := range s.sequence.Variables {
		if variable.ID == id {
			s.sequence.Variables = append(s.sequence.Variables[:i], s.sequence.Variables[i+1:]...)
			s.rebuildScope()

			return nil
		}
	}

	return ErrVariableNotFound
}

func (s *Session) rebuildScope() {
	s.resolver = scope.NewResolver(s.events, s.sequence.Variables)
}
