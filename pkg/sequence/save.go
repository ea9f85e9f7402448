package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/sequor-io/sequor/pkg/codec"
	"github.com/sequor-io/sequor/pkg/conditions"
	"github.com/sequor-io/sequor/pkg/lifecycle"
	"github.com/sequor-io/sequor/pkg/mapping"
	"github.com/sequor-io/sequor/pkg/models"
)

// saveGate serializes saves issued from one session. Requests complete in
// issue order, so a superseding save can never be overwritten by a stale
// earlier one.
type saveGate struct {
	mu sync.Mutex
}

// Validate checks the whole graph against the structural and reference
// rules that gate persistence: every node configured per its kind, every
// variable reference resolvable in the current scope, every edge wired to
// an exposed port. Nothing invalid ever reaches the codec's write path.
func (s *Session) Validate(ctx context.Context) error {
	if err := s.validateVariables(); err != nil {
		return err
	}

	for _, node := range s.sequence.Nodes {
		if err := s.validateNode(ctx, node); err != nil {
			return err
		}
	}

	return s.validateEdges()
}

func (s *Session) validateVariables() error {
	seen := make(map[string]struct{}, len(s.sequence.Variables))

	for _, variable := range s.sequence.Variables {
		if err := variable.Validate(); err != nil {
			return err
		}

		if _, dup := seen[variable.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateVariable, variable.Name)
		}

		seen[variable.Name] = struct{}{}
	}

	return nil
}

func (s *Session) validateNode(ctx context.Context, node *models.Node) error {
	if !node.Kind.Known() {
		return NewNodeError(node.ID, ErrNodeUnconfigurable)
	}

	if node.Config == nil {
		return NewNodeError(node.ID, fmt.Errorf("node is not configured"))
	}

	if node.Config.ConfigKind() != node.Kind {
		return NewNodeError(node.ID, ErrKindMismatch)
	}

	if err := node.Config.Validate(); err != nil {
		return NewNodeError(node.ID, err)
	}

	switch config := node.Config.(type) {
	case *models.ConditionConfig:
		validator := conditions.NewValidator(s.resolver)
		if err := validator.ValidateConfig(config); err != nil {
			return NewNodeError(node.ID, err)
		}
	case *models.ActionConfig:
		if err := s.validateAction(ctx, node.ID, config); err != nil {
			return err
		}
	}

	return nil
}

func (s *Session) validateAction(ctx context.Context, nodeID string, config *models.ActionConfig) error {
	engine := mapping.NewEngine(s.resolver)

	// The persisted diagnostic never survives as-is; whatever the document
	// carried is replaced by the count of currently mapped leaves.
	config.MappedParams = mapping.MappedCount(config.Mappings)

	if s.catalog == nil {
		return s.validateActionReferences(nodeID, config)
	}

	descriptor, err := s.catalog.ActionByID(ctx, config.ActionID)
	if err != nil {
		return NewNodeError(nodeID, fmt.Errorf("resolving action %q: %w", config.ActionID, err))
	}

	if err := engine.ValidateAction(descriptor, config); err != nil {
		return NewNodeError(nodeID, err)
	}

	if descriptor.Async != nil {
		if err := lifecycle.ValidateSpec(descriptor.Async); err != nil {
			return NewNodeError(nodeID, err)
		}
	}

	return nil
}

// validateActionReferences is the schema-less fallback: every variable-mode
// leaf must still resolve, even when the parameter definitions are not
// available to check shape and mandatory coverage.
func (s *Session) validateActionReferences(nodeID string, config *models.ActionConfig) error {
	for _, group := range models.ParameterGroups {
		if config.MappingMode.Mode(group) == models.GroupModeDSL {
			continue
		}

		for name, root := range config.Mappings[group] {
			if err := s.checkReferences(name, root); err != nil {
				return NewNodeError(nodeID, err)
			}
		}
	}

	return nil
}

func (s *Session) checkReferences(name string, node *models.MappingNode) error {
	if node == nil {
		return nil
	}

	if node.Leaf != nil {
		if node.Leaf.Type == models.MappingSourceVariable && node.Leaf.Value != "" {
			if _, err := s.resolver.Resolve(node.Leaf.Value); err != nil {
				return fmt.Errorf("parameter %q: %w", name, err)
			}
		}

		return nil
	}

	for child, sub := range node.Children {
		if err := s.checkReferences(name+"."+child, sub); err != nil {
			return err
		}
	}

	return nil
}

func (s *Session) validateEdges() error {
	for _, edge := range s.sequence.Edges {
		source, ok := s.sequence.NodeByID(edge.Source)
		if !ok {
			return fmt.Errorf("edge %q: source %w", edge.ID, ErrNodeNotFound)
		}

		if _, ok := s.sequence.NodeByID(edge.Target); !ok {
			return fmt.Errorf("edge %q: target %w", edge.ID, ErrNodeNotFound)
		}

		port := edge.SourcePort
		if port == "" {
			port = models.PortDefault
		}

		if !source.HasOutputPort(port) {
			return fmt.Errorf("edge %q: %w: %q", edge.ID, ErrInvalidPort, port)
		}
	}

	for _, node := range s.sequence.Nodes {
		if node.Kind == models.NodeKindMerge && s.outgoingCount(node.ID) > 1 {
			return NewNodeError(node.ID, ErrMergeFanOut)
		}
	}

	return nil
}

// Save validates the graph and persists a snapshot of it. A publish bumps
// the version and forces active status; a draft save preserves both. On
// failure the in-memory graph is left untouched so the operator can retry.
func (s *Session) Save(ctx context.Context, action codec.SaveAction) (*models.Sequence, error) {
	s.saving.mu.Lock()
	defer s.saving.mu.Unlock()

	if err := s.Validate(ctx); err != nil {
		return nil, err
	}

	snapshot, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	if err := codec.Prepare(snapshot, action); err != nil {
		return nil, err
	}

	if snapshot.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate sequence ID: %w", err)
		}

		snapshot.ID = id.String()
	}

	if err := s.store.SaveSequence(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "sequence save failed",
			"sequence_id", snapshot.ID, "action", action, "error", err)

		return nil, err
	}

	// Only a confirmed save mutates the session's identity and lifecycle
	// fields.
	s.sequence.ID = snapshot.ID
	s.sequence.Version = snapshot.Version
	s.sequence.Status = snapshot.Status

	s.logger.InfoContext(ctx, "sequence saved",
		"sequence_id", snapshot.ID, "action", action, "version", snapshot.Version)

	return snapshot, nil
}

// snapshot deep-copies the graph through the codec so the persisted form is
// exactly what a reload would produce.
func (s *Session) snapshot() (*models.Sequence, error) {
	data, err := codec.Marshal(s.sequence)
	if err != nil {
		return nil, err
	}

	snapshot, err := codec.Unmarshal(data)
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// IsValidationFailure reports whether err came from the pre-save validation
// gate rather than from persistence or transport.
func IsValidationFailure(err error) bool {
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		return true
	}

	return errors.Is(err, ErrDuplicateVariable) ||
		errors.Is(err, ErrInvalidPort) ||
		errors.Is(err, ErrNodeNotFound) ||
		errors.Is(err, ErrMergeFanOut)
}
