// Package registry provides the node kind catalog: one definition per kind
// with a JSON schema for its configuration payload. Raw payloads arriving
// from the editor API are validated against the schema before they are
// decoded into their typed configuration.
package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sequor-io/sequor/pkg/models"
)

// NodeDefinition describes one node kind to the editor: display metadata
// plus the configuration schema.
type NodeDefinition struct {
	Kind        models.NodeKind `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      map[string]any  `json:"schema"`
}

// Registry holds the registered node definitions.
type Registry struct {
	logger      *slog.Logger
	definitions map[models.NodeKind]NodeDefinition
	order       []models.NodeKind
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:      logger,
		definitions: make(map[models.NodeKind]NodeDefinition),
	}
}

// Register installs a node definition. Registering the same kind twice
// replaces the earlier definition.
func (r *Registry) Register(definition NodeDefinition) {
	if _, exists := r.definitions[definition.Kind]; !exists {
		r.order = append(r.order, definition.Kind)
	}

	r.definitions[definition.Kind] = definition
}

// Definition returns the definition for a node kind.
func (r *Registry) Definition(kind models.NodeKind) (NodeDefinition, bool) {
	definition, ok := r.definitions[kind]

	return definition, ok
}

// Definitions returns all registered definitions in registration order.
func (r *Registry) Definitions() []NodeDefinition {
	definitions := make([]NodeDefinition, 0, len(r.order))

	for _, kind := range r.order {
		definitions = append(definitions, r.definitions[kind])
	}

	return definitions
}

// ValidateConfig checks a raw configuration payload against the kind's JSON
// schema.
func (r *Registry) ValidateConfig(kind models.NodeKind, config map[string]any) error {
	definition, ok := r.definitions[kind]
	if !ok {
		return fmt.Errorf("node kind %q not registered", kind)
	}

	schemaLoader := gojsonschema.NewGoLoader(definition.Schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var errors []string
		for _, resultError := range result.Errors() {
			errors = append(errors, resultError.String())
		}

		return fmt.Errorf("JSON schema validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// DecodeConfig validates a raw payload and decodes it into the kind's typed
// configuration.
func (r *Registry) DecodeConfig(kind models.NodeKind, raw json.RawMessage) (models.NodeConfig, error) {
	var payload map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("invalid %s configuration payload: %w", kind, err)
		}
	}

	if payload == nil {
		payload = map[string]any{}
	}

	if err := r.ValidateConfig(kind, payload); err != nil {
		return nil, err
	}

	config, err := models.NewConfigForKind(kind)
	if err != nil {
		return nil, err
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, config); err != nil {
			return nil, fmt.Errorf("decoding %s configuration: %w", kind, err)
		}
	}

	return config, nil
}

// HealthCheck reports whether every known node kind has a registered
// definition.
func (r *Registry) HealthCheck() error {
	var missing []string

	for _, kind := range models.NodeKinds {
		if _, ok := r.definitions[kind]; !ok {
			missing = append(missing, string(kind))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("node kinds without definitions: %s", strings.Join(missing, ", "))
	}

	return nil
}
