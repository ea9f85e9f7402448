package registry

import (
	"github.com/sequor-io/sequor/pkg/models"
)

// RegisterDefaultNodes registers the built-in node kinds with their
// configuration schemas.
func (r *Registry) RegisterDefaultNodes() {
	r.Register(NodeDefinition{
		Kind:        models.NodeKindTrigger,
		Name:        "Trigger",
		Description: "Entry point fired by the sequence's bound events",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"events"},
			"properties": map[string]any{
				"events": map[string]any{
					"type":     "array",
					"minItems": 1,
				},
			},
		},
	})

	r.Register(NodeDefinition{
		Kind:        models.NodeKindEvent,
		Name:        "Fire Event",
		Description: "Fires an event mid-sequence",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"eventId"},
			"properties": map[string]any{
				"eventId":   map[string]any{"type": "string", "minLength": 1},
				"eventName": map[string]any{"type": "string"},
				"eventType": map[string]any{"type": "string"},
			},
		},
	})

	r.Register(NodeDefinition{
		Kind:        models.NodeKindAction,
		Name:        "Action",
		Description: "Calls a connector action",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"connectorId", "actionId"},
			"properties": map[string]any{
				"connectorId":       map[string]any{"type": "string", "minLength": 1},
				"actionId":          map[string]any{"type": "string", "minLength": 1},
				"credentialSetId":   map[string]any{"type": []any{"string", "null"}},
				"httpMethod":        map[string]any{"type": "string"},
				"parameterMappings": map[string]any{"type": "object"},
				"mappingMode":       map[string]any{"type": "object"},
				"dslExpressions":    map[string]any{"type": "object"},
			},
		},
	})

	r.Register(NodeDefinition{
		Kind:        models.NodeKindCondition,
		Name:        "Condition",
		Description: "Routes through the first matching condition set",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"conditionSets"},
			"properties": map[string]any{
				"conditionSets": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type":     "object",
						"required": []any{"id", "conditions"},
						"properties": map[string]any{
							"id":    map[string]any{"type": "string", "minLength": 1},
							"label": map[string]any{"type": "string"},
							"conditions": map[string]any{
								"type":     "array",
								"minItems": 1,
							},
						},
					},
				},
			},
		},
	})

	r.Register(NodeDefinition{
		Kind:        models.NodeKindCustomRule,
		Name:        "Custom Rule",
		Description: "Runs an operator-authored script",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"name", "code"},
			"properties": map[string]any{
				"name":        map[string]any{"type": "string", "minLength": 1},
				"description": map[string]any{"type": "string"},
				"code":        map[string]any{"type": "string", "minLength": 1},
			},
		},
	})

	r.Register(NodeDefinition{
		Kind:        models.NodeKindParallel,
		Name:        "Parallel",
		Description: "Splits execution into concurrent branches",
		Schema:      map[string]any{"type": "object"},
	})

	r.Register(NodeDefinition{
		Kind:        models.NodeKindMerge,
		Name:        "Merge",
		Description: "Waits for all incoming branches",
		Schema:      map[string]any{"type": "object"},
	})
}
