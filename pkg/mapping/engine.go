// Package mapping converts an action node's declared parameter schema and
// binding state into validated, execution-ready request fragments.
package mapping

import (
	"fmt"

	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/scope"
)

// Engine validates and materializes parameter mappings for one sequence's
// scope. Variable-mode values are only checked to resolve; substitution is
// the execution engine's job.
type Engine struct {
	resolver *scope.Resolver
}

// NewEngine creates a parameter resolution engine bound to a scope resolver.
func NewEngine(resolver *scope.Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// ValidateAction checks every parameter group of an action node against the
// action's declared schema: mandatory leaves must be mapped, variable-mode
// values must resolve, and mapped parameters must exist in the schema. A
// group in DSL mode is checked only for expression presence when the group
// declares mandatory parameters; the expression text itself is opaque.
func (e *Engine) ValidateAction(action *models.ActionDescriptor, config *models.ActionConfig) error {
	for _, group := range models.ParameterGroups {
		defs := action.GroupDefs(group)

		mode := config.MappingMode.Mode(group)
		if mode == models.GroupModeDSL {
			if config.DSLExpressions[group] == "" && hasMandatory(defs) {
				return &GroupError{Group: group, Err: errEmptyExpression}
			}

			continue
		}

		if err := e.validateTree(defs, config.Mappings[group]); err != nil {
			return &GroupError{Group: group, Err: err}
		}
	}

	return nil
}

func (e *Engine) validateTree(defs models.ParameterDefs, tree models.MappingTree) error {
	for name, node := range tree {
		def, declared := defs[name]
		if !declared {
			return fmt.Errorf("parameter %q is not declared by the selected action: %w", name, errUndeclaredParameter)
		}

		if def.IsObject() {
			if node.IsLeaf() {
				return fmt.Errorf("parameter %q is an object and cannot hold a direct mapping", name)
			}

			subtree := models.MappingTree(node.Children)
			if err := e.validateTree(models.ParameterDefs(def.Properties), subtree); err != nil {
				return err
			}

			continue
		}

		if !node.IsLeaf() {
			return fmt.Errorf("parameter %q expects a mapping, not nested entries", name)
		}

		if err := e.validateLeaf(name, node.Leaf); err != nil {
			return err
		}
	}

	return missingMandatory(defs, tree)
}

func (e *Engine) validateLeaf(name string, leaf *models.ParameterMapping) error {
	if !leaf.Mapped() {
		return nil // Unmapped leaves gate on mandatory checks, not here
	}

	switch leaf.Type {
	case models.MappingSourceStatic:
		return nil
	case models.MappingSourceVariable:
		if _, err := e.resolver.Resolve(leaf.Value); err != nil {
			return fmt.Errorf("parameter %q: %w", name, err)
		}

		return nil
	default:
		return fmt.Errorf("parameter %q has unknown mapping source %q", name, leaf.Type)
	}
}

func missingMandatory(defs models.ParameterDefs, tree models.MappingTree) error {
	for name, def := range defs {
		node := tree[name]

		if def.IsObject() {
			var subtree models.MappingTree
			if node != nil {
				subtree = models.MappingTree(node.Children)
			}

			if err := missingMandatory(models.ParameterDefs(def.Properties), subtree); err != nil {
				return err
			}

			continue
		}

		if !def.Mandatory {
			continue
		}

		if node == nil || !node.IsLeaf() || !node.Leaf.Mapped() {
			return fmt.Errorf("mandatory parameter %q is not mapped: %w", name, errUnmappedMandatory)
		}
	}

	return nil
}

func hasMandatory(defs models.ParameterDefs) bool {
	for _, def := range defs {
		if def.IsObject() {
			if hasMandatory(models.ParameterDefs(def.Properties)) {
				return true
			}

			continue
		}

		if def.Mandatory {
			return true
		}
	}

	return false
}

// MappedCount counts the leaves across all four groups whose mapping holds
// both a non-empty source and value. Object containers never count.
func MappedCount(mappings models.GroupMappings) int {
	count := 0
	for _, tree := range mappings {
		count += countTree(tree)
	}

	return count
}

func countTree(tree models.MappingTree) int {
	count := 0

	for _, node := range tree {
		if node == nil {
			continue
		}

		if node.IsLeaf() {
			if node.Leaf.Mapped() {
				count++
			}

			continue
		}

		count += countTree(models.MappingTree(node.Children))
	}

	return count
}

// SwitchMode changes a group's authoritative mode without discarding the
// inactive representation: mappings and the DSL expression persist side by
// side and round-trip unchanged.
func SwitchMode(config *models.ActionConfig, group models.ParameterGroup, mode models.GroupMode) {
	if config.MappingMode == nil {
		config.MappingMode = models.GroupModes{}
	}

	config.MappingMode[group] = mode
}
