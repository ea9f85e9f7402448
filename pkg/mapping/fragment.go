package mapping

import (
	"github.com/sequor-io/sequor/pkg/models"
)

// Fragment is the materialized value of one parameter group, ready to be
// merged into a request by the execution engine. Static mappings are
// inlined verbatim; variable mappings keep their reference string for
// execution-time substitution; a DSL-mode group carries the expression
// itself under the reserved expression key.
type Fragment map[string]any

// ExpressionKey marks a group fragment whose value is produced by a DSL
// expression rather than discrete parameters.
const ExpressionKey = "__dsl__"

// BuildFragment reconstructs a group's request fragment depth-first,
// mirroring the parameter-definition tree. Unmapped leaves fall back to the
// definition's default value when one exists and are omitted otherwise.
func (e *Engine) BuildFragment(
	defs models.ParameterDefs,
	tree models.MappingTree,
	mode models.GroupMode,
	expression string,
) Fragment {
	if mode == models.GroupModeDSL {
		return Fragment{ExpressionKey: expression}
	}

	return buildObject(defs, tree)
}

func buildObject(defs models.ParameterDefs, tree models.MappingTree) map[string]any {
	out := make(map[string]any)

	for name, def := range defs {
		node := tree[name]

		if def.IsObject() {
			var subtree models.MappingTree
			if node != nil {
				subtree = models.MappingTree(node.Children)
			}

			nested := buildObject(models.ParameterDefs(def.Properties), subtree)
			if len(nested) > 0 {
				out[name] = nested
			}

			continue
		}

		if node != nil && node.IsLeaf() && node.Leaf.Mapped() {
			out[name] = node.Leaf.Value

			continue
		}

		if def.Default != nil {
			out[name] = def.Default
		}
	}

	return out
}
