package lifecycle

import (
	"fmt"
	"strconv"
)

// FieldTruthyEvaluator is a minimal CriteriaEvaluator for development and
// tests: it treats the expression as a dot-notation path into the payload
// and coerces the value found there to a boolean. The production evaluator
// lives in the rule engine.
type FieldTruthyEvaluator struct{}

func (FieldTruthyEvaluator) Evaluate(expression string, payload map[string]any) (bool, error) {
	value, ok := lookupPath(payload, expression)
	if !ok {
		return false, nil
	}

	return truthy(value)
}

func truthy(value any) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		if v == "" {
			return false, nil
		}

		result, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("cannot convert string %q to boolean: %w", v, err)
		}

		return result, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to boolean", value)
	}
}
