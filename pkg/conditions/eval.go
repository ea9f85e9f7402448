package conditions

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sequor-io/sequor/pkg/models"
)

// Values is the value context a condition node evaluates against: resolved
// reference paths mapped to their runtime values.
type Values map[string]any

// EvaluateSet folds a set's conditions strictly left to right:
// [A, AND B, OR C] evaluates as ((A AND B) OR C), never (A AND (B OR C)).
func EvaluateSet(set *models.ConditionSet, values Values) (bool, error) {
	if len(set.Conditions) == 0 {
		return false, fmt.Errorf("condition set %q has no conditions", set.ID)
	}

	result, err := evaluateCondition(set.Conditions[0], values)
	if err != nil {
		return false, err
	}

	for _, cond := range set.Conditions[1:] {
		next, err := evaluateCondition(cond, values)
		if err != nil {
			return false, err
		}

		if cond.LogicGate == nil {
			return false, fmt.Errorf("condition %q is missing its logic gate", cond.ID)
		}

		switch *cond.LogicGate {
		case models.LogicGateAnd:
			result = result && next
		case models.LogicGateOr:
			result = result || next
		default:
			return false, fmt.Errorf("condition %q has unknown logic gate %q", cond.ID, *cond.LogicGate)
		}
	}

	return result, nil
}

// Route evaluates condition sets in declaration order and returns the
// output port of the first set whose expression is true. When no set
// matches, execution routes via the reserved else port. Exactly one route
// is ever chosen.
func Route(config *models.ConditionConfig, values Values) (string, error) {
	for _, set := range config.ConditionSets {
		matched, err := EvaluateSet(set, values)
		if err != nil {
			return "", err
		}

		if matched {
			return set.ID, nil
		}
	}

	return models.PortElse, nil
}

func evaluateCondition(cond *models.Condition, values Values) (bool, error) {
	actual := values[cond.Variable]

	switch cond.Operator {
	case models.OperatorIsNull:
		return actual == nil, nil
	case models.OperatorIsNotNull:
		return actual != nil, nil
	case models.OperatorIsEmpty:
		return isEmpty(actual), nil
	case models.OperatorIsNotEmpty:
		return !isEmpty(actual), nil
	}

	expected, err := comparisonValue(cond, values)
	if err != nil {
		return false, err
	}

	switch cond.Operator {
	case models.OperatorEquals:
		return looseEquals(actual, expected), nil
	case models.OperatorNotEquals:
		return !looseEquals(actual, expected), nil
	case models.OperatorStartsWith:
		return strings.HasPrefix(asString(actual), asString(expected)), nil
	case models.OperatorEndsWith:
		return strings.HasSuffix(asString(actual), asString(expected)), nil
	case models.OperatorMatchesRegex:
		matched, err := regexp.MatchString(asString(expected), asString(actual))
		if err != nil {
			return false, fmt.Errorf("condition %q: invalid regex %q: %w", cond.ID, asString(expected), err)
		}

		return matched, nil
	case models.OperatorGreaterThan, models.OperatorLessThan,
		models.OperatorGreaterThanOrEqual, models.OperatorLessThanOrEqual:
		return compareNumbers(cond.Operator, actual, expected, cond.ID)
	case models.OperatorContains:
		return contains(actual, expected), nil
	case models.OperatorNotContains:
		return !contains(actual, expected), nil
	case models.OperatorLengthEquals, models.OperatorLengthGreaterThan, models.OperatorLengthLessThan:
		return compareLength(cond.Operator, actual, expected, cond.ID)
	case models.OperatorIn:
		return inList(actual, expected), nil
	case models.OperatorNotIn:
		return !inList(actual, expected), nil
	default:
		return false, fmt.Errorf("condition %q has unknown operator %q", cond.ID, cond.Operator)
	}
}

func comparisonValue(cond *models.Condition, values Values) (any, error) {
	switch cond.ValueType {
	case models.ConditionValueDynamic:
		return values[cond.DynamicVariable], nil
	case models.ConditionValueStatic, "":
		if RequiresNumericInput(cond.Operator) {
			number, err := strconv.ParseFloat(cond.StaticValue, 64)
			if err != nil {
				return nil, fmt.Errorf("condition %q given %q: %w", cond.ID, cond.StaticValue, ErrNonNumericValue)
			}

			return number, nil
		}

		return cond.StaticValue, nil
	default:
		return nil, fmt.Errorf("condition %q has unknown value type %q", cond.ID, cond.ValueType)
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

// looseEquals compares numerically when both sides parse as numbers, and by
// string representation otherwise. Persisted static values are strings even
// for number-typed variables.
func looseEquals(actual, expected any) bool {
	if a, aOK := asNumber(actual); aOK {
		if b, bOK := asNumber(expected); bOK {
			return a == b
		}
	}

	return asString(actual) == asString(expected)
}

func compareNumbers(op models.Operator, actual, expected any, condID string) (bool, error) {
	a, aOK := asNumber(actual)
	if !aOK {
		return false, fmt.Errorf("condition %q: value %v is not a number", condID, actual)
	}

	b, bOK := asNumber(expected)
	if !bOK {
		return false, fmt.Errorf("condition %q: comparison value %v is not a number", condID, expected)
	}

	switch op {
	case models.OperatorGreaterThan:
		return a > b, nil
	case models.OperatorLessThan:
		return a < b, nil
	case models.OperatorGreaterThanOrEqual:
		return a >= b, nil
	default:
		return a <= b, nil
	}
}

func compareLength(op models.Operator, actual, expected any, condID string) (bool, error) {
	length, ok := arrayLength(actual)
	if !ok {
		return false, fmt.Errorf("condition %q: value %v is not an array", condID, actual)
	}

	bound, ok := asNumber(expected)
	if !ok {
		return false, fmt.Errorf("condition %q: length bound %v is not a number", condID, expected)
	}

	switch op {
	case models.OperatorLengthEquals:
		return float64(length) == bound, nil
	case models.OperatorLengthGreaterThan:
		return float64(length) > bound, nil
	default:
		return float64(length) < bound, nil
	}
}

func contains(actual, expected any) bool {
	needle := asString(expected)

	switch v := actual.(type) {
	case string:
		return strings.Contains(v, needle)
	case []any:
		for _, item := range v {
			if looseEquals(item, expected) {
				return true
			}
		}

		return false
	case []string:
		for _, item := range v {
			if item == needle {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// inList checks membership of the actual value in a list literal. Static
// list input accepts a JSON array or a comma-separated string.
func inList(actual, expected any) bool {
	switch list := expected.(type) {
	case []any:
		for _, item := range list {
			if looseEquals(actual, item) {
				return true
			}
		}

		return false
	case string:
		var parsed []any
		if err := json.Unmarshal([]byte(list), &parsed); err == nil {
			return inList(actual, parsed)
		}

		for _, item := range strings.Split(list, ",") {
			if looseEquals(actual, strings.TrimSpace(item)) {
				return true
			}
		}

		return false
	default:
		return looseEquals(actual, expected)
	}
}

func arrayLength(value any) (int, bool) {
	switch v := value.(type) {
	case []any:
		return len(v), true
	case []string:
		return len(v), true
	default:
		return 0, false
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		number, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}

		return number, true
	default:
		return 0, false
	}
}
