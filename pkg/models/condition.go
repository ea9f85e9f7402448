package models

// Operator identifies a comparison applied by a condition.
type Operator string

const (
	OperatorEquals             Operator = "equals"
	OperatorNotEquals          Operator = "not_equals"
	OperatorStartsWith         Operator = "starts_with"
	OperatorEndsWith           Operator = "ends_with"
	OperatorMatchesRegex       Operator = "matches_regex"
	OperatorGreaterThan        Operator = "greater_than"
	OperatorLessThan           Operator = "less_than"
	OperatorGreaterThanOrEqual Operator = "greater_than_or_equal"
	OperatorLessThanOrEqual    Operator = "less_than_or_equal"
	OperatorContains           Operator = "contains"
	OperatorNotContains        Operator = "not_contains"
	OperatorLengthEquals       Operator = "length_equals"
	OperatorLengthGreaterThan  Operator = "length_gt"
	OperatorLengthLessThan     Operator = "length_lt"
	OperatorIn                 Operator = "in"
	OperatorNotIn              Operator = "not_in"
	OperatorIsEmpty            Operator = "is_empty"
	OperatorIsNotEmpty         Operator = "is_not_empty"
	OperatorIsNull             Operator = "is_null"
	OperatorIsNotNull          Operator = "is_not_null"
)

// LogicGate chains a condition with the running result of the conditions
// before it. Only AND and OR exist; evaluation is a strict left-to-right
// fold with no precedence between them.
type LogicGate string

const (
	LogicGateAnd LogicGate = "AND"
	LogicGateOr  LogicGate = "OR"
)

// ConditionValueType selects where a condition's comparison value comes from.
type ConditionValueType string

const (
	ConditionValueStatic  ConditionValueType = "static"  // Literal value, coerced per operator
	ConditionValueDynamic ConditionValueType = "dynamic" // Resolved variable reference
)

// Condition is a single comparison inside a condition set. LogicGate is nil
// only for the first condition in a set.
type Condition struct {
	ID              string             `json:"id"`
	Variable        string             `json:"variable"` // Reference path, "@event." or "@workflow." rooted
	Operator        Operator           `json:"operator"`
	ValueType       ConditionValueType `json:"valueType"`
	StaticValue     string             `json:"staticValue,omitempty"`
	DynamicVariable string             `json:"dynamicVariable,omitempty"`
	LogicGate       *LogicGate         `json:"logicGate"`
}

// ConditionSet is a named, independently routable AND/OR-chained boolean
// expression. When true it routes execution to the output port named by its
// ID.
type ConditionSet struct {
	ID         string       `json:"id"`
	Label      string       `json:"label,omitempty"`
	Conditions []*Condition `json:"conditions"`
}

// ConditionConfig configures a condition node: an ordered list of condition
// sets, evaluated in declaration order with first-match routing.
type ConditionConfig struct {
	ConditionSets []*ConditionSet `json:"conditionSets"`
}

func (c *ConditionConfig) ConfigKind() NodeKind { return NodeKindCondition }

// Validate checks that the node holds at least one non-empty condition set
// and that gate placement follows the first-condition rule.
func (c *ConditionConfig) Validate() error {
	if len(c.ConditionSets) == 0 {
		return errConditionSetsRequired
	}

	for _, set := range c.ConditionSets {
		if len(set.Conditions) == 0 {
			return errEmptyConditionSet
		}

		for i, cond := range set.Conditions {
			if i == 0 && cond.LogicGate != nil {
				return errGateOnFirstCondition
			}

			if i > 0 && cond.LogicGate == nil {
				return errMissingGate
			}
		}
	}

	return nil
}
