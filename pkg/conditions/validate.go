package conditions

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sequor-io/sequor/pkg/models"
	"github.com/sequor-io/sequor/pkg/scope"
)

var (
	// ErrOperatorNotApplicable indicates an operator outside the subset
	// offered for the variable's declared type.
	ErrOperatorNotApplicable = errors.New("operator not applicable to variable type")

	// ErrMissingComparisonValue indicates an operator that takes a value
	// was configured without one.
	ErrMissingComparisonValue = errors.New("operator requires a comparison value")

	// ErrNonNumericValue indicates a numeric-input operator was given a
	// static value that does not parse as a number.
	ErrNonNumericValue = errors.New("static value must be numeric for this operator")
)

// Validator checks conditions against a sequence's scope before they may be
// saved.
type Validator struct {
	resolver *scope.Resolver
}

// NewValidator creates a condition validator bound to a scope resolver.
func NewValidator(resolver *scope.Resolver) *Validator {
	return &Validator{resolver: resolver}
}

// ValidateCondition checks one condition: its variable resolves, the
// operator belongs to the subset offered for the variable's declared type,
// and the comparison value rules hold.
func (v *Validator) ValidateCondition(cond *models.Condition) error {
	ref, err := v.resolver.Resolve(cond.Variable)
	if err != nil {
		return err
	}

	if !OperatorApplies(cond.Operator, ref.Type) {
		return fmt.Errorf("operator %q on %s variable %q: %w",
			cond.Operator, ref.Type, cond.Variable, ErrOperatorNotApplicable)
	}

	if !RequiresValue(cond.Operator) {
		return nil
	}

	switch cond.ValueType {
	case models.ConditionValueStatic:
		if cond.StaticValue == "" {
			return fmt.Errorf("operator %q: %w", cond.Operator, ErrMissingComparisonValue)
		}

		if RequiresNumericInput(cond.Operator) {
			if _, err := strconv.ParseFloat(cond.StaticValue, 64); err != nil {
				return fmt.Errorf("operator %q given %q: %w", cond.Operator, cond.StaticValue, ErrNonNumericValue)
			}
		}

		return nil
	case models.ConditionValueDynamic:
		if cond.DynamicVariable == "" {
			return fmt.Errorf("operator %q: %w", cond.Operator, ErrMissingComparisonValue)
		}

		if _, err := v.resolver.Resolve(cond.DynamicVariable); err != nil {
			return err
		}

		return nil
	default:
		return fmt.Errorf("condition %q has unknown value type %q", cond.ID, cond.ValueType)
	}
}

// ValidateConfig checks a full condition node configuration: the structural
// gate rules plus every condition in every set.
func (v *Validator) ValidateConfig(config *models.ConditionConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	for _, set := range config.ConditionSets {
		for _, cond := range set.Conditions {
			if err := v.ValidateCondition(cond); err != nil {
				return fmt.Errorf("condition set %q: %w", set.ID, err)
			}
		}
	}

	return nil
}
