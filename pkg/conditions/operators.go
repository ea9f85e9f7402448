// Package conditions implements the condition evaluation engine: a typed
// operator matrix, AND/OR-chained comparison folding and first-match
// routing across condition sets.
package conditions

import (
	"github.com/sequor-io/sequor/pkg/models"
)

// operatorSpec describes one operator's contract: the declared types it
// applies to, whether it consumes a comparison value and whether a static
// comparison value must parse as a number.
type operatorSpec struct {
	appliesTo     []models.FieldType
	requiresValue bool
	numericInput  bool
}

var operatorMatrix = map[models.Operator]operatorSpec{
	models.OperatorEquals:    {appliesTo: []models.FieldType{models.FieldTypeString, models.FieldTypeNumber}, requiresValue: true},
	models.OperatorNotEquals: {appliesTo: []models.FieldType{models.FieldTypeString, models.FieldTypeNumber}, requiresValue: true},

	models.OperatorStartsWith:   {appliesTo: []models.FieldType{models.FieldTypeString}, requiresValue: true},
	models.OperatorEndsWith:     {appliesTo: []models.FieldType{models.FieldTypeString}, requiresValue: true},
	models.OperatorMatchesRegex: {appliesTo: []models.FieldType{models.FieldTypeString}, requiresValue: true},

	models.OperatorGreaterThan:        {appliesTo: []models.FieldType{models.FieldTypeNumber}, requiresValue: true, numericInput: true},
	models.OperatorLessThan:           {appliesTo: []models.FieldType{models.FieldTypeNumber}, requiresValue: true, numericInput: true},
	models.OperatorGreaterThanOrEqual: {appliesTo: []models.FieldType{models.FieldTypeNumber}, requiresValue: true, numericInput: true},
	models.OperatorLessThanOrEqual:    {appliesTo: []models.FieldType{models.FieldTypeNumber}, requiresValue: true, numericInput: true},

	models.OperatorContains:    {appliesTo: []models.FieldType{models.FieldTypeArray, models.FieldTypeString}, requiresValue: true},
	models.OperatorNotContains: {appliesTo: []models.FieldType{models.FieldTypeArray, models.FieldTypeString}, requiresValue: true},

	models.OperatorLengthEquals:      {appliesTo: []models.FieldType{models.FieldTypeArray}, requiresValue: true, numericInput: true},
	models.OperatorLengthGreaterThan: {appliesTo: []models.FieldType{models.FieldTypeArray}, requiresValue: true, numericInput: true},
	models.OperatorLengthLessThan:    {appliesTo: []models.FieldType{models.FieldTypeArray}, requiresValue: true, numericInput: true},

	models.OperatorIn:    {appliesTo: []models.FieldType{models.FieldTypeString, models.FieldTypeNumber}, requiresValue: true},
	models.OperatorNotIn: {appliesTo: []models.FieldType{models.FieldTypeString, models.FieldTypeNumber}, requiresValue: true},

	models.OperatorIsEmpty:    {appliesTo: []models.FieldType{models.FieldTypeArray, models.FieldTypeString}},
	models.OperatorIsNotEmpty: {appliesTo: []models.FieldType{models.FieldTypeArray, models.FieldTypeString}},

	models.OperatorIsNull:    {appliesTo: []models.FieldType{models.FieldTypeAll}},
	models.OperatorIsNotNull: {appliesTo: []models.FieldType{models.FieldTypeAll}},
}

// operatorOrder preserves the canonical listing order for offered subsets.
var operatorOrder = []models.Operator{
	models.OperatorEquals,
	models.OperatorNotEquals,
	models.OperatorStartsWith,
	models.OperatorEndsWith,
	models.OperatorMatchesRegex,
	models.OperatorGreaterThan,
	models.OperatorLessThan,
	models.OperatorGreaterThanOrEqual,
	models.OperatorLessThanOrEqual,
	models.OperatorContains,
	models.OperatorNotContains,
	models.OperatorLengthEquals,
	models.OperatorLengthGreaterThan,
	models.OperatorLengthLessThan,
	models.OperatorIn,
	models.OperatorNotIn,
	models.OperatorIsEmpty,
	models.OperatorIsNotEmpty,
	models.OperatorIsNull,
	models.OperatorIsNotNull,
}

// OperatorsForType returns the operators applicable to a declared variable
// type: those whose applicable set includes the type or the all wildcard.
func OperatorsForType(fieldType models.FieldType) []models.Operator {
	out := make([]models.Operator, 0, len(operatorOrder))

	for _, op := range operatorOrder {
		if OperatorApplies(op, fieldType) {
			out = append(out, op)
		}
	}

	return out
}

// OperatorApplies reports whether an operator may be used against a
// variable of the given declared type.
func OperatorApplies(op models.Operator, fieldType models.FieldType) bool {
	spec, known := operatorMatrix[op]
	if !known {
		return false
	}

	for _, t := range spec.appliesTo {
		if t == models.FieldTypeAll || t == fieldType {
			return true
		}
	}

	return false
}

// RequiresValue reports whether the operator consumes a comparison value.
// The nullity and emptiness checks take none; every other operator takes
// exactly one.
func RequiresValue(op models.Operator) bool {
	return operatorMatrix[op].requiresValue
}

// RequiresNumericInput reports whether a static comparison value for this
// operator must parse as a number. Non-numeric input is a validation error,
// never a silent zero.
func RequiresNumericInput(op models.Operator) bool {
	return operatorMatrix[op].numericInput
}
