package models

import "errors"

var (
	errConditionSetsRequired = errors.New("condition node requires at least one condition set")
	errEmptyConditionSet     = errors.New("condition set has no conditions")
	errGateOnFirstCondition  = errors.New("first condition in a set must not carry a logic gate")
	errMissingGate           = errors.New("conditions after the first must carry a logic gate")
)
