// Package lifecycle models how a single logical action call becomes
// complete: synchronously, by polling, or by webhook callback, with typed
// success/failure criteria and bounded waiting.
package lifecycle

import (
	"errors"
	"fmt"

	"github.com/sequor-io/sequor/pkg/models"
)

// State is the lifecycle state of one action call.
// Started is entered once the initial request returns; for synchronous
// actions Started and the terminal state are reached atomically.
type State string

const (
	StateStarted   State = "started"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// Terminal reports whether the state ends the lifecycle.
func (s State) Terminal() bool {
	return s != StateStarted
}

// CriteriaEvaluator evaluates an opaque criteria expression against a
// response or webhook payload. The expression grammar belongs to the rule
// engine; only the boolean outcome is modeled here. An empty expression
// evaluates to false (the slot is simply unset).
type CriteriaEvaluator interface {
	Evaluate(expression string, payload map[string]any) (bool, error)
}

var (
	// ErrNotAsync indicates lifecycle tracking was requested for a
	// synchronous action.
	ErrNotAsync = errors.New("action is not asynchronous")

	// ErrAlreadyTerminal indicates an observation arrived after the
	// lifecycle reached a terminal state.
	ErrAlreadyTerminal = errors.New("lifecycle already terminal")
)

// Tracker drives one async action call through the state machine
// Started -> {Succeeded | Failed | TimedOut}. On every evaluation cycle the
// success criteria are checked before the failure criteria; a payload
// satisfying both resolves to success.
type Tracker struct {
	spec      *models.AsyncSpec
	evaluator CriteriaEvaluator
	state     State
	attempts  int
}

// NewTracker starts a lifecycle for the given async contract. The initial
// request has returned at this point, so the tracker begins in Started.
func NewTracker(spec *models.AsyncSpec, evaluator CriteriaEvaluator) (*Tracker, error) {
	if spec == nil {
		return nil, ErrNotAsync
	}

	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}

	return &Tracker{
		spec:      spec,
		evaluator: evaluator,
		state:     StateStarted,
	}, nil
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	return t.state
}

// Attempts returns how many poll responses have been evaluated.
func (t *Tracker) Attempts() int {
	return t.attempts
}

// ObservePoll evaluates one poll response. Success criteria are checked
// first, then failure criteria; when neither holds, polling continues until
// attempts are exhausted, which is a terminal timeout failure.
func (t *Tracker) ObservePoll(response map[string]any) (State, error) {
	if t.state.Terminal() {
		return t.state, ErrAlreadyTerminal
	}

	if t.spec.Type != models.AsyncTypePolling {
		return t.state, fmt.Errorf("poll observed on %s lifecycle", t.spec.Type)
	}

	t.attempts++

	state, err := t.evaluate(t.spec.SuccessCriteria, t.spec.FailureCriteria, response)
	if err != nil {
		return t.state, err
	}

	if state.Terminal() {
		t.state = state

		return t.state, nil
	}

	if t.spec.MaxPollingAttempts > 0 && t.attempts >= t.spec.MaxPollingAttempts {
		t.state = StateTimedOut
	}

	return t.state, nil
}

// ObserveWebhook evaluates an inbound webhook payload against the webhook
// criteria pair. A payload matching neither slot leaves the lifecycle in
// Started, waiting for the next callback or the timeout.
func (t *Tracker) ObserveWebhook(payload map[string]any) (State, error) {
	if t.state.Terminal() {
		return t.state, ErrAlreadyTerminal
	}

	if t.spec.Type != models.AsyncTypeWebhook {
		return t.state, fmt.Errorf("webhook observed on %s lifecycle", t.spec.Type)
	}

	state, err := t.evaluate(t.spec.WebhookSuccessCriteria, t.spec.WebhookFailureCriteria, payload)
	if err != nil {
		return t.state, err
	}

	if state.Terminal() {
		t.state = state
	}

	return t.state, nil
}

// ObserveTimeout marks the lifecycle timed out once the wait bound elapsed.
func (t *Tracker) ObserveTimeout() State {
	if !t.state.Terminal() {
		t.state = StateTimedOut
	}

	return t.state
}

func (t *Tracker) evaluate(successExpr, failureExpr string, payload map[string]any) (State, error) {
	// Success before failure: a payload satisfying both criteria resolves
	// to success. This order is load-bearing for the execution engine.
	if successExpr != "" {
		success, err := t.evaluator.Evaluate(successExpr, payload)
		if err != nil {
			return StateStarted, fmt.Errorf("evaluating success criteria: %w", err)
		}

		if success {
			return StateSucceeded, nil
		}
	}

	if failureExpr != "" {
		failure, err := t.evaluator.Evaluate(failureExpr, payload)
		if err != nil {
			return StateStarted, fmt.Errorf("evaluating failure criteria: %w", err)
		}

		if failure {
			return StateFailed, nil
		}
	}

	return StateStarted, nil
}
