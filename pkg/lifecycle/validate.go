package lifecycle

import (
	"errors"
	"fmt"

	"github.com/sequor-io/sequor/pkg/models"
)

var (
	// ErrInvalidAsyncType indicates an async action without a recognized
	// completion mode.
	ErrInvalidAsyncType = errors.New("invalid async type")

	// ErrMissingIdentifierMapping indicates a static-URL webhook without a
	// correlation mapping; inbound callbacks could never be matched to
	// their originating execution.
	ErrMissingIdentifierMapping = errors.New("static webhook requires an identifier mapping")

	// ErrInvalidInjection indicates a webhook action whose callback URL
	// injection is unusable.
	ErrInvalidInjection = errors.New("invalid webhook URL injection")
)

// ValidateSpec checks an async contract's structural invariants. This is a
// save-time gate: an invalid contract never reaches the persistence codec.
func ValidateSpec(spec *models.AsyncSpec) error {
	switch spec.Type {
	case models.AsyncTypePolling:
		return validatePolling(spec)
	case models.AsyncTypeWebhook:
		return validateWebhook(spec)
	default:
		return fmt.Errorf("async type %q: %w", spec.Type, ErrInvalidAsyncType)
	}
}

func validatePolling(spec *models.AsyncSpec) error {
	if spec.PollingFrequencySeconds <= 0 {
		return errors.New("polling frequency must be positive")
	}

	if spec.MaxPollingAttempts <= 0 {
		return errors.New("max polling attempts must be positive")
	}

	for responsePath, target := range spec.ResponseToPollingMapping {
		if responsePath == "" {
			return errors.New("response mapping entry has an empty response path")
		}

		if target.TargetParam == "" {
			return fmt.Errorf("response mapping for %q has no target parameter", responsePath)
		}

		switch target.TargetType {
		case models.GroupPath, models.GroupQuery, models.GroupHeaders, models.GroupBody:
		default:
			return fmt.Errorf("response mapping for %q has unknown target type %q", responsePath, target.TargetType)
		}
	}

	return nil
}

func validateWebhook(spec *models.AsyncSpec) error {
	switch spec.WebhookURLInjectionMethod {
	case models.InjectionQuery, models.InjectionBody, models.InjectionPath:
	default:
		return fmt.Errorf("injection method %q: %w", spec.WebhookURLInjectionMethod, ErrInvalidInjection)
	}

	if spec.WebhookURLInjectionParam == "" {
		return fmt.Errorf("injection parameter is required: %w", ErrInvalidInjection)
	}

	switch spec.WebhookType {
	case models.WebhookTypeDynamic:
	case models.WebhookTypeStatic:
		if len(spec.WebhookIdentifierMapping) == 0 {
			return ErrMissingIdentifierMapping
		}
	default:
		return fmt.Errorf("webhook type %q: %w", spec.WebhookType, ErrInvalidAsyncType)
	}

	if spec.WebhookTimeoutSeconds <= 0 {
		return errors.New("webhook timeout must be positive")
	}

	return nil
}
