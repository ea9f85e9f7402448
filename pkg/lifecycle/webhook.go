package lifecycle

import (
	"fmt"
	"strings"

	"github.com/sequor-io/sequor/pkg/models"
)

// InjectCallbackURL places the callback URL into the initial request using
// exactly one of the three injection methods. Query and path injection
// mutate the named slot; body injection sets a dot-notation field, creating
// intermediate objects as needed.
func InjectCallbackURL(
	spec *models.AsyncSpec,
	callbackURL string,
	requestPath string,
	query map[string]any,
	body map[string]any,
) (string, error) {
	switch spec.WebhookURLInjectionMethod {
	case models.InjectionQuery:
		query[spec.WebhookURLInjectionParam] = callbackURL

		return requestPath, nil
	case models.InjectionBody:
		setPath(body, spec.WebhookURLInjectionParam, callbackURL)

		return requestPath, nil
	case models.InjectionPath:
		placeholder := "{" + spec.WebhookURLInjectionParam + "}"
		if !strings.Contains(requestPath, placeholder) {
			return "", fmt.Errorf("request path %q has no placeholder %s", requestPath, placeholder)
		}

		return strings.ReplaceAll(requestPath, placeholder, callbackURL), nil
	default:
		return "", fmt.Errorf("injection method %q: %w", spec.WebhookURLInjectionMethod, ErrInvalidInjection)
	}
}

// CorrelateWebhook matches an inbound webhook payload to the initial
// response it belongs to, by comparing every configured identifier pair.
// Only static-URL webhooks need correlation; dynamic URLs identify the
// execution by themselves.
func CorrelateWebhook(spec *models.AsyncSpec, initialResponse, payload map[string]any) (bool, error) {
	if spec.WebhookType != models.WebhookTypeStatic {
		return true, nil
	}

	if len(spec.WebhookIdentifierMapping) == 0 {
		return false, ErrMissingIdentifierMapping
	}

	for responseField, payloadField := range spec.WebhookIdentifierMapping {
		expected, ok := lookupPath(initialResponse, responseField)
		if !ok {
			return false, nil
		}

		actual, ok := lookupPath(payload, payloadField)
		if !ok {
			return false, nil
		}

		if fmt.Sprintf("%v", expected) != fmt.Sprintf("%v", actual) {
			return false, nil
		}
	}

	return true, nil
}

func setPath(object map[string]any, path string, value any) {
	segments := strings.Split(path, ".")

	for _, segment := range segments[:len(segments)-1] {
		next, ok := object[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			object[segment] = next
		}

		object = next
	}

	object[segments[len(segments)-1]] = value
}
