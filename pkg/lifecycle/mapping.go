package lifecycle

import (
	"fmt"
	"strings"

	"github.com/sequor-io/sequor/pkg/models"
)

// PollingParams holds values injected into the polling request's parameter
// slots, grouped the same way as the initial request.
type PollingParams map[models.ParameterGroup]map[string]any

// ApplyResponseMapping extracts fields from the initial response and
// injects each into its configured polling-parameter slot. A response path
// that does not exist in the payload is an error: the polling request would
// be issued with a hole in it.
func ApplyResponseMapping(spec *models.AsyncSpec, initialResponse map[string]any) (PollingParams, error) {
	params := PollingParams{}

	for responsePath, target := range spec.ResponseToPollingMapping {
		path := target.JSONPath
		if path == "" {
			path = responsePath
		}

		value, ok := lookupPath(initialResponse, path)
		if !ok {
			return nil, fmt.Errorf("initial response has no field at %q", path)
		}

		group := params[target.TargetType]
		if group == nil {
			group = make(map[string]any)
			params[target.TargetType] = group
		}

		group[target.TargetParam] = value
	}

	return params, nil
}

// lookupPath walks a dot-notation path through nested objects.
func lookupPath(payload map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")

	var current any = payload

	for _, segment := range segments {
		object, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = object[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}
