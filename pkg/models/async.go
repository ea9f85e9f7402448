package models

// AsyncType distinguishes how an async action observes completion.
type AsyncType string

const (
	AsyncTypePolling AsyncType = "polling"
	AsyncTypeWebhook AsyncType = "webhook"
)

// WebhookType selects how callback URLs correlate to executions.
type WebhookType string

const (
	// WebhookTypeDynamic issues one URL per execution instance; the URL
	// itself identifies the execution.
	WebhookTypeDynamic WebhookType = "dynamic"
	// WebhookTypeStatic shares one URL across executions and correlates
	// inbound callbacks through the identifier mapping.
	WebhookTypeStatic WebhookType = "static"
)

// InjectionMethod is how the callback URL enters the initial request.
type InjectionMethod string

const (
	InjectionQuery InjectionMethod = "query" // Query parameter named by the injection param
	InjectionBody  InjectionMethod = "body"  // Body field addressed by dot-notation path
	InjectionPath  InjectionMethod = "path"  // Path parameter placeholder
)

// ResponseMappingTarget injects one field of the initial response into a
// named polling-parameter slot.
type ResponseMappingTarget struct {
	TargetType  ParameterGroup `json:"target_type"`
	TargetParam string         `json:"target_param"`
	JSONPath    string         `json:"json_path,omitempty"`
}

// AsyncSpec is the completion contract of an async action. The success and
// failure criteria are opaque expression strings evaluated by the execution
// engine; only the two-slot contract is modeled here.
type AsyncSpec struct {
	Type AsyncType `json:"async_type"`

	// Polling configuration.
	PollingEndpointPath     string        `json:"polling_endpoint_path,omitempty"`
	PollingHTTPMethod       string        `json:"polling_http_method,omitempty"`
	PollingPathParams       ParameterDefs `json:"polling_path_params,omitempty"`
	PollingQueryParams      ParameterDefs `json:"polling_query_params,omitempty"`
	PollingHeaders          ParameterDefs `json:"polling_headers,omitempty"`
	PollingBodyParams       ParameterDefs `json:"polling_request_body_params,omitempty"`
	PollingFrequencySeconds int           `json:"polling_frequency_seconds,omitempty"`
	MaxPollingAttempts      int           `json:"max_polling_attempts,omitempty"`

	// Fields of the initial response injected into polling parameters.
	ResponseToPollingMapping map[string]ResponseMappingTarget `json:"response_to_polling_mapping,omitempty"`

	SuccessCriteria            string `json:"async_success_criteria,omitempty"`
	FailureCriteria            string `json:"async_failure_criteria,omitempty"`
	SuccessCriteriaDescription string `json:"async_success_description,omitempty"`
	FailureCriteriaDescription string `json:"async_failure_description,omitempty"`

	// Webhook configuration.
	WebhookType               WebhookType       `json:"webhook_type,omitempty"`
	WebhookURLInjectionMethod InjectionMethod   `json:"webhook_url_injection_method,omitempty"`
	WebhookURLInjectionParam  string            `json:"webhook_url_injection_param,omitempty"`
	WebhookTimeoutSeconds     int               `json:"webhook_timeout_seconds,omitempty"`
	WebhookIdentifierMapping  map[string]string `json:"webhook_identifier_mapping,omitempty"`
	WebhookSuccessCriteria    string            `json:"webhook_success_criteria,omitempty"`
	WebhookFailureCriteria    string            `json:"webhook_failure_criteria,omitempty"`
}

// PollingGroupDefs returns the polling request's parameter definitions for
// the named group. The polling request follows the same four-group model as
// the initial request.
func (s *AsyncSpec) PollingGroupDefs(group ParameterGroup) ParameterDefs {
	switch group {
	case GroupPath:
		return s.PollingPathParams
	case GroupQuery:
		return s.PollingQueryParams
	case GroupHeaders:
		return s.PollingHeaders
	case GroupBody:
		return s.PollingBodyParams
	default:
		return nil
	}
}
