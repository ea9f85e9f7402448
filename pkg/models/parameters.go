package models

// ParameterDef declares one parameter an action accepts, as served by the
// connectors collaborator. Body parameters with type "object" nest their
// own definitions under Properties; the mapping tree mirrors this shape.
type ParameterDef struct {
	Type        FieldType               `json:"type,omitempty"`
	Mandatory   bool                    `json:"mandatory,omitempty"`
	Default     any                     `json:"default,omitempty"`
	Description string                  `json:"description,omitempty"`
	Properties  map[string]ParameterDef `json:"properties,omitempty"`
}

// IsObject reports whether this definition expands into nested parameters.
func (d ParameterDef) IsObject() bool {
	return d.Type == FieldTypeObject && len(d.Properties) > 0
}

// ParameterDefs is one parameter group's declarations, keyed by name.
type ParameterDefs map[string]ParameterDef

// ActionDescriptor is a connector action definition as served by the
// collaborator: the request surface an action node maps parameters onto,
// plus the async completion contract when the action is not synchronous.
type ActionDescriptor struct {
	ID          string `json:"id"`
	ConnectorID string `json:"connector_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	HTTPMethod  string `json:"http_method"`
	Path        string `json:"path,omitempty"`

	PathParams        ParameterDefs `json:"path_params,omitempty"`
	QueryParams       ParameterDefs `json:"query_params,omitempty"`
	Headers           ParameterDefs `json:"headers,omitempty"`
	RequestBodyParams ParameterDefs `json:"request_body_params,omitempty"`

	Async *AsyncSpec `json:"async,omitempty"` // nil means the action completes synchronously
}

// GroupDefs returns the parameter definitions of the named group.
func (a *ActionDescriptor) GroupDefs(group ParameterGroup) ParameterDefs {
	switch group {
	case GroupPath:
		return a.PathParams
	case GroupQuery:
		return a.QueryParams
	case GroupHeaders:
		return a.Headers
	case GroupBody:
		return a.RequestBodyParams
	default:
		return nil
	}
}

// CredentialSet is a named bundle of secret values bound to a connector's
// auth profile, selected per action call.
type CredentialSet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ConnectorID string `json:"connector_id"`
	IsDefault   bool   `json:"is_default,omitempty"`
}

// Connector groups a family of actions behind one external system.
type Connector struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
}
