package models

// FieldType is the declared type of an event payload field or variable value.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeArray   FieldType = "array"
	FieldTypeObject  FieldType = "object"

	// FieldTypeAll is the wildcard used by operators that accept any type.
	FieldTypeAll FieldType = "all"
)

// EventField describes one field of a trigger event's payload schema.
type EventField struct {
	Path        string    `json:"path"`
	Label       string    `json:"label,omitempty"`
	Type        FieldType `json:"type,omitempty"` // Defaults to string when omitted
	Description string    `json:"description,omitempty"`
}

// DeclaredType returns the field type, defaulting to string when the source
// schema omitted type metadata.
func (f EventField) DeclaredType() FieldType {
	if f.Type == "" {
		return FieldTypeString
	}

	return f.Type
}

// EventDescriptor is a trigger event definition as served by the events
// collaborator, including its payload field schema.
type EventDescriptor struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	EventType string       `json:"event_type,omitempty"`
	Fields    []EventField `json:"fields,omitempty"`
}
