package domain

import "context"

// FieldType is the value type of a registration information field.
type FieldType string

const (
	FieldTypeInteger FieldType = "integer"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeText    FieldType = "text"
)

// DefaultValue returns the substitute for an absent value of this type:
// integer 0, boolean false, text "".
func (t FieldType) DefaultValue() any {
	switch t {
	case FieldTypeInteger:
		return 0
	case FieldTypeBoolean:
		return false
	default:
		return ""
	}
}

// RegistrationInformationField is a typed question an event asks its registrants.
// swagger:model RegistrationInformationField
type RegistrationInformationField struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Type        FieldType `json:"type"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
	// Order is the declaration order on the event; field listings follow it.
	Order int `json:"order"`
}

// FieldEntry pairs a field definition with the value a registration gave for it.
// Value is nil when the registration has not answered the field.
type FieldEntry struct {
	Field *RegistrationInformationField `json:"field"`
	Value any                           `json:"value"`
}

// RegistrationFieldRepository stores field definitions and per-registration values.
type RegistrationFieldRepository interface {
	// ListByEventID returns the event's fields in declaration order.
	ListByEventID(ctx context.Context, eventID string) ([]*RegistrationInformationField, error)
	GetByID(ctx context.Context, fieldID string) (*RegistrationInformationField, error)
	// SetValue upserts the value for (registration, field).
	SetValue(ctx context.Context, registrationID, fieldID string, value any) error
	// GetValues returns the registration's answers keyed by field ID.
	GetValues(ctx context.Context, registrationID string) (map[string]any, error)
}
