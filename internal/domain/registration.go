package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the derived state of a registration.
type RegistrationStatus string

const (
	// StatusConfirmed means the registration holds a capacity slot.
	StatusConfirmed RegistrationStatus = "confirmed"
	// StatusWaiting means the registration is queued over capacity.
	StatusWaiting RegistrationStatus = "waiting"
	// StatusCancelled means the registration has been cancelled.
	StatusCancelled RegistrationStatus = "cancelled"
)

// EventRegistration represents a registration of a member, or an external guest
// identified by name, for an event. Exactly one of MemberID and Name is set.
// swagger:model EventRegistration
type EventRegistration struct {
	ID      string  `json:"id"`
	EventID string  `json:"event_id"`
	// MemberID is nil for name-only (guest) registrations.
	MemberID *string `json:"member_id"`
	// Name identifies a guest registration; empty for member registrations.
	Name string `json:"name"`

	// Date is when the registration was (last) made. Re-registering after a
	// cancellation resets it.
	Date time.Time `json:"date"`
	// DateCancelled is the cancellation tombstone; nil means active.
	DateCancelled *time.Time `json:"date_cancelled"`

	// QueuePosition is derived from capacity and registration order; nil means
	// confirmed. Never set on cancelled registrations. Computed on read, not stored.
	QueuePosition *int `json:"queue_position"`

	Present bool `json:"present"`
	// PaymentID links the registration to its payment, if any.
	PaymentID *string `json:"payment_id"`
}

// IsActive reports whether the registration has not been cancelled.
func (r *EventRegistration) IsActive() bool {
	return r.DateCancelled == nil
}

// Status returns the derived registration state.
func (r *EventRegistration) Status() RegistrationStatus {
	switch {
	case r.DateCancelled != nil:
		return StatusCancelled
	case r.QueuePosition != nil:
		return StatusWaiting
	default:
		return StatusConfirmed
	}
}

// IsLateCancellation reports whether the registration was cancelled at or after the
// event's cancellation deadline. Late cancellations block re-registration.
func (r *EventRegistration) IsLateCancellation(event *Event) bool {
	return r.DateCancelled != nil &&
		event.CancelDeadline != nil &&
		!r.DateCancelled.Before(*event.CancelDeadline)
}

// EventPermissions holds the actions an actor may take for an event registration.
// swagger:model EventPermissions
type EventPermissions struct {
	CreateRegistration bool `json:"create_registration"`
	CancelRegistration bool `json:"cancel_registration"`
	UpdateRegistration bool `json:"update_registration"`
	ManageEvent        bool `json:"manage_event"`
}

// RegistrationLookup identifies a registration either directly by ID or by the
// (event, member, name) composite key.
type RegistrationLookup struct {
	RegistrationID string
	EventID        string
	MemberID       string
	Name           string
}

// EventRegistrationRepository defines storage operations for event registrations.
// Lookups never filter on cancellation state: a cancelled record is still found so the
// lifecycle engine can reactivate it.
type EventRegistrationRepository interface {
	// Create inserts the registration and sets its ID. Returns
	// ErrDuplicateRegistration when an active registration already exists for the
	// same (event, member) or (event, name).
	Create(ctx context.Context, reg *EventRegistration) error
	GetByID(ctx context.Context, id string) (*EventRegistration, error)
	// GetByEventAndMember finds the registration of a member for an event,
	// cancelled or not.
	GetByEventAndMember(ctx context.Context, eventID, memberID string) (*EventRegistration, error)
	// GetByEventMemberName finds a registration by the composite key. Returns
	// ErrAmbiguous when more than one row matches.
	GetByEventMemberName(ctx context.Context, eventID, memberID, name string) (*EventRegistration, error)
	// ListActiveByEventID returns non-cancelled registrations ordered by (date, id).
	ListActiveByEventID(ctx context.Context, eventID string) ([]*EventRegistration, error)
	Update(ctx context.Context, reg *EventRegistration) error
	// ScrubEndedBefore redacts member, payment, and name on registrations of events
	// that ended before cutoff. With dryRun it only reports the affected rows.
	ScrubEndedBefore(ctx context.Context, cutoff time.Time, dryRun bool) ([]*EventRegistration, error)
}

// FieldValueInput is one supplied (field, raw value) pair for an update. A nil Value
// means absent; the engine substitutes the field type's default.
type FieldValueInput struct {
	FieldID string `json:"field_id"`
	Value   any    `json:"value"`
}

// OrganiserUpdate is the privileged update applied by an organiser. Nil fields are
// left unchanged. PaymentType "no_payment" removes an existing payment.
type OrganiserUpdate struct {
	Present     *bool
	PaymentType *PaymentType
}

// RegistrationService is the event registration lifecycle engine.
type RegistrationService interface {
	// Permissions returns the actions the actor (nil for unauthenticated callers)
	// may take for the event, optionally for a guest registration identified by name.
	Permissions(ctx context.Context, actor *Member, eventID, name string) (*EventPermissions, error)
	// Register creates a registration for the actor, or for a named guest when
	// name is set, reactivating a cancelled one where possible. Denials are
	// RegistrationError values.
	Register(ctx context.Context, actor *Member, eventID, name string) (*EventRegistration, error)
	// Cancel cancels the actor's (or named guest's) registration, notifying the
	// first waiting registration when a confirmed slot frees up.
	Cancel(ctx context.Context, actor *Member, eventID, name string) (*EventRegistration, error)
	// UpdateFields stores information field values on the registration resolved via
	// lookup. The actor defaults to the registration's own member.
	UpdateFields(ctx context.Context, actor *Member, lookup RegistrationLookup, values []FieldValueInput) error
	// Fields returns the registration's field definitions with current values, in
	// declaration order.
	Fields(ctx context.Context, actor *Member, lookup RegistrationLookup) ([]*FieldEntry, error)
	// UpdateByOrganiser applies a privileged update (presence, payment) to the
	// registration. Requires manage permission.
	UpdateByOrganiser(ctx context.Context, actor *Member, registrationID string, update OrganiserUpdate) (*EventRegistration, error)
	// QueuePositions returns the event's active registrations with derived queue
	// positions filled in.
	QueuePositions(ctx context.Context, eventID string) ([]*EventRegistration, error)
	// IsRegistered reports whether the member has an active registration for the
	// event. Returns nil when the member is nil or the event does not require
	// registration.
	IsRegistered(ctx context.Context, member *Member, eventID string) (*bool, error)
}

// DataMinimisationService scrubs personal data from registrations of long-ended events.
type DataMinimisationService interface {
	// Execute redacts registrations of events ended five or more years ago. With
	// dryRun it returns the affected registrations without mutating them.
	Execute(ctx context.Context, dryRun bool) ([]*EventRegistration, error)
}

// Clock abstracts wall-clock reads so permission checks are deterministic in tests.
type Clock interface {
	Now() time.Time
}
