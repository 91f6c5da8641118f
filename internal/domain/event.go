package domain

import (
	"context"
	"time"
)

// Event represents an association event members can register for.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`

	// Registration window. Both nil means registration is not required for this event.
	RegistrationStart *time.Time `json:"registration_start"`
	RegistrationEnd   *time.Time `json:"registration_end"`
	// CancelDeadline is the cutoff after which cancelling has consequences
	// (organiser notification, no re-registration).
	CancelDeadline *time.Time `json:"cancel_deadline"`

	// MaxParticipants is the capacity; nil means unlimited.
	MaxParticipants *int `json:"max_participants"`

	// OptionalRegistrationAllowed permits registering for events that do not require it.
	OptionalRegistrationAllowed bool `json:"optional_registration_allowed"`
	// SendCancelEmail controls whether the organiser is notified of late cancellations.
	SendCancelEmail bool `json:"send_cancel_email"`

	// OrganiserGroupID references the committee that manages this event.
	OrganiserGroupID string `json:"organiser_group_id"`
	// OrganiserEmail is the committee contact address for cancellation notices.
	OrganiserEmail string `json:"organiser_email"`

	// HasFields reports whether the event declares registration information fields.
	// Populated by the repository.
	HasFields bool `json:"has_fields"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegistrationRequired reports whether members must register to attend.
// An event requires registration when it has a registration window.
func (e *Event) RegistrationRequired() bool {
	return e.RegistrationStart != nil && e.RegistrationEnd != nil
}

// RegistrationAllowed reports whether the registration window is open at now.
func (e *Event) RegistrationAllowed(now time.Time) bool {
	if !e.RegistrationRequired() {
		return false
	}
	return !now.Before(*e.RegistrationStart) && now.Before(*e.RegistrationEnd)
}

// CancellationAllowed reports whether registrations may still be cancelled at now:
// the registration window has opened and the event has not started.
func (e *Event) CancellationAllowed(now time.Time) bool {
	if !e.RegistrationRequired() {
		return false
	}
	return !now.Before(*e.RegistrationStart) && now.Before(e.Start)
}

// AfterCancelDeadline reports whether now is past the cancellation deadline.
// Events without a deadline never pass it.
func (e *Event) AfterCancelDeadline(now time.Time) bool {
	return e.CancelDeadline != nil && now.After(*e.CancelDeadline)
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]*Event, error)
}

// EventDetail bundles an event with the viewer's permissions and registration state.
type EventDetail struct {
	Event *Event `json:"event"`
	// Permissions are the viewer's registration permissions for this event.
	Permissions *EventPermissions `json:"permissions"`
	// Registered is nil when the viewer is anonymous or registration is not
	// required.
	Registered *bool `json:"registered"`
	// NumParticipants counts active registrations.
	NumParticipants int `json:"num_participants"`
}

// EventService defines event-facing operations for the delivery layer.
type EventService interface {
	// Create stores a new event. The actor must manage the organiser group.
	Create(ctx context.Context, actor *Member, event *Event) error
	// Get returns the event with the viewer's permissions and registration state.
	Get(ctx context.Context, actor *Member, eventID string) (*EventDetail, error)
	ListUpcoming(ctx context.Context) ([]*Event, error)
}
