package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WaitingPromotedEmailData holds data for the "a spot opened up" email sent to the
// first waiting registrant.
type WaitingPromotedEmailData struct {
	Email      string
	FirstName  string
	EventTitle string
}

// CancelledAfterDeadlineEmailData holds data for the organiser notification about a
// cancellation past the deadline.
type CancelledAfterDeadlineEmailData struct {
	Email          string
	EventTitle     string
	RegistrantName string
}

// NotificationService is the fire-and-forget notification sink for the registration
// lifecycle. Implementations return errors for logging only; callers must never fail
// an operation on them.
type NotificationService interface {
	// NotifyFirstWaiting emails the first waiting registration of the event, if any.
	NotifyFirstWaiting(ctx context.Context, event *Event) error
	// NotifyOrganiser emails the event's organiser about a late cancellation.
	NotifyOrganiser(ctx context.Context, event *Event, reg *EventRegistration) error
}
