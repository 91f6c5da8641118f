package domain

import "errors"

// Sentinel errors shared across repositories and services.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	// ErrAmbiguous is returned when a (event, member, name) lookup matches more than one registration.
	ErrAmbiguous = errors.New("multiple registrations match")
	// ErrDuplicateRegistration is returned by the registration repository when an active
	// registration already exists for the same (event, member) or (event, name).
	ErrDuplicateRegistration = errors.New("active registration already exists")
	ErrInvalidInput          = errors.New("invalid input")
)

// RegistrationError is a denied registration action. Message is user-facing and is
// surfaced verbatim by the delivery layer.
type RegistrationError struct {
	Message string
}

func (e *RegistrationError) Error() string {
	return e.Message
}

// DenyRegistration returns a RegistrationError with the given user-facing message.
func DenyRegistration(message string) error {
	return &RegistrationError{Message: message}
}

// User-facing denial messages for registration actions.
const (
	MsgMayNotRegister     = "You may not register."
	MsgAlreadyRegistered  = "You were already registered."
	MsgLateReRegistration = "You cannot re-register anymore since you've cancelled after the deadline."
	MsgMayNotDeregister   = "You are not allowed to deregister for this event."
	MsgNotRegistered      = "You are not registered for this event."
	MsgMayNotUpdate       = "You are not allowed to update this registration."
	MsgAmbiguousLookup    = "Unable to find the right registration."
)
