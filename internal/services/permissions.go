package services

import (
	"time"

	"clubportal/internal/domain"
)

// IsOrganiser reports whether the member manages the event: administrators, members
// with the organiser override, and members of the event's organiser committee.
// A nil member manages nothing; a nil event only grants the member-level capabilities.
func IsOrganiser(member *domain.Member, event *domain.Event) bool {
	if member == nil {
		return false
	}
	if member.IsAdmin || member.OverrideOrganiser {
		return true
	}
	if event != nil {
		return member.InGroup(event.OrganiserGroupID)
	}
	return false
}

// EvaluatePermissions computes the actions the member may take for the event, given
// their existing registration (nil when absent) and an optional guest name. Pure: all
// wall-clock reads go through now.
func EvaluatePermissions(member *domain.Member, event *domain.Event, registration *domain.EventRegistration, name string, now time.Time) *domain.EventPermissions {
	perms := &domain.EventPermissions{
		ManageEvent: IsOrganiser(member, event),
	}
	// Default-deny: without an authenticated member or a guest name there is nobody
	// to register.
	if member == nil && name == "" {
		return perms
	}

	windowOpen := event.RegistrationAllowed(now) ||
		(event.OptionalRegistrationAllowed && !event.RegistrationRequired())
	canAttend := name != "" || (member != nil && member.CanAttendEvents)

	perms.CreateRegistration = (registration == nil || !registration.IsActive()) &&
		windowOpen &&
		canAttend

	perms.CancelRegistration = registration != nil &&
		registration.IsActive() &&
		(event.CancellationAllowed(now) ||
			name != "" ||
			(event.OptionalRegistrationAllowed && !event.RegistrationRequired())) &&
		registration.PaymentID == nil

	perms.UpdateRegistration = registration != nil &&
		registration.IsActive() &&
		event.HasFields &&
		windowOpen &&
		canAttend

	return perms
}
