package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clubportal/internal/domain"
)

type registrationService struct {
	eventRepo  domain.EventRepository
	regRepo    domain.EventRegistrationRepository
	fieldRepo  domain.RegistrationFieldRepository
	memberRepo domain.MemberRepository
	payments   domain.PaymentService
	notifier   domain.NotificationService
	clock      domain.Clock
	logger     *slog.Logger
}

// NewRegistrationService creates the registration lifecycle engine with the given
// repositories and collaborators.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	regRepo domain.EventRegistrationRepository,
	fieldRepo domain.RegistrationFieldRepository,
	memberRepo domain.MemberRepository,
	payments domain.PaymentService,
	notifier domain.NotificationService,
	clock domain.Clock,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:  eventRepo,
		regRepo:    regRepo,
		fieldRepo:  fieldRepo,
		memberRepo: memberRepo,
		payments:   payments,
		notifier:   notifier,
		clock:      clock,
		logger:     logger,
	}
}

func (s *registrationService) Permissions(ctx context.Context, actor *domain.Member, eventID, name string) (*domain.EventPermissions, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	var reg *domain.EventRegistration
	if actor != nil || name != "" {
		memberID := ""
		if actor != nil {
			memberID = actor.ID
		}
		reg, err = s.regRepo.GetByEventMemberName(ctx, eventID, memberID, name)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			if errors.Is(err, domain.ErrAmbiguous) {
				return nil, domain.ErrAmbiguous
			}
			return nil, fmt.Errorf("get registration: %w", err)
		}
	}

	return EvaluatePermissions(actor, event, reg, name, s.clock.Now()), nil
}

func (s *registrationService) Register(ctx context.Context, actor *domain.Member, eventID, name string) (*domain.EventRegistration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	reg, err := s.lookup(ctx, event.ID, actor, name)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	perms := EvaluatePermissions(actor, event, reg, name, now)

	switch {
	case perms.CreateRegistration:
		if reg == nil {
			reg = &domain.EventRegistration{
				EventID: event.ID,
				Date:    now,
			}
			// Exactly one of member and name identifies the registration.
			if name != "" {
				reg.Name = name
			} else {
				reg.MemberID = &actor.ID
			}
			if err := s.regRepo.Create(ctx, reg); err != nil {
				if errors.Is(err, domain.ErrDuplicateRegistration) {
					// Lost a race against a concurrent register call.
					return nil, domain.DenyRegistration(domain.MsgAlreadyRegistered)
				}
				return nil, fmt.Errorf("create registration: %w", err)
			}
		} else if !reg.IsActive() {
			if reg.IsLateCancellation(event) {
				return nil, domain.DenyRegistration(domain.MsgLateReRegistration)
			}
			reg.Date = now
			reg.DateCancelled = nil
			if err := s.regRepo.Update(ctx, reg); err != nil {
				return nil, fmt.Errorf("reactivate registration: %w", err)
			}
		}
		if err := s.fillQueuePosition(ctx, event, reg); err != nil {
			return nil, err
		}
		return reg, nil
	case perms.CancelRegistration:
		return nil, domain.DenyRegistration(domain.MsgAlreadyRegistered)
	default:
		return nil, domain.DenyRegistration(domain.MsgMayNotRegister)
	}
}

func (s *registrationService) Cancel(ctx context.Context, actor *domain.Member, eventID, name string) (*domain.EventRegistration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	reg, err := s.lookup(ctx, event.ID, actor, name)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	perms := EvaluatePermissions(actor, event, reg, name, now)
	if !perms.CancelRegistration || reg == nil {
		return nil, domain.DenyRegistration(domain.MsgMayNotDeregister)
	}

	active, err := s.regRepo.ListActiveByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list active registrations: %w", err)
	}
	confirmed := queuePositionFor(active, event.MaxParticipants, reg.ID) == nil

	// Notifications are best effort; a failed send never fails the cancellation.
	if confirmed {
		if err := s.notifier.NotifyFirstWaiting(ctx, event); err != nil {
			s.logger.Error("notify first waiting", "event_id", event.ID, "err", err)
		}
		if event.SendCancelEmail && event.AfterCancelDeadline(now) {
			if err := s.notifier.NotifyOrganiser(ctx, event, reg); err != nil {
				s.logger.Error("notify organiser", "event_id", event.ID, "err", err)
			}
		}
	}

	// Field values entered on registering are kept for the organiser's records.
	reg.DateCancelled = &now
	if err := s.regRepo.Update(ctx, reg); err != nil {
		return nil, fmt.Errorf("cancel registration: %w", err)
	}
	reg.QueuePosition = nil
	return reg, nil
}

func (s *registrationService) UpdateFields(ctx context.Context, actor *domain.Member, lookup domain.RegistrationLookup, values []domain.FieldValueInput) error {
	reg, event, name, err := s.resolve(ctx, lookup)
	if err != nil {
		return err
	}

	if actor == nil {
		actor, err = s.registrationMember(ctx, reg)
		if err != nil {
			return err
		}
	}

	if len(values) == 0 {
		return nil
	}

	perms := EvaluatePermissions(actor, event, reg, name, s.clock.Now())
	if !perms.UpdateRegistration && !perms.ManageEvent {
		return domain.DenyRegistration(domain.MsgMayNotUpdate)
	}

	for _, input := range values {
		field, err := s.fieldRepo.GetByID(ctx, input.FieldID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get field: %w", err)
		}
		value := input.Value
		if value == nil {
			value = field.Type.DefaultValue()
		}
		if err := s.fieldRepo.SetValue(ctx, reg.ID, field.ID, value); err != nil {
			return fmt.Errorf("set field value: %w", err)
		}
	}
	return nil
}

func (s *registrationService) Fields(ctx context.Context, actor *domain.Member, lookup domain.RegistrationLookup) ([]*domain.FieldEntry, error) {
	reg, event, name, err := s.resolve(ctx, lookup)
	if err != nil {
		return nil, err
	}

	// The registrant's own update permission governs access; organisers may always
	// inspect.
	registrant, err := s.registrationMember(ctx, reg)
	if err != nil {
		return nil, err
	}
	perms := EvaluatePermissions(registrant, event, reg, name, s.clock.Now())
	if !perms.UpdateRegistration && !IsOrganiser(actor, event) {
		return nil, domain.DenyRegistration(domain.MsgMayNotUpdate)
	}

	fields, err := s.fieldRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	values, err := s.fieldRepo.GetValues(ctx, reg.ID)
	if err != nil {
		return nil, fmt.Errorf("get field values: %w", err)
	}

	entries := make([]*domain.FieldEntry, 0, len(fields))
	for _, field := range fields {
		entries = append(entries, &domain.FieldEntry{Field: field, Value: values[field.ID]})
	}
	return entries, nil
}

func (s *registrationService) UpdateByOrganiser(ctx context.Context, actor *domain.Member, registrationID string, update domain.OrganiserUpdate) (*domain.EventRegistration, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !IsOrganiser(actor, event) {
		return nil, domain.DenyRegistration(domain.MsgMayNotUpdate)
	}

	if update.PaymentType != nil {
		if *update.PaymentType == domain.PaymentNone {
			if reg.PaymentID != nil {
				if err := s.payments.DeletePayment(ctx, reg, actor); err != nil {
					return nil, fmt.Errorf("delete payment: %w", err)
				}
			}
		} else {
			if _, err := s.payments.CreatePayment(ctx, reg, actor, *update.PaymentType); err != nil {
				return nil, fmt.Errorf("create payment: %w", err)
			}
		}
	}
	if update.Present != nil {
		reg.Present = *update.Present
	}

	if err := s.regRepo.Update(ctx, reg); err != nil {
		return nil, fmt.Errorf("update registration: %w", err)
	}
	if err := s.fillQueuePosition(ctx, event, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *registrationService) QueuePositions(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	regs, err := s.regRepo.ListActiveByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list active registrations: %w", err)
	}
	assignQueuePositions(regs, event.MaxParticipants)
	if regs == nil {
		regs = []*domain.EventRegistration{}
	}
	return regs, nil
}

func (s *registrationService) IsRegistered(ctx context.Context, member *domain.Member, eventID string) (*bool, error) {
	if member == nil {
		return nil, nil
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.RegistrationRequired() {
		return nil, nil
	}
	reg, err := s.regRepo.GetByEventAndMember(ctx, eventID, member.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	registered := reg != nil && reg.IsActive()
	return &registered, nil
}

// lookup finds the registration identified by the guest name, or the member's own,
// cancelled or not. Returns (nil, nil) when there is none.
func (s *registrationService) lookup(ctx context.Context, eventID string, member *domain.Member, name string) (*domain.EventRegistration, error) {
	var (
		reg *domain.EventRegistration
		err error
	)
	switch {
	case name != "":
		reg, err = s.regRepo.GetByEventMemberName(ctx, eventID, "", name)
	case member != nil:
		reg, err = s.regRepo.GetByEventAndMember(ctx, eventID, member.ID)
	default:
		return nil, nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if errors.Is(err, domain.ErrAmbiguous) {
			return nil, domain.ErrAmbiguous
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// resolve finds the registration targeted by the lookup, plus its event and guest
// name. Missing registrations surface the user-facing "not registered" denial;
// ambiguous composite lookups surface ErrAmbiguous.
func (s *registrationService) resolve(ctx context.Context, lookup domain.RegistrationLookup) (*domain.EventRegistration, *domain.Event, string, error) {
	var (
		reg *domain.EventRegistration
		err error
	)
	if lookup.RegistrationID != "" {
		reg, err = s.regRepo.GetByID(ctx, lookup.RegistrationID)
	} else {
		reg, err = s.regRepo.GetByEventMemberName(ctx, lookup.EventID, lookup.MemberID, lookup.Name)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, "", domain.DenyRegistration(domain.MsgNotRegistered)
		}
		if errors.Is(err, domain.ErrAmbiguous) {
			return nil, nil, "", domain.ErrAmbiguous
		}
		return nil, nil, "", fmt.Errorf("get registration: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("get event: %w", err)
	}
	return reg, event, reg.Name, nil
}

// registrationMember loads the member a registration belongs to; nil for guest
// registrations.
func (s *registrationService) registrationMember(ctx context.Context, reg *domain.EventRegistration) (*domain.Member, error) {
	if reg.MemberID == nil {
		return nil, nil
	}
	member, err := s.memberRepo.GetByID(ctx, *reg.MemberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return member, nil
}

// fillQueuePosition derives the registration's current queue position.
func (s *registrationService) fillQueuePosition(ctx context.Context, event *domain.Event, reg *domain.EventRegistration) error {
	active, err := s.regRepo.ListActiveByEventID(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("list active registrations: %w", err)
	}
	reg.QueuePosition = queuePositionFor(active, event.MaxParticipants, reg.ID)
	return nil
}

// systemClock is the production Clock.
type systemClock struct{}

// NewSystemClock returns a Clock backed by time.Now.
func NewSystemClock() domain.Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}
