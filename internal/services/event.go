package services

import (
	"context"
	"errors"
	"fmt"

	"clubportal/internal/domain"
)

type eventService struct {
	eventRepo domain.EventRepository
	regRepo   domain.EventRegistrationRepository
	regSvc    domain.RegistrationService
	clock     domain.Clock
}

// NewEventService creates an EventService with the given repositories and
// registration engine.
func NewEventService(
	eventRepo domain.EventRepository,
	regRepo domain.EventRegistrationRepository,
	regSvc domain.RegistrationService,
	clock domain.Clock,
) domain.EventService {
	return &eventService{
		eventRepo: eventRepo,
		regRepo:   regRepo,
		regSvc:    regSvc,
		clock:     clock,
	}
}

func (s *eventService) Create(ctx context.Context, actor *domain.Member, event *domain.Event) error {
	if actor == nil {
		return domain.ErrForbidden
	}
	if !IsOrganiser(actor, nil) && !actor.InGroup(event.OrganiserGroupID) {
		return domain.ErrForbidden
	}
	if event.Title == "" || event.OrganiserGroupID == "" {
		return domain.ErrInvalidInput
	}
	if !event.End.After(event.Start) {
		return domain.ErrInvalidInput
	}
	now := s.clock.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) Get(ctx context.Context, actor *domain.Member, eventID string) (*domain.EventDetail, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	perms, err := s.regSvc.Permissions(ctx, actor, eventID, "")
	if err != nil {
		return nil, err
	}
	registered, err := s.regSvc.IsRegistered(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	active, err := s.regRepo.ListActiveByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list active registrations: %w", err)
	}

	return &domain.EventDetail{
		Event:           event,
		Permissions:     perms,
		Registered:      registered,
		NumParticipants: len(active),
	}, nil
}

func (s *eventService) ListUpcoming(ctx context.Context) ([]*domain.Event, error) {
	events, err := s.eventRepo.ListUpcoming(ctx, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
