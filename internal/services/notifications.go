package services

import (
	"context"
	"fmt"
	"log/slog"

	"clubportal/internal/domain"
)

type notificationService struct {
	regRepo    domain.EventRegistrationRepository
	memberRepo domain.MemberRepository
	mailer     domain.Mailer
	renderer   domain.EmailTemplateRenderer
	logger     *slog.Logger
}

// NewNotificationService returns the NotificationService that emails registrants and
// organisers via the configured mailer.
func NewNotificationService(
	regRepo domain.EventRegistrationRepository,
	memberRepo domain.MemberRepository,
	mailer domain.Mailer,
	renderer domain.EmailTemplateRenderer,
	logger *slog.Logger,
) domain.NotificationService {
	return &notificationService{
		regRepo:    regRepo,
		memberRepo: memberRepo,
		mailer:     mailer,
		renderer:   renderer,
		logger:     logger,
	}
}

func (s *notificationService) NotifyFirstWaiting(ctx context.Context, event *domain.Event) error {
	active, err := s.regRepo.ListActiveByEventID(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("list active registrations: %w", err)
	}
	waiting := firstWaiting(active, event.MaxParticipants)
	if waiting == nil {
		return nil
	}
	if waiting.MemberID == nil {
		// Guest registrations carry no email address.
		s.logger.Info("first waiting registration has no member, skipping email",
			"event_id", event.ID, "registration_id", waiting.ID)
		return nil
	}
	member, err := s.memberRepo.GetByID(ctx, *waiting.MemberID)
	if err != nil {
		return fmt.Errorf("get member: %w", err)
	}

	data := &domain.WaitingPromotedEmailData{
		Email:      member.Email,
		FirstName:  member.FirstName,
		EventTitle: event.Title,
	}
	subject, htmlBody, textBody, err := s.renderer.Render("waiting_promoted", data)
	if err != nil {
		return fmt.Errorf("render waiting_promoted template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send waiting_promoted email: %w", err)
	}
	return nil
}

func (s *notificationService) NotifyOrganiser(ctx context.Context, event *domain.Event, reg *domain.EventRegistration) error {
	if event.OrganiserEmail == "" {
		return nil
	}
	name := reg.Name
	if reg.MemberID != nil {
		member, err := s.memberRepo.GetByID(ctx, *reg.MemberID)
		if err != nil {
			return fmt.Errorf("get member: %w", err)
		}
		name = member.FullName()
	}

	data := &domain.CancelledAfterDeadlineEmailData{
		Email:          event.OrganiserEmail,
		EventTitle:     event.Title,
		RegistrantName: name,
	}
	subject, htmlBody, textBody, err := s.renderer.Render("cancellation_organiser", data)
	if err != nil {
		return fmt.Errorf("render cancellation_organiser template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send cancellation_organiser email: %w", err)
	}
	return nil
}
