package services

import (
	"context"
	"testing"
	"time"

	"clubportal/internal/domain"
)

type stubRenderer struct {
	err error
}

func (r *stubRenderer) Render(templateName string, data any) (string, string, string, error) {
	if r.err != nil {
		return "", "", "", r.err
	}
	return templateName + " subject", "<p>html</p>", "text", nil
}

func TestNotificationService_NotifyFirstWaiting(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	event := &domain.Event{ID: "e1", Title: "Annual gala", MaxParticipants: intPtr(1)}
	member := &domain.Member{ID: "m2", Email: "m2@example.org", FirstName: "Pat"}

	t.Run("emails the first waiting member", func(t *testing.T) {
		regRepo := &mockRegistrationRepository{regs: []*domain.EventRegistration{
			{ID: "r1", EventID: "e1", MemberID: strPtr("m1"), Date: now.Add(-2 * time.Hour)},
			{ID: "r2", EventID: "e1", MemberID: strPtr("m2"), Date: now.Add(-time.Hour)},
		}}
		memberRepo := &mockMemberRepository{members: map[string]*domain.Member{"m2": member}}
		mailer := &mockMailer{}
		svc := NewNotificationService(regRepo, memberRepo, mailer, &stubRenderer{}, discardLogger())

		if err := svc.NotifyFirstWaiting(ctx, event); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mailer.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(mailer.sent))
		}
		if mailer.sent[0].to != "m2@example.org" {
			t.Fatalf("expected email to m2, got %s", mailer.sent[0].to)
		}
	})

	t.Run("no waiting registrations sends nothing", func(t *testing.T) {
		regRepo := &mockRegistrationRepository{regs: []*domain.EventRegistration{
			{ID: "r1", EventID: "e1", MemberID: strPtr("m1"), Date: now.Add(-time.Hour)},
		}}
		mailer := &mockMailer{}
		svc := NewNotificationService(regRepo, &mockMemberRepository{}, mailer, &stubRenderer{}, discardLogger())

		if err := svc.NotifyFirstWaiting(ctx, event); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mailer.sent) != 0 {
			t.Fatalf("expected no email, got %d", len(mailer.sent))
		}
	})

	t.Run("guest registration without member is skipped", func(t *testing.T) {
		regRepo := &mockRegistrationRepository{regs: []*domain.EventRegistration{
			{ID: "r1", EventID: "e1", MemberID: strPtr("m1"), Date: now.Add(-2 * time.Hour)},
			{ID: "r2", EventID: "e1", Name: "Guest", Date: now.Add(-time.Hour)},
		}}
		mailer := &mockMailer{}
		svc := NewNotificationService(regRepo, &mockMemberRepository{}, mailer, &stubRenderer{}, discardLogger())

		if err := svc.NotifyFirstWaiting(ctx, event); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mailer.sent) != 0 {
			t.Fatalf("expected no email for guest, got %d", len(mailer.sent))
		}
	})
}

func TestNotificationService_NotifyOrganiser(t *testing.T) {
	ctx := context.Background()

	t.Run("emails the organiser address", func(t *testing.T) {
		event := &domain.Event{ID: "e1", Title: "Annual gala", OrganiserEmail: "board@example.org"}
		member := &domain.Member{ID: "m1", FirstName: "Pat", LastName: "Jansen"}
		memberRepo := &mockMemberRepository{members: map[string]*domain.Member{"m1": member}}
		mailer := &mockMailer{}
		svc := NewNotificationService(&mockRegistrationRepository{}, memberRepo, mailer, &stubRenderer{}, discardLogger())

		reg := &domain.EventRegistration{ID: "r1", EventID: "e1", MemberID: strPtr("m1")}
		if err := svc.NotifyOrganiser(ctx, event, reg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mailer.sent) != 1 || mailer.sent[0].to != "board@example.org" {
			t.Fatalf("expected email to organiser, got %+v", mailer.sent)
		}
	})

	t.Run("missing organiser address sends nothing", func(t *testing.T) {
		event := &domain.Event{ID: "e1", Title: "Annual gala"}
		mailer := &mockMailer{}
		svc := NewNotificationService(&mockRegistrationRepository{}, &mockMemberRepository{}, mailer, &stubRenderer{}, discardLogger())

		reg := &domain.EventRegistration{ID: "r1", EventID: "e1", Name: "Guest"}
		if err := svc.NotifyOrganiser(ctx, event, reg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mailer.sent) != 0 {
			t.Fatalf("expected no email, got %d", len(mailer.sent))
		}
	})
}
