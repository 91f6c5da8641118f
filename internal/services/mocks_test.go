package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"clubportal/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a constant time so permission checks are deterministic.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type mockEventRepository struct {
	events map[string]*domain.Event
	err    error
}

func (m *mockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	if event.ID == "" {
		event.ID = fmt.Sprintf("e%d", len(m.events)+1)
	}
	if m.events == nil {
		m.events = map[string]*domain.Event{}
	}
	m.events[event.ID] = event
	return nil
}

func (m *mockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	event, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return event, nil
}

func (m *mockEventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var events []*domain.Event
	for _, event := range m.events {
		if event.End.After(now) {
			events = append(events, event)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events, nil
}

type mockRegistrationRepository struct {
	regs      []*domain.EventRegistration
	createErr error
	err       error

	created []*domain.EventRegistration
	updated []*domain.EventRegistration

	scrubbed       []*domain.EventRegistration
	scrubbedCutoff time.Time
	scrubbedDryRun bool
}

func (m *mockRegistrationRepository) Create(ctx context.Context, reg *domain.EventRegistration) error {
	if m.createErr != nil {
		return m.createErr
	}
	if reg.ID == "" {
		reg.ID = fmt.Sprintf("r%d", len(m.regs)+1)
	}
	m.regs = append(m.regs, reg)
	m.created = append(m.created, reg)
	return nil
}

func (m *mockRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, reg := range m.regs {
		if reg.ID == id {
			return reg, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRegistrationRepository) GetByEventAndMember(ctx context.Context, eventID, memberID string) (*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, reg := range m.regs {
		if reg.EventID == eventID && reg.MemberID != nil && *reg.MemberID == memberID {
			return reg, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRegistrationRepository) GetByEventMemberName(ctx context.Context, eventID, memberID, name string) (*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	var matches []*domain.EventRegistration
	for _, reg := range m.regs {
		if reg.EventID != eventID || reg.Name != name {
			continue
		}
		if memberID == "" {
			if reg.MemberID != nil {
				continue
			}
		} else if reg.MemberID == nil || *reg.MemberID != memberID {
			continue
		}
		matches = append(matches, reg)
	}
	switch len(matches) {
	case 0:
		return nil, domain.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, domain.ErrAmbiguous
	}
}

func (m *mockRegistrationRepository) ListActiveByEventID(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	var active []*domain.EventRegistration
	for _, reg := range m.regs {
		if reg.EventID == eventID && reg.IsActive() {
			active = append(active, reg)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Date.Equal(active[j].Date) {
			return active[i].ID < active[j].ID
		}
		return active[i].Date.Before(active[j].Date)
	})
	return active, nil
}

func (m *mockRegistrationRepository) Update(ctx context.Context, reg *domain.EventRegistration) error {
	if m.err != nil {
		return m.err
	}
	m.updated = append(m.updated, reg)
	for i, existing := range m.regs {
		if existing.ID == reg.ID {
			m.regs[i] = reg
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockRegistrationRepository) ScrubEndedBefore(ctx context.Context, cutoff time.Time, dryRun bool) ([]*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.scrubbedCutoff = cutoff
	m.scrubbedDryRun = dryRun
	return m.scrubbed, nil
}

type setValueCall struct {
	registrationID string
	fieldID        string
	value          any
}

type mockFieldRepository struct {
	fields map[string]*domain.RegistrationInformationField
	values map[string]map[string]any
	err    error

	setCalls []setValueCall
}

func (m *mockFieldRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.RegistrationInformationField, error) {
	if m.err != nil {
		return nil, m.err
	}
	var fields []*domain.RegistrationInformationField
	for _, field := range m.fields {
		if field.EventID == eventID {
			fields = append(fields, field)
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Order < fields[j].Order })
	return fields, nil
}

func (m *mockFieldRepository) GetByID(ctx context.Context, fieldID string) (*domain.RegistrationInformationField, error) {
	if m.err != nil {
		return nil, m.err
	}
	field, ok := m.fields[fieldID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return field, nil
}

func (m *mockFieldRepository) SetValue(ctx context.Context, registrationID, fieldID string, value any) error {
	if m.err != nil {
		return m.err
	}
	m.setCalls = append(m.setCalls, setValueCall{registrationID: registrationID, fieldID: fieldID, value: value})
	if m.values == nil {
		m.values = map[string]map[string]any{}
	}
	if m.values[registrationID] == nil {
		m.values[registrationID] = map[string]any{}
	}
	m.values[registrationID][fieldID] = value
	return nil
}

func (m *mockFieldRepository) GetValues(ctx context.Context, registrationID string) (map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	values := m.values[registrationID]
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

type mockMemberRepository struct {
	members map[string]*domain.Member
	err     error
}

func (m *mockMemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	member, ok := m.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return member, nil
}

func (m *mockMemberRepository) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, member := range m.members {
		if member.Email == email {
			return member, nil
		}
	}
	return nil, domain.ErrNotFound
}

type paymentCall struct {
	registrationID string
	payType        domain.PaymentType
}

type mockPaymentService struct {
	err     error
	created []paymentCall
	deleted []string
}

func (m *mockPaymentService) CreatePayment(ctx context.Context, reg *domain.EventRegistration, processedBy *domain.Member, payType domain.PaymentType) (*domain.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, paymentCall{registrationID: reg.ID, payType: payType})
	paymentID := "p-" + reg.ID
	reg.PaymentID = &paymentID
	return &domain.Payment{ID: paymentID, RegistrationID: reg.ID, Type: payType}, nil
}

func (m *mockPaymentService) DeletePayment(ctx context.Context, reg *domain.EventRegistration, actor *domain.Member) error {
	if m.err != nil {
		return m.err
	}
	if reg.PaymentID == nil {
		return domain.ErrNotFound
	}
	m.deleted = append(m.deleted, *reg.PaymentID)
	reg.PaymentID = nil
	return nil
}

type mockNotificationService struct {
	err            error
	waitingCalls   int
	organiserCalls int
}

func (m *mockNotificationService) NotifyFirstWaiting(ctx context.Context, event *domain.Event) error {
	m.waitingCalls++
	return m.err
}

func (m *mockNotificationService) NotifyOrganiser(ctx context.Context, event *domain.Event, reg *domain.EventRegistration) error {
	m.organiserCalls++
	return m.err
}

type mockMailer struct {
	err  error
	sent []sentMail
}

type sentMail struct {
	to      string
	subject string
}

func (m *mockMailer) Send(to, subject, htmlBody, textBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}
