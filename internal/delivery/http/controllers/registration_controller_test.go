package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"clubportal/internal/delivery/http/helpers"
	"clubportal/internal/delivery/http/middleware"
	"clubportal/internal/domain"
)

const testEventID = "11111111-1111-1111-1111-111111111111"
const testRegistrationID = "22222222-2222-2222-2222-222222222222"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type mockRegistrationService struct {
	reg     *domain.EventRegistration
	regs    []*domain.EventRegistration
	perms   *domain.EventPermissions
	entries []*domain.FieldEntry
	err     error
}

func (m *mockRegistrationService) Permissions(ctx context.Context, actor *domain.Member, eventID, name string) (*domain.EventPermissions, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.perms, nil
}

func (m *mockRegistrationService) Register(ctx context.Context, actor *domain.Member, eventID, name string) (*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reg, nil
}

func (m *mockRegistrationService) Cancel(ctx context.Context, actor *domain.Member, eventID, name string) (*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reg, nil
}

func (m *mockRegistrationService) UpdateFields(ctx context.Context, actor *domain.Member, lookup domain.RegistrationLookup, values []domain.FieldValueInput) error {
	return m.err
}

func (m *mockRegistrationService) Fields(ctx context.Context, actor *domain.Member, lookup domain.RegistrationLookup) ([]*domain.FieldEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func (m *mockRegistrationService) UpdateByOrganiser(ctx context.Context, actor *domain.Member, registrationID string, update domain.OrganiserUpdate) (*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.reg, nil
}

func (m *mockRegistrationService) QueuePositions(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.regs, nil
}

func (m *mockRegistrationService) IsRegistered(ctx context.Context, member *domain.Member, eventID string) (*bool, error) {
	return nil, m.err
}

type mockMemberRepo struct {
	members map[string]*domain.Member
}

func (m *mockMemberRepo) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	member, ok := m.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return member, nil
}

func (m *mockMemberRepo) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	return nil, domain.ErrNotFound
}

func newRegisterRequest(t *testing.T, memberID string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(http.MethodPost, "/events/"+testEventID+"/registrations", &buf)
	req.SetPathValue("eventID", testEventID)
	if memberID != "" {
		req = req.WithContext(middleware.SetMemberID(req.Context(), memberID))
	}
	return req
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return resp
}

func TestRegistrationController_Register_Success(t *testing.T) {
	member := &domain.Member{ID: "m1", CanAttendEvents: true}
	svc := &mockRegistrationService{reg: &domain.EventRegistration{ID: "r1", EventID: testEventID}}
	ctrl := NewRegistrationController(testLogger(), svc, &mockMemberRepo{members: map[string]*domain.Member{"m1": member}})

	w := httptest.NewRecorder()
	ctrl.Register(w, newRegisterRequest(t, "m1", nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Error != nil {
		t.Fatalf("expected no error, got %v", resp.Error)
	}
}

func TestRegistrationController_Register_DenialIsForwardedVerbatim(t *testing.T) {
	member := &domain.Member{ID: "m1"}
	svc := &mockRegistrationService{err: domain.DenyRegistration(domain.MsgMayNotRegister)}
	ctrl := NewRegistrationController(testLogger(), svc, &mockMemberRepo{members: map[string]*domain.Member{"m1": member}})

	w := httptest.NewRecorder()
	ctrl.Register(w, newRegisterRequest(t, "m1", nil))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Error == nil || resp.Error.Message != domain.MsgMayNotRegister {
		t.Fatalf("expected denial message %q, got %v", domain.MsgMayNotRegister, resp.Error)
	}
}

func TestRegistrationController_Register_AnonymousWithoutName(t *testing.T) {
	svc := &mockRegistrationService{}
	ctrl := NewRegistrationController(testLogger(), svc, &mockMemberRepo{})

	w := httptest.NewRecorder()
	ctrl.Register(w, newRegisterRequest(t, "", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestRegistrationController_Register_GuestName(t *testing.T) {
	svc := &mockRegistrationService{reg: &domain.EventRegistration{ID: "r1", EventID: testEventID, Name: "Jane"}}
	ctrl := NewRegistrationController(testLogger(), svc, &mockMemberRepo{})

	w := httptest.NewRecorder()
	ctrl.Register(w, newRegisterRequest(t, "", RegisterRequest{Name: "Jane"}))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
}

func TestRegistrationController_Register_InvalidEventID(t *testing.T) {
	svc := &mockRegistrationService{}
	ctrl := NewRegistrationController(testLogger(), svc, &mockMemberRepo{})

	req := httptest.NewRequest(http.MethodPost, "/events/not-a-uuid/registrations", nil)
	req.SetPathValue("eventID", "not-a-uuid")
	w := httptest.NewRecorder()
	ctrl.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestRegistrationController_Cancel_NotFound(t *testing.T) {
	member := &domain.Member{ID: "m1"}
	svc := &mockRegistrationService{err: domain.ErrNotFound}
	ctrl := NewRegistrationController(testLogger(), svc, &mockMemberRepo{members: map[string]*domain.Member{"m1": member}})

	req := httptest.NewRequest(http.MethodDelete, "/events/"+testEventID+"/registrations", nil)
	req.SetPathValue("eventID", testEventID)
	req = req.WithContext(middleware.SetMemberID(req.Context(), "m1"))
	w := httptest.NewRecorder()
	ctrl.Cancel(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRegistrationController_Fields_AmbiguousLookup(t *testing.T) {
	member := &domain.Member{ID: "m1"}
	svc := &mockRegistrationService{err: domain.ErrAmbiguous}
	ctrl := NewRegistrationController(testLogger(), svc, &mockMemberRepo{members: map[string]*domain.Member{"m1": member}})

	req := httptest.NewRequest(http.MethodGet, "/events/"+testEventID+"/registrations/fields", nil)
	req.SetPathValue("eventID", testEventID)
	req = req.WithContext(middleware.SetMemberID(req.Context(), "m1"))
	w := httptest.NewRecorder()
	ctrl.Fields(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Error == nil || resp.Error.Message != domain.MsgAmbiguousLookup {
		t.Fatalf("expected %q, got %v", domain.MsgAmbiguousLookup, resp.Error)
	}
}

func TestRegistrationController_UpdateFields_NoContent(t *testing.T) {
	member := &domain.Member{ID: "m1"}
	svc := &mockRegistrationService{}
	ctrl := NewRegistrationController(testLogger(), svc, &mockMemberRepo{members: map[string]*domain.Member{"m1": member}})

	body := bytes.NewBufferString(`{"fields":[{"field_id":"f1","value":"vegetarian"}]}`)
	req := httptest.NewRequest(http.MethodPut, "/events/"+testEventID+"/registrations/fields", body)
	req.SetPathValue("eventID", testEventID)
	req = req.WithContext(middleware.SetMemberID(req.Context(), "m1"))
	w := httptest.NewRecorder()
	ctrl.UpdateFields(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
}

func TestRegistrationController_UpdateByOrganiser(t *testing.T) {
	organiser := &domain.Member{ID: "org", OverrideOrganiser: true}
	repo := &mockMemberRepo{members: map[string]*domain.Member{"org": organiser}}

	t.Run("success", func(t *testing.T) {
		svc := &mockRegistrationService{reg: &domain.EventRegistration{ID: testRegistrationID, Present: true}}
		ctrl := NewRegistrationController(testLogger(), svc, repo)

		body := bytes.NewBufferString(`{"present":true,"payment_type":"cash_payment"}`)
		req := httptest.NewRequest(http.MethodPatch, "/registrations/"+testRegistrationID, body)
		req.SetPathValue("registrationID", testRegistrationID)
		req = req.WithContext(middleware.SetMemberID(req.Context(), "org"))
		w := httptest.NewRecorder()
		ctrl.UpdateByOrganiser(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	})

	t.Run("invalid payment type", func(t *testing.T) {
		svc := &mockRegistrationService{}
		ctrl := NewRegistrationController(testLogger(), svc, repo)

		body := bytes.NewBufferString(`{"payment_type":"iou"}`)
		req := httptest.NewRequest(http.MethodPatch, "/registrations/"+testRegistrationID, body)
		req.SetPathValue("registrationID", testRegistrationID)
		req = req.WithContext(middleware.SetMemberID(req.Context(), "org"))
		w := httptest.NewRecorder()
		ctrl.UpdateByOrganiser(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc := &mockRegistrationService{}
		ctrl := NewRegistrationController(testLogger(), svc, repo)

		body := bytes.NewBufferString(`{"present":true}`)
		req := httptest.NewRequest(http.MethodPatch, "/registrations/"+testRegistrationID, body)
		req.SetPathValue("registrationID", testRegistrationID)
		w := httptest.NewRecorder()
		ctrl.UpdateByOrganiser(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
		}
	})
}

func TestRegistrationController_ListRegistrations(t *testing.T) {
	pos := 1
	svc := &mockRegistrationService{regs: []*domain.EventRegistration{
		{ID: "r1", EventID: testEventID},
		{ID: "r2", EventID: testEventID, QueuePosition: &pos},
	}}
	ctrl := NewRegistrationController(testLogger(), svc, &mockMemberRepo{})

	req := httptest.NewRequest(http.MethodGet, "/events/"+testEventID+"/registrations", nil)
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.ListRegistrations(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Error != nil {
		t.Fatalf("expected no error, got %v", resp.Error)
	}
}
