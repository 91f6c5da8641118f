package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"clubportal/internal/delivery/http/helpers"
	"clubportal/internal/delivery/http/middleware"
	"clubportal/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type RegistrationController struct {
	Logger     *slog.Logger
	Service    domain.RegistrationService
	MemberRepo domain.MemberRepository
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService, members domain.MemberRepository) *RegistrationController {
	return &RegistrationController{
		Logger:     logger,
		Service:    svc,
		MemberRepo: members,
	}
}

// actorFromContext loads the authenticated member, or returns nil when the
// request carries no session. Registration endpoints accept guest flows, so a
// missing session is not an error here.
func actorFromContext(r *http.Request, members domain.MemberRepository) (*domain.Member, error) {
	memberID, ok := middleware.MemberIDFromContext(r.Context())
	if !ok {
		return nil, nil
	}
	return members.GetByID(r.Context(), memberID)
}

// writeServiceError translates domain errors into HTTP responses. Denial
// messages travel verbatim so the frontend can show them to the member.
func writeServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var denied *domain.RegistrationError
	switch {
	case errors.As(err, &denied):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, denied.Message)
	case errors.Is(err, domain.ErrAmbiguous):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, domain.MsgAmbiguousLookup)
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid input")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}

// RegisterRequest is the request body for POST /events/{eventID}/registrations.
// Name is set for guest registrations taken by an organiser; authenticated
// members leave it empty.
type RegisterRequest struct {
	Name string `json:"name"`
}

// Validate implements helpers.Validator.
func (r *RegisterRequest) Validate() []string {
	r.Name = strings.TrimSpace(r.Name)
	if len(r.Name) > 50 {
		return []string{"name must be at most 50 characters"}
	}
	return nil
}

// RegistrationSuccessResponse is the success envelope carrying a registration.
type RegistrationSuccessResponse struct {
	Data  *domain.EventRegistration `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// Register godoc
// @Summary Register for an event
// @Description Registers the authenticated member, or a named guest, for the event. Re-registering after a cancellation reactivates the old registration.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.RegisterRequest false "Guest name (organiser flows only)"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	var req RegisterRequest
	if r.Body != nil && r.ContentLength > 0 {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}

	actor, err := actorFromContext(r, c.MemberRepo)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if actor == nil && req.Name == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	reg, err := c.Service.Register(r.Context(), actor, eventID, req.Name)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// Cancel godoc
// @Summary Cancel a registration
// @Description Cancels the member's (or named guest's) active registration for the event. Field values and the registration record are retained.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param name query string false "Guest name"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [delete]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	actor, err := actorFromContext(r, c.MemberRepo)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if actor == nil && name == "" {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	reg, err := c.Service.Cancel(r.Context(), actor, eventID, name)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// PermissionsSuccessResponse is the success envelope for the permissions endpoint.
type PermissionsSuccessResponse struct {
	Data  *domain.EventPermissions `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// Permissions godoc
// @Summary Registration permissions for an event
// @Description Returns the create/cancel/update/manage permissions the viewer holds for the event, evaluated at request time.
// @Tags registrations
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param name query string false "Guest name"
// @Success 200 {object} controllers.PermissionsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/permissions [get]
func (c *RegistrationController) Permissions(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	actor, err := actorFromContext(r, c.MemberRepo)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))

	perms, err := c.Service.Permissions(r.Context(), actor, eventID, name)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, perms)
}

// FieldsSuccessResponse is the success envelope for the fields endpoints.
type FieldsSuccessResponse struct {
	Data  []*domain.FieldEntry `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// Fields godoc
// @Summary Read registration information fields
// @Description Returns the event's registration information fields paired with the registration's current values. Unanswered fields carry a null value.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param name query string false "Guest name"
// @Success 200 {object} controllers.FieldsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations/fields [get]
func (c *RegistrationController) Fields(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	actor, err := actorFromContext(r, c.MemberRepo)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}

	lookup := domain.RegistrationLookup{
		EventID: eventID,
		Name:    strings.TrimSpace(r.URL.Query().Get("name")),
	}
	if actor != nil && lookup.Name == "" {
		lookup.MemberID = actor.ID
	}

	entries, err := c.Service.Fields(r.Context(), actor, lookup)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// UpdateFieldsRequest is the request body for PUT /events/{eventID}/registrations/fields.
type UpdateFieldsRequest struct {
	Name   string                   `json:"name"`
	Fields []domain.FieldValueInput `json:"fields"`
}

// Validate implements helpers.Validator.
func (r *UpdateFieldsRequest) Validate() []string {
	r.Name = strings.TrimSpace(r.Name)
	var problems []string
	for _, f := range r.Fields {
		if f.FieldID == "" {
			problems = append(problems, "fields[].field_id is required")
			break
		}
	}
	return problems
}

// UpdateFields godoc
// @Summary Update registration information fields
// @Description Stores field values for the registration. An empty fields list is a no-op. Null values are stored as the field type's default.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateFieldsRequest true "Field values"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations/fields [put]
func (c *RegistrationController) UpdateFields(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	var req UpdateFieldsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	actor, err := actorFromContext(r, c.MemberRepo)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}

	lookup := domain.RegistrationLookup{
		EventID: eventID,
		Name:    req.Name,
	}
	if actor != nil && lookup.Name == "" {
		lookup.MemberID = actor.ID
	}

	if err := c.Service.UpdateFields(r.Context(), actor, lookup, req.Fields); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OrganiserUpdateRequest is the request body for PATCH /registrations/{registrationID}.
type OrganiserUpdateRequest struct {
	Present     *bool   `json:"present"`
	PaymentType *string `json:"payment_type"`
}

// Validate implements helpers.Validator.
func (r *OrganiserUpdateRequest) Validate() []string {
	if r.PaymentType != nil && !domain.PaymentType(*r.PaymentType).Valid() {
		return []string{"payment_type must be one of no_payment, cash_payment, card_payment, wire_payment"}
	}
	return nil
}

// UpdateByOrganiser godoc
// @Summary Organiser update of a registration
// @Description Lets an organiser mark presence and settle payment for a registration. Setting payment_type to no_payment removes an existing payment.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Param body body controllers.OrganiserUpdateRequest true "Presence and payment"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /registrations/{registrationID} [patch]
func (c *RegistrationController) UpdateByOrganiser(w http.ResponseWriter, r *http.Request) {
	registrationID := r.PathValue("registrationID")
	if !uuidRegex.MatchString(registrationID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid registrationID")
		return
	}

	var req OrganiserUpdateRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	actor, err := actorFromContext(r, c.MemberRepo)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if actor == nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	update := domain.OrganiserUpdate{Present: req.Present}
	if req.PaymentType != nil {
		pt := domain.PaymentType(*req.PaymentType)
		update.PaymentType = &pt
	}

	reg, err := c.Service.UpdateByOrganiser(r.Context(), actor, registrationID, update)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}

// QueueSuccessResponse is the success envelope for the registrations listing.
type QueueSuccessResponse struct {
	Data  []*domain.EventRegistration `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// ListRegistrations godoc
// @Summary List active registrations for an event
// @Description Returns the event's active registrations ordered by registration date, with queue positions assigned to those over capacity.
// @Tags registrations
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.QueueSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [get]
func (c *RegistrationController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	regs, err := c.Service.QueuePositions(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}
