package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"clubportal/internal/delivery/http/helpers"
	"clubportal/internal/delivery/http/middleware"
	"clubportal/internal/domain"
)

type EventController struct {
	Logger     *slog.Logger
	Service    domain.EventService
	MemberRepo domain.MemberRepository
}

func NewEventController(logger *slog.Logger, svc domain.EventService, members domain.MemberRepository) *EventController {
	return &EventController{
		Logger:     logger,
		Service:    svc,
		MemberRepo: members,
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`

	RegistrationStart *time.Time `json:"registration_start"`
	RegistrationEnd   *time.Time `json:"registration_end"`
	CancelDeadline    *time.Time `json:"cancel_deadline"`
	MaxParticipants   *int       `json:"max_participants"`

	OptionalRegistrationAllowed bool `json:"optional_registration_allowed"`
	SendCancelEmail             bool `json:"send_cancel_email"`

	OrganiserGroupID string `json:"organiser_group_id"`
	OrganiserEmail   string `json:"organiser_email"`
}

// Validate implements helpers.Validator.
func (r *CreateEventRequest) Validate() []string {
	var problems []string
	if r.Title == "" {
		problems = append(problems, "title is required")
	}
	if r.OrganiserGroupID == "" {
		problems = append(problems, "organiser_group_id is required")
	}
	if r.Start.IsZero() || r.End.IsZero() {
		problems = append(problems, "start and end are required")
	} else if !r.End.After(r.Start) {
		problems = append(problems, "end must be after start")
	}
	if (r.RegistrationStart == nil) != (r.RegistrationEnd == nil) {
		problems = append(problems, "registration_start and registration_end must be set together")
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 0 {
		problems = append(problems, "max_participants must not be negative")
	}
	return problems
}

// EventSuccessResponse is the success envelope carrying an event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event managed by one of the actor's committees.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	memberID, ok := middleware.MemberIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	actor, err := c.MemberRepo.GetByID(r.Context(), memberID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}

	event := &domain.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Start:       req.Start,
		End:         req.End,

		RegistrationStart: req.RegistrationStart,
		RegistrationEnd:   req.RegistrationEnd,
		CancelDeadline:    req.CancelDeadline,
		MaxParticipants:   req.MaxParticipants,

		OptionalRegistrationAllowed: req.OptionalRegistrationAllowed,
		SendCancelEmail:             req.SendCancelEmail,

		OrganiserGroupID: req.OrganiserGroupID,
		OrganiserEmail:   req.OrganiserEmail,
	}

	if err := c.Service.Create(r.Context(), actor, event); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// EventDetailSuccessResponse is the success envelope for GET /events/{eventID}.
type EventDetailSuccessResponse struct {
	Data  *domain.EventDetail `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// GetEvent godoc
// @Summary Event detail
// @Description Returns the event with the viewer's permissions and registration status.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
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

	detail, err := c.Service.Get(r.Context(), actor, eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// EventListSuccessResponse is the success envelope for GET /events.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEvents godoc
// @Summary List upcoming events
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListUpcoming(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
