package controllers

import (
	"log/slog"
	"net/http"

	"clubportal/internal/delivery/http/helpers"
	"clubportal/internal/delivery/http/middleware"
	"clubportal/internal/domain"
)

type AdminController struct {
	Logger     *slog.Logger
	Service    domain.DataMinimisationService
	MemberRepo domain.MemberRepository
}

func NewAdminController(logger *slog.Logger, svc domain.DataMinimisationService, members domain.MemberRepository) *AdminController {
	return &AdminController{
		Logger:     logger,
		Service:    svc,
		MemberRepo: members,
	}
}

// MinimisationSuccessResponse is the success envelope for the data minimisation sweep.
type MinimisationSuccessResponse struct {
	Data  []*domain.EventRegistration `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// RunDataMinimisation godoc
// @Summary Run the personal data minimisation sweep
// @Description Scrubs personal data from registrations of events that ended more than five years ago. Pass dry_run=true to preview without writing.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param dry_run query bool false "Preview only"
// @Success 200 {object} controllers.MinimisationSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/data-minimisation [post]
func (c *AdminController) RunDataMinimisation(w http.ResponseWriter, r *http.Request) {
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
	if !actor.IsAdmin {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		return
	}

	dryRun := r.URL.Query().Get("dry_run") == "true"
	scrubbed, err := c.Service.Execute(r.Context(), dryRun)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, scrubbed)
}
