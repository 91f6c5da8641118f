package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"clubportal/internal/delivery/http/controllers"
	"clubportal/internal/delivery/http/middleware"
	"clubportal/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	adminController *controllers.AdminController,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", optionalAuth(eventController.GetEvent))
	mux.HandleFunc("GET /events/{eventID}/permissions", optionalAuth(registrationController.Permissions))

	// Registrations. Guest flows carry a name instead of a session, so these
	// routes take optional auth and the handlers decide what is allowed.
	mux.HandleFunc("GET /events/{eventID}/registrations", registrationController.ListRegistrations)
	mux.HandleFunc("POST /events/{eventID}/registrations", optionalAuth(registrationController.Register))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", optionalAuth(registrationController.Cancel))
	mux.HandleFunc("GET /events/{eventID}/registrations/fields", optionalAuth(registrationController.Fields))
	mux.HandleFunc("PUT /events/{eventID}/registrations/fields", optionalAuth(registrationController.UpdateFields))
	mux.HandleFunc("PATCH /registrations/{registrationID}", requireAuth(registrationController.UpdateByOrganiser))

	// Admin
	mux.HandleFunc("POST /admin/data-minimisation", requireAuth(adminController.RunDataMinimisation))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
