// Package main runs the club portal HTTP server.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"clubportal/config"
	_ "clubportal/docs"
	"clubportal/internal/adapters/auth"
	"clubportal/internal/adapters/email"
	delivery "clubportal/internal/delivery/http"
	"clubportal/internal/delivery/http/controllers"
	"clubportal/internal/delivery/http/middleware"
	"clubportal/internal/repository/postgres"
	"clubportal/internal/services"
)

// @title Club Portal API
// @version 1.0
// @description Event registration and membership API for the association portal.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	pingCtx, cancelPing := context.WithTimeout(ctx, 10*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("migrate", "err", err)
		os.Exit(1)
	}

	// Repositories
	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewEventRegistrationRepository(db)
	fieldRepo := postgres.NewRegistrationFieldRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := auth.NewJWTTokens(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mailer.Provider,
		FromAddress: cfg.Mailer.FromAddress,
		FromName:    cfg.Mailer.FromName,
		SES: email.SESConfig{
			Region:          cfg.Mailer.SESRegion,
			AccessKeyID:     cfg.Mailer.SESAccessKeyID,
			SecretAccessKey: cfg.Mailer.SESSecretAccessKey,
		},
	})
	if err != nil {
		logger.Error("mailer", "err", err)
		os.Exit(1)
	}
	renderer := email.NewTemplateRenderer()

	// Services
	clock := services.NewSystemClock()
	notifier := services.NewNotificationService(regRepo, memberRepo, mailer, renderer, logger)
	paymentSvc := services.NewPaymentService(paymentRepo, clock)
	registrationSvc := services.NewRegistrationService(
		eventRepo, regRepo, fieldRepo, memberRepo,
		paymentSvc, notifier, clock, logger,
	)
	eventSvc := services.NewEventService(eventRepo, regRepo, registrationSvc, clock)
	minimisationSvc := services.NewDataMinimisationService(regRepo, clock, logger)
	authSvc := services.NewAuthService(memberRepo, hasher, tokens, cfg.JWTExpiry)

	// Controllers
	authController := controllers.NewAuthController(logger, authSvc)
	eventController := controllers.NewEventController(logger, eventSvc, memberRepo)
	registrationController := controllers.NewRegistrationController(logger, registrationSvc, memberRepo)
	adminController := controllers.NewAdminController(logger, minimisationSvc, memberRepo)

	mux := delivery.NewRouter(tokens, authController, eventController, registrationController, adminController)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "err", err)
	}
	logger.Info("server stopped")
}
