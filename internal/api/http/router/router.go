package router

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/dtroode/sessionkeeper/internal/api/http/handler"
	"github.com/dtroode/sessionkeeper/internal/api/http/middleware"
	"github.com/dtroode/sessionkeeper/internal/logger"
	"github.com/dtroode/sessionkeeper/internal/model"
	"github.com/dtroode/sessionkeeper/internal/service"
)

// Router wires handlers and middleware into an HTTP handler.
type Router struct {
	authService    *service.Auth
	sessionService *service.Session
	rateLimiter    model.RateLimiter
	contextManager model.ContextManager
	sessionTTL     time.Duration
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	sessionService *service.Session,
	rateLimiter model.RateLimiter,
	contextManager model.ContextManager,
	sessionTTL time.Duration,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		sessionService: sessionService,
		rateLimiter:    rateLimiter,
		contextManager: contextManager,
		sessionTTL:     sessionTTL,
		logger:         logger,
	}
}

// Register builds the route table and middleware chain. Credential and
// code endpoints are rate limited; /auth/me requires a bearer access
// token; device endpoints authenticate with the session cookie inside
// the handler.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.sessionService, r.contextManager, r.logger)
	rateLimit := middleware.NewRateLimit(r.rateLimiter, r.logger)

	authHandler := handler.NewAuth(r.authService, r.sessionService, r.contextManager, r.sessionTTL, r.logger)
	deviceHandler := handler.NewDevices(r.sessionService, r.logger)

	mux := http.NewServeMux()

	limited := func(h http.HandlerFunc) http.Handler {
		return rateLimit.Handle(h)
	}

	mux.Handle("POST /auth/registration", limited(authHandler.Register))
	mux.Handle("POST /auth/registration-confirmation", limited(authHandler.Confirm))
	mux.Handle("POST /auth/registration-email-resending", limited(authHandler.ResendConfirmation))
	mux.Handle("POST /auth/login", limited(authHandler.Login))
	mux.Handle("POST /auth/password-recovery", limited(authHandler.PasswordRecovery))
	mux.Handle("POST /auth/new-password", limited(authHandler.NewPassword))

	mux.HandleFunc("POST /auth/refresh-token", authHandler.RefreshToken)
	mux.HandleFunc("POST /auth/logout", authHandler.Logout)
	mux.Handle("GET /auth/me", authenticate.Handle(http.HandlerFunc(authHandler.Me)))

	mux.HandleFunc("GET /security/devices", deviceHandler.List)
	mux.HandleFunc("DELETE /security/devices", deviceHandler.RevokeOthers)
	mux.HandleFunc("DELETE /security/devices/{deviceId}", deviceHandler.Revoke)

	corsHandler := cors.New(cors.Options{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return logging.Handle(corsHandler.Handler(mux))
}
