package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/siuupriyanshu/auth-core/internal/application/auth"
	"github.com/siuupriyanshu/auth-core/internal/config"
	"github.com/siuupriyanshu/auth-core/internal/domain"
	googleinfra "github.com/siuupriyanshu/auth-core/internal/infrastructure/google"
	jwtinfra "github.com/siuupriyanshu/auth-core/internal/infrastructure/jwt"
	"github.com/siuupriyanshu/auth-core/internal/infrastructure/smtp"
	"github.com/siuupriyanshu/auth-core/internal/transport/http/handler"
	appmiddleware "github.com/siuupriyanshu/auth-core/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo       UserRepository
	Mailer         smtp.Mailer
	JWTProvider    *jwtinfra.Provider
	GoogleVerifier *googleinfra.Verifier
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second with a burst of 10 on the sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:       deps.UserRepo,
		Mailer:         deps.Mailer,
		JWTProvider:    deps.JWTProvider,
		GoogleVerifier: deps.GoogleVerifier,
		AppBaseURL:     cfg.AppBaseURL,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check", healthH.Ping)
	r.With(sensitiveRL.Limit).Post("/register", authH.Register)
	r.With(sensitiveRL.Limit).Post("/login", authH.Login)
	r.Post("/verify-email", authH.VerifyEmail)
	r.With(sensitiveRL.Limit).Post("/forgot-password", authH.ForgotPassword)
	r.With(sensitiveRL.Limit).Post("/reset-password", authH.ResetPassword)
	r.Post("/oauth/google", authH.GoogleLogin)
	r.Post("/oauth/github", handler.NotImplemented)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Get("/me", authH.Me)
		r.Post("/logout", authH.Logout)
		r.Post("/2fa/setup", handler.NotImplemented)
		r.Post("/2fa/verify", handler.NotImplemented)
		r.Post("/2fa/disable", handler.NotImplemented)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

			r.Get("/admin/users", authH.ListUsers)
		})
	})

	return r
}
