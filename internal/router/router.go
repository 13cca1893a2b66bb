package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/go-saas-starter/docs"
	"github.com/FACorreiaa/go-saas-starter/internal/api/auth"
	"github.com/FACorreiaa/go-saas-starter/internal/api/oauth"
	"github.com/FACorreiaa/go-saas-starter/internal/api/session"
	"github.com/FACorreiaa/go-saas-starter/internal/api/stats"
	"github.com/FACorreiaa/go-saas-starter/internal/api/user"
)

// Config carries the handlers and middleware the router wires together.
// Server-wide middleware (request ID, logger, recoverer) is applied in
// main.go before this router is mounted.
type Config struct {
	AuthHandler            auth.AuthHandler
	SessionHandler         session.SessionHandler
	UserHandler            user.UserHandler
	OAuthHandler           oauth.OAuthHandler
	StatsHandler           stats.StatsHandler
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
}

// SetupRouter initializes and configures the main application router.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.SessionIDHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		// Public auth routes. Credential endpoints are rate limited per IP
		// to slow down brute force and enumeration attempts.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(20, time.Minute))

			r.Post("/auth/create-account", cfg.AuthHandler.CreateAccount)
			r.Post("/auth/log-in", cfg.AuthHandler.Login)
			r.Post("/auth/email-verification", cfg.AuthHandler.VerifyEmail)
			r.Post("/auth/email-verification/resend", cfg.AuthHandler.ResendVerification)
			r.Post("/auth/forgot-password", cfg.AuthHandler.ForgotPassword)
			r.Post("/auth/reset-password", cfg.AuthHandler.ResetPassword)
			r.Post("/auth/refresh-token", cfg.AuthHandler.RefreshToken)
		})

		// OAuth redirect flow.
		r.Get("/auth/{provider}", cfg.OAuthHandler.Begin)
		r.Get("/auth/callback/{provider}", cfg.OAuthHandler.Callback)

		// Public stats.
		r.Get("/stats/downloads", cfg.StatsHandler.GetDownloads)
		r.Post("/stats/downloads", cfg.StatsHandler.IncrementDownloads)

		// Protected routes: every request passes the full token + session
		// guard, so a revoked session is rejected here regardless of token
		// validity.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Delete("/auth/account", cfg.AuthHandler.DeleteAccount)

			r.Get("/user/profile", cfg.UserHandler.GetProfile)
			r.Put("/user/profile", cfg.UserHandler.UpdateProfile)
			r.Put("/user/username", cfg.UserHandler.ChangeUsername)

			r.Get("/user/sessions", cfg.SessionHandler.ListSessions)
			r.Delete("/user/sessions", cfg.SessionHandler.RevokeAllSessions)
			r.Delete("/user/sessions/{sessionID}", cfg.SessionHandler.RevokeSession)
		})
	})

	return r
}
