package api

import (
	"net/http"
	"time"

	"formgate/internal/api/handler"
	custommw "formgate/internal/api/middleware"
	"formgate/internal/app/service"
	"formgate/internal/common/security"
	"formgate/internal/platform/ratelimit"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	submissionService *service.SubmissionService,
	limiter *ratelimit.Limiter,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(custommw.Cors)

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(api chi.Router) {
		// Public intake endpoint, rate limited per client IP.
		formHandler := handler.NewFormHandler(submissionService)
		api.Route("/forms", func(forms chi.Router) {
			forms.Use(custommw.RateLimit(limiter))
			formHandler.RegisterRoutes(forms)
		})

		api.Route("/admin", func(admin chi.Router) {
			// Login is the one unauthenticated admin route.
			authHandler := handler.NewAuthHandler(authService)
			authHandler.RegisterRoutes(admin)

			adminHandler := handler.NewAdminHandler(submissionService)
			admin.Group(func(protected chi.Router) {
				protected.Use(jwtauth.Verifier(security.TokenAuth))
				protected.Use(custommw.Authenticator)
				adminHandler.RegisterRoutes(protected)
			})
		})
	})

	return r
}
