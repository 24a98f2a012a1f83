package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/accountd-dev/accountd/internal/middleware"
	"github.com/accountd-dev/accountd/internal/setup"
)

// New creates and configures the route tree. Each protected operation sits
// behind the RequireAccount middleware; public credential endpoints stay
// outside of it.
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(deps.Metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// JSON API only, no scripts/styles needed
	r.Use(mw.SecurityHeadersWithCSP(deps.Config.Public.SecureCookies, "default-src 'none'; frame-ancestors 'none'"))

	h := deps.Handler
	auth := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/v1/account", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Get("/activate/{code}", h.Activate)
		r.Post("/resend_activation", h.ResendActivation)
		r.Post("/login", h.Login)
		// Logout succeeds for anonymous callers too; identity is only used
		// to attribute the session end in the logs.
		r.With(auth.OptionalAccount()).Post("/logout", h.Logout)
		r.Post("/request_reset", h.RequestReset)
		r.Post("/reset_password", h.ResetPassword)

		// Operations requiring a resolved identity
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAccount())
			r.Get("/", h.CurrentAccount)
			r.Put("/", h.UpdateProfile)
			r.Put("/password", h.ChangePassword)
			r.Put("/email", h.ChangeEmail)
			r.Post("/profile_image", h.UploadPhoto)
		})
	})

	return r
}
