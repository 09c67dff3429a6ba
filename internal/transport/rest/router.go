package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-request/api"
	"github.com/frahmantamala/leave-request/internal/auth"
	"github.com/frahmantamala/leave-request/internal/leave"
	"github.com/frahmantamala/leave-request/internal/transport/middleware"
	"github.com/frahmantamala/leave-request/internal/transport/swagger"
	"github.com/frahmantamala/leave-request/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Leave *leave.Handler
	Auth  *auth.Handler
	User  *user.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, dialect string, handlers Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, dialect)

	// Apply global middleware
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/ping", healthHandler.pingHandler)
	router.Get("/health", healthHandler.healthCheckHandler)

	// Employee-facing form
	if handlers.Leave != nil {
		router.Get("/", handlers.Leave.Index)
		router.Post("/apply", handlers.Leave.Submit)
	}

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.OpenAPI)
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Admin API
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if handlers.Auth == nil {
			return
		}

		r.Post("/auth/login", handlers.Auth.Login)

		r.Group(func(pr chi.Router) {
			pr.Use(handlers.Auth.AuthMiddleware)

			if handlers.User != nil {
				pr.Get("/users/me", handlers.User.GetCurrentUser)
			}

			if handlers.Leave != nil {
				pr.Route("/applications", func(ar chi.Router) {
					ar.Get("/", handlers.Leave.ListApplications)                 // GET /applications
					ar.Get("/{id}", handlers.Leave.GetApplication)               // GET /applications/:id
					ar.Patch("/{id}/approve", handlers.Leave.ApproveApplication) // PATCH /applications/:id/approve
					ar.Patch("/{id}/reject", handlers.Leave.RejectApplication)   // PATCH /applications/:id/reject
				})
			}
		})
	})
}
