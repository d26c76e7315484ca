package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/haddadrachelle2-png/testdoc/internal/auth"
	"github.com/haddadrachelle2-png/testdoc/internal/document"
	"github.com/haddadrachelle2-png/testdoc/internal/transport/middleware"
	"github.com/haddadrachelle2-png/testdoc/internal/transport/swagger"
	"github.com/haddadrachelle2-png/testdoc/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, documentHandler *document.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Post("/auth/login", authHandler.Login)
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				if userHandler != nil {
					pr.Route("/users", func(ur chi.Router) {
						ur.Get("/me", userHandler.Me)
						ur.Get("/groups", userHandler.Groups)

						ur.Group(func(ar chi.Router) {
							ar.Use(authHandler.AdminOnly)
							ar.Post("/register", userHandler.Register)
						})
					})
				}

				if documentHandler != nil {
					pr.Route("/documents", func(dr chi.Router) {
						dr.Post("/create", documentHandler.Create)
						dr.Post("/save", documentHandler.Save)
						dr.Post("/send", documentHandler.Send)
						dr.Get("/drafts", documentHandler.ListDrafts)
						dr.Get("/sent", documentHandler.ListSent)
						dr.Get("/sent/report", documentHandler.SentReport)
						dr.Get("/inbox", documentHandler.ListInbox)
						dr.Get("/{id}", documentHandler.GetDraft)
						dr.Get("/{id}/file", documentHandler.GetFile)
						dr.Get("/{id}/destinations", documentHandler.Destinations)

						// Admin triage routes
						dr.Group(func(ar chi.Router) {
							ar.Use(authHandler.AdminOnly)
							ar.Get("/pending", documentHandler.ListPending)
							ar.Post("/markseen", documentHandler.MarkSeen)
							ar.Post("/approve-bulk", documentHandler.ApproveBulk)
							ar.Post("/approve/{id}", documentHandler.Approve)
						})
					})
				}
			})
		}
	})
}
