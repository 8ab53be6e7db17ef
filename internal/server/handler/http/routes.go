package http

import (
	"net/http"

	"github.com/beaconfund/granttrack/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// grant-tracking API. It applies JSON content-type enforcement and request
// logging, and mounts the intake, passkey and tracking endpoints under /api.
//
// Routes:
//
//	POST /api/applications  → applicationHandler.Submit
//	GET  /api/categories    → applicationHandler.Categories
//	POST /api/passkey       → passkeyHandler.GetOrIssue (issuance and recovery)
//	POST /api/login         → passkeyHandler.Login
//	GET  /api/tracking      → trackingHandler.Status (protected by PasskeyAuth)
func NewRouter(
	applicationHandler *ApplicationHandler,
	passkeyHandler *PasskeyHandler,
	trackingHandler *TrackingHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/applications", applicationHandler.Submit)
		r.Get("/categories", applicationHandler.Categories)
		r.Post("/passkey", passkeyHandler.GetOrIssue)
		r.Post("/login", passkeyHandler.Login)

		// Protected group: requires passkey + category headers
		r.Group(func(r chi.Router) {
			r.Use(middleware.PasskeyAuth)
			r.Get("/tracking", trackingHandler.Status)
		})
	})

	return r
}
