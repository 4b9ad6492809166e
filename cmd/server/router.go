package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	appmiddleware "github.com/phrazzld/logoforge-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(appmiddleware.TraceMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(appmiddleware.IdentityMiddleware)

		r.Post("/projects", app.projectHandler.CreateProject)
		r.Get("/projects/{id}", app.projectHandler.GetProject)

		r.Post("/units/{id}/refinements", app.refinementHandler.RefineUnit)
		r.Post("/units/{id}/brand-kit", app.brandKitHandler.CreateKit)

		r.Get("/batches/{id}/progress", app.progressHandler.GetProgress)
		r.Get("/batches/{id}/stream", app.streamHandler.Stream)
	})

	return r
}
