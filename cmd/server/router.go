package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskboard/internal/api"
	apiMiddleware "github.com/phrazzld/taskboard/internal/api/middleware"
	"github.com/phrazzld/taskboard/internal/domain"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.authService)
	taskHandler := api.NewTaskHandler(app.taskService)
	realtimeHandler := api.NewRealtimeHandler(app.registry, app.authService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.authService)
	authLimiter := apiMiddleware.NewAuthRateLimiter(app.config.RateLimit)

	r.Route("/auth", func(r chi.Router) {
		// Public, rate limited per client IP.
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Handler)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(apiMiddleware.RequireRoles(domain.RoleAdmin))
			r.Get("/users", authHandler.ListUsers)
			r.Delete("/users/{id}", authHandler.DeleteUser)
			r.Put("/users/{id}/role", authHandler.UpdateUserRole)
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/", taskHandler.ListTasks)
		r.Post("/", taskHandler.CreateTask)
		r.Put("/{id}", taskHandler.UpdateTask)
		r.With(apiMiddleware.RequireRoles(domain.RoleAdmin, domain.RoleManager)).
			Delete("/{id}", taskHandler.DeleteTask)
	})

	r.Get("/ws", realtimeHandler.ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
