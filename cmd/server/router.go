package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/tasker-api/internal/api"
	apiMiddleware "github.com/phrazzld/tasker-api/internal/api/middleware"
	"github.com/phrazzld/tasker-api/internal/config"
)

// setupRouter builds the application's router from its services.
func (app *application) setupRouter() http.Handler {
	return newRouter(app.services, app.loginLimiter, app.config.Server, app.logger)
}

// newRouter creates the router with all routes and middleware.
func newRouter(
	svc services,
	loginLimiter apiMiddleware.Limiter,
	cfg config.ServerConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	// Forwarding headers are client-controlled unless a proxy rewrites them.
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(apiMiddleware.TraceMiddleware(logger))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authHandler := api.NewAuthHandler(svc.users, logger)
	taskHandler := api.NewTaskHandler(svc.tasks, logger)
	categoryHandler := api.NewCategoryHandler(svc.categories, logger)
	commentHandler := api.NewCommentHandler(svc.comments, logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(svc.users)

	// Public credential endpoints, throttled per client IP
	r.Group(func(r chi.Router) {
		r.Use(apiMiddleware.RateLimit(loginLimiter))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Share links work with or without a session
	r.With(authMiddleware.OptionalAuthenticate).Get("/tasks/share/{token}", taskHandler.GetSharedTask)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/logout", authHandler.Logout)
		r.Get("/user", authHandler.CurrentUser)

		r.Get("/tasks", taskHandler.ListTasks)
		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Put("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		r.Get("/tasks/{id}/comments", commentHandler.ListComments)

		r.Get("/categories", categoryHandler.ListCategories)
		r.Post("/categories", categoryHandler.CreateCategory)
		r.Get("/categories/{id}/tasks", taskHandler.ListTasksByCategory)

		r.Post("/comments", commentHandler.CreateComment)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
