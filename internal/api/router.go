package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/card-workbench/internal/api/handler"
	customMiddleware "github.com/Rrens/card-workbench/internal/api/middleware"
	"github.com/Rrens/card-workbench/internal/config"
	"github.com/Rrens/card-workbench/internal/llm"
	"github.com/Rrens/card-workbench/internal/security"
	"github.com/Rrens/card-workbench/internal/service"
)

// NewRouter creates and configures the HTTP router. limiter may be nil,
// which disables rate limiting.
func NewRouter(cfg *config.Config, svc *service.WorkbenchService, llmRouter *llm.Router, limiter customMiddleware.Limiter) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager, cfg.Auth.Required)

	sessions := handler.NewSessionHandler(svc, cfg.Workbench.MaxPageSize)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(svc))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			if limiter != nil {
				r.Use(customMiddleware.NewRateLimitMiddleware(limiter).Limit)
			}

			r.Get("/llm-providers", handler.ListLLMProviders(llmRouter))
			r.Post("/cache/flush", handler.FlushCache(svc))

			r.Post("/sessions", sessions.Create)
			r.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Get("/", sessions.Get)
				r.Delete("/", sessions.Delete)
				r.Put("/view", sessions.SetView)

				r.Post("/search", sessions.Search)
				r.Get("/blocks", sessions.Blocks)
				r.Delete("/blocks", sessions.ClearBlocks)
				r.Put("/assistant/filters", sessions.SetFilters)
				r.Put("/assistant/visibility", sessions.SetVisibility)

				r.Route("/selection", func(r chi.Router) {
					r.Get("/", sessions.Selection)
					r.Delete("/", sessions.ClearSelection)
					r.Put("/{cardID}", sessions.Toggle)
					r.Post("/bulk", sessions.Bulk)
					r.Post("/all", sessions.MarkAll)
					r.Post("/recommended", sessions.Recommended)
					r.Post("/restore", sessions.RestoreSelection)
				})

				r.Route("/chat", func(r chi.Router) {
					r.Get("/", sessions.Chat)
					r.Delete("/", sessions.ClearChat)
					r.Post("/start", sessions.StartChat)
					r.Post("/messages", sessions.SendMessage)
					r.Get("/messages/{index}/copy", sessions.CopyMessage)
					r.Post("/restore", sessions.RestoreChat)
					r.Get("/export", sessions.ExportChat)
					r.Put("/settings", sessions.ChatSettings)
					r.Get("/snapshots", sessions.Snapshots)
				})

				r.Route("/registry", func(r chi.Router) {
					r.Get("/", sessions.Registry)
					r.Post("/apply", sessions.ApplyRegistry)
					r.Put("/page-size", sessions.SetPageSize)
					r.Post("/next", sessions.NextPage)
					r.Post("/prev", sessions.PrevPage)
					r.Put("/mode", sessions.SetMode)
					r.Put("/selected/{cardID}", sessions.CheckRow)
					r.Post("/rows/{cardID}/open", sessions.OpenInChat)
				})

				r.Post("/cards", sessions.CreateCard)
				r.Get("/cards/{cardID}", sessions.CardDetail)
			})
		})
	})

	return r
}
