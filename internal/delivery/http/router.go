// Package http реализует HTTP API справочного сервера полисов
package http

import (
	"net/http"

	"github.com/frontandrew/insura/internal/delivery/http/middleware"
	"github.com/frontandrew/insura/internal/pkg/config"
	"github.com/frontandrew/insura/internal/pkg/jwt"
	"github.com/frontandrew/insura/internal/pkg/logger"
	"github.com/frontandrew/insura/internal/repository"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Router содержит все зависимости для HTTP роутера
type Router struct {
	authHandler   *AuthHandler
	policyHandler *PolicyHandler
	tokenService  *jwt.TokenService
	blacklist     repository.TokenBlacklist
	config        *config.Config
	logger        logger.Logger
}

// NewRouter создает новый HTTP router
func NewRouter(
	authHandler *AuthHandler,
	policyHandler *PolicyHandler,
	tokenService *jwt.TokenService,
	blacklist repository.TokenBlacklist,
	config *config.Config,
	logger logger.Logger,
) *Router {
	return &Router{
		authHandler:   authHandler,
		policyHandler: policyHandler,
		tokenService:  tokenService,
		blacklist:     blacklist,
		config:        config,
		logger:        logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware(middleware.CORSConfig{
		AllowedOrigins: rt.config.CORS.AllowedOrigins,
		AllowedMethods: rt.config.CORS.AllowedMethods,
		AllowedHeaders: rt.config.CORS.AllowedHeaders,
	}))

	// Health check endpoint (публичный)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes (без аутентификации)
		r.Post("/register", rt.authHandler.Register)
		r.Post("/login", rt.authHandler.Login)

		// Скачивание документа по одноразовому токену
		r.Get("/documents/{token}", rt.policyHandler.DownloadDocument)

		// Protected routes (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.tokenService, rt.blacklist, rt.logger))

			r.Get("/user", rt.authHandler.CurrentUser)
			r.Post("/logout", rt.authHandler.Logout)

			r.Route("/policies", func(r chi.Router) {
				r.Get("/", rt.policyHandler.List)
				r.Post("/", rt.policyHandler.Create)
				r.Get("/{id}", rt.policyHandler.Get)
				r.Put("/{id}", rt.policyHandler.Update)
				r.Delete("/{id}", rt.policyHandler.Delete)
				r.Post("/{id}/pdf", rt.policyHandler.GeneratePDF)
			})
		})
	})

	return r
}
