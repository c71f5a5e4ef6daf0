package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"evocrm/internal/adapters/http/middleware"
	"evocrm/platform/config"
	"evocrm/platform/logger"
)

// setupMiddlewares configura todos os middlewares globais da aplicação
func setupMiddlewares(r *chi.Mux, cfg *config.Config, logger *logger.Logger) {
	r.Use(middleware.Recovery(logger))

	r.Use(middleware.HTTPLogger(logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}
