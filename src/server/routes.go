// Package server exposes the analysis results over a small REST API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/javierwelch/challenge-latam/src/logger"
	"github.com/javierwelch/challenge-latam/src/storage"
)

// Router is the API router.
type Router struct {
	handler    *Handler
	middleware *Middleware
	logger     *logger.Logger
}

func NewRouter(chartsDir string, store *storage.RunStore, log *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(chartsDir, store, log),
		middleware: NewMiddleware(log),
		logger:     log.Named("api-router"),
	}
}

// Handler returns the request handler so refresh loops can publish new
// results into it.
func (r *Router) Handler() *Handler {
	return r.handler
}

// Routes builds the route tree.
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)

	router.Route("/api/v1", func(router chi.Router) {
		router.Get("/health", r.handler.GetHealth)
		router.Get("/summary", r.handler.GetSummary)
		router.Get("/rates/{column}", r.handler.GetRates)
		router.Get("/runs", r.handler.GetRuns)
		router.Get("/charts/{name}", r.handler.GetChart)
	})

	return router
}
