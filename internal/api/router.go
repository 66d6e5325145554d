package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/cardsearch/internal/api/handlers"
	"github.com/ramonehamilton/cardsearch/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		searchHandler := handlers.NewSearchHandler(s.session, s.includeDigital)
		r.Route("/search", func(r chi.Router) {
			r.Post("/", searchHandler.Submit)
			r.Get("/", searchHandler.GetResults)
			r.Put("/exclude", searchHandler.SetExcluded)
			r.Put("/sort", searchHandler.SetSort)
			r.Put("/page-size", searchHandler.SetPageSize)
			r.Put("/page", searchHandler.SetPage)
			r.Post("/next", searchHandler.NextPage)
			r.Post("/prev", searchHandler.PrevPage)
		})

		printsHandler := handlers.NewPrintsHandler(s.session)
		r.Route("/prints", func(r chi.Router) {
			r.Post("/", printsHandler.Inspect)
			r.Get("/", printsHandler.GetPrints)
			r.Delete("/", printsHandler.Close)
		})

		systemHandler := handlers.NewSystemHandler(s.metrics, s.store, s.wsHub.ClientCount)
		r.Get("/metrics", systemHandler.GetMetrics)
		r.Delete("/metrics", systemHandler.ResetMetrics)
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", systemHandler.GetStatus)
			r.Get("/version", systemHandler.GetVersion)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "cardsearch-api",
	})
}
