package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portalmtg/portal/internal/api/handlers"
	"github.com/portalmtg/portal/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Collection routes
		collectionHandler := handlers.NewCollectionHandler(s.services.Collections)
		importHandler := handlers.NewImportHandler(s.services.Importer, s.services.Collections)
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", collectionHandler.ListCollections)
			r.Post("/", collectionHandler.CreateCollection)
			r.Post("/import", importHandler.ImportCollection)
			r.Get("/{collectionID}", collectionHandler.GetCollection)
			r.Delete("/{collectionID}", collectionHandler.DeleteCollection)
			r.Put("/{collectionID}/activate", collectionHandler.ActivateCollection)
			r.Post("/{collectionID}/cards", collectionHandler.ApplyCardOperation)
		})

		// Card catalog routes
		cardHandler := handlers.NewCardHandler(s.services.Catalog, s.services.Cache)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.SearchCards)
			r.Post("/resolve", cardHandler.ResolveCards)
			r.Get("/printings", cardHandler.GetPrintings)
			r.Get("/{cardID}", cardHandler.GetCard)
			r.Get("/{cardID}/rulings", cardHandler.GetRulings)
		})
		r.Get("/sets", cardHandler.GetSets)
		r.Get("/creature-types", cardHandler.GetCreatureTypes)

		// Price routes
		priceHandler := handlers.NewPriceHandler(s.services.Pricing)
		r.Route("/prices", func(r chi.Router) {
			r.Get("/", priceHandler.GetPrice)
			r.Get("/convert", priceHandler.ConvertUSD)
		})

		// Saved search routes
		searchHandler := handlers.NewSearchHandler(s.services.Store)
		r.Route("/searches", func(r chi.Router) {
			r.Get("/", searchHandler.ListSearches)
			r.Post("/", searchHandler.SaveSearch)
			r.Delete("/{searchID}", searchHandler.DeleteSearch)
		})

		// System routes
		systemHandler := handlers.NewSystemHandler(s.services.Cache, s.services.Pricing)
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", systemHandler.GetStatus)
			r.Delete("/cache", systemHandler.ClearCache)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "portal-api",
	})
}
