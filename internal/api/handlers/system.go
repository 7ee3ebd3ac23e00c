package handlers

import (
	"net/http"

	"github.com/portalmtg/portal/internal/api/response"
	"github.com/portalmtg/portal/internal/pricing"
)

// SystemHandler exposes process status and session cache maintenance.
type SystemHandler struct {
	cache   *pricing.SessionCache
	pricing *pricing.Service
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(cache *pricing.SessionCache, svc *pricing.Service) *SystemHandler {
	return &SystemHandler{cache: cache, pricing: svc}
}

// GetStatus reports session cache and price queue state.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]interface{}{
		"cacheEntries": h.cache.Len(),
		"priceQueue":   h.pricing.QueueLen(),
	})
}

// ClearCache drops every session cache entry and reports how many were
// removed. Only keys under the application prefix are touched.
func (h *SystemHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	cleared := h.cache.Clear()
	response.Success(w, map[string]int{"cleared": cleared})
}
