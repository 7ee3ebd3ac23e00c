package handlers

import (
	"errors"
	"net/http"

	"github.com/portalmtg/portal/internal/api/response"
	"github.com/portalmtg/portal/internal/pricing"
)

// PriceHandler handles price lookup API requests.
type PriceHandler struct {
	pricing *pricing.Service
}

// NewPriceHandler creates a new PriceHandler.
func NewPriceHandler(svc *pricing.Service) *PriceHandler {
	return &PriceHandler{pricing: svc}
}

// PriceResult is the response body for a price lookup.
type PriceResult struct {
	Name  string  `json:"name"`
	Set   string  `json:"set"`
	Price float64 `json:"price"`
}

// GetPrice resolves a vendor price for one card. Cached prices return
// immediately; everything else waits its turn in the lookup queue. A zero
// price means the lookup failed or the vendor lists no offer.
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	set := r.URL.Query().Get("set")
	if name == "" || set == "" {
		response.BadRequest(w, errors.New("query parameters name and set are required"))
		return
	}
	bypass := r.URL.Query().Get("refresh") == "true"

	select {
	case price := <-h.pricing.GetPrice(name, set, bypass):
		response.Success(w, PriceResult{Name: name, Set: set, Price: price})
	case <-r.Context().Done():
		response.Error(w, http.StatusGatewayTimeout, r.Context().Err())
	}
}

// ConvertUSD converts a USD amount string to the local currency using the
// session exchange rate.
func (h *PriceHandler) ConvertUSD(w http.ResponseWriter, r *http.Request) {
	usd := r.URL.Query().Get("usd")
	if usd == "" {
		response.BadRequest(w, errors.New("query parameter usd is required"))
		return
	}

	converted := h.pricing.ConvertUSD(r.Context(), usd)
	response.Success(w, map[string]float64{"converted": converted})
}
