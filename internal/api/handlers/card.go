// Package handlers contains the HTTP handlers for the REST API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/portalmtg/portal/internal/api/response"
	"github.com/portalmtg/portal/internal/pricing"
	"github.com/portalmtg/portal/internal/scryfall"
)

// CardHandler handles card catalog API requests. Search results, sets,
// creature types and rulings are cached for the lifetime of the process.
type CardHandler struct {
	catalog *scryfall.Client
	cache   *pricing.SessionCache
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(catalog *scryfall.Client, cache *pricing.SessionCache) *CardHandler {
	return &CardHandler{catalog: catalog, cache: cache}
}

// SearchCards searches the card catalog across all result pages.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, errors.New("query parameter q is required"))
		return
	}

	key := pricing.SearchKey(query)
	var cards []scryfall.Card
	if h.cache.Get(key, &cards) {
		response.Success(w, cards)
		return
	}

	cards, err := h.catalog.SearchAllCards(r.Context(), query, nil)
	if err != nil {
		response.BadGateway(w, err)
		return
	}

	h.cache.Put(key, cards)
	response.Success(w, cards)
}

// GetCard returns a single card by its catalog id.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	if cardID == "" {
		response.BadRequest(w, errors.New("card ID is required"))
		return
	}

	card, err := h.catalog.GetCard(r.Context(), cardID)
	if err != nil {
		var notFound *scryfall.NotFoundError
		if errors.As(err, &notFound) {
			response.NotFound(w, errors.New("card not found"))
			return
		}
		response.BadGateway(w, err)
		return
	}

	response.Success(w, card)
}

// GetRulings returns the rulings for a card.
func (h *CardHandler) GetRulings(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	if cardID == "" {
		response.BadRequest(w, errors.New("card ID is required"))
		return
	}

	key := pricing.RulingsKey(cardID)
	var rulings []scryfall.Ruling
	if h.cache.Get(key, &rulings) {
		response.Success(w, rulings)
		return
	}

	rulings, err := h.catalog.GetCardRulings(r.Context(), cardID)
	if err != nil {
		response.BadGateway(w, err)
		return
	}

	h.cache.Put(key, rulings)
	response.Success(w, rulings)
}

// GetPrintings returns every printing of a card by exact name.
func (h *CardHandler) GetPrintings(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		response.BadRequest(w, errors.New("query parameter name is required"))
		return
	}

	cards, err := h.catalog.GetCardPrintings(r.Context(), name)
	if err != nil {
		response.BadGateway(w, err)
		return
	}

	response.Success(w, cards)
}

// GetSets returns the set list, filtered to the set types collections
// reference.
func (h *CardHandler) GetSets(w http.ResponseWriter, r *http.Request) {
	key := pricing.SetsKey()
	var sets []scryfall.Set
	if h.cache.Get(key, &sets) {
		response.Success(w, sets)
		return
	}

	list, err := h.catalog.GetSets(r.Context())
	if err != nil {
		response.BadGateway(w, err)
		return
	}

	sets = filterSets(list.Data)
	h.cache.Put(key, sets)
	response.Success(w, sets)
}

// filterSets keeps core, expansion and masters sets and uppercases the
// codes for display.
func filterSets(all []scryfall.Set) []scryfall.Set {
	sets := []scryfall.Set{}
	for _, s := range all {
		switch s.SetType {
		case "core", "expansion", "masters":
			s.Code = strings.ToUpper(s.Code)
			sets = append(sets, s)
		}
	}
	return sets
}

// ResolveRequest is the body for a strict batch resolution.
type ResolveRequest struct {
	Identifiers []scryfall.CardIdentifier `json:"identifiers"`
}

// ResolveResponse pairs the resolved cards with the identifiers the
// catalog did not recognize.
type ResolveResponse struct {
	Cards    []scryfall.Card           `json:"cards"`
	NotFound []scryfall.CardIdentifier `json:"notFound"`
}

// ResolveCards resolves a batch of loose identifiers against the catalog.
// Unlike an import, a batch failure here fails the whole request, so the
// caller can tell an outage apart from unmatched identifiers.
func (h *CardHandler) ResolveCards(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if len(req.Identifiers) == 0 {
		response.BadRequest(w, errors.New("identifiers are required"))
		return
	}

	cards, notFound, err := h.catalog.ResolveIdentifiersStrict(r.Context(), req.Identifiers)
	if err != nil {
		response.BadGateway(w, err)
		return
	}
	if notFound == nil {
		notFound = []scryfall.CardIdentifier{}
	}

	response.Success(w, ResolveResponse{Cards: cards, NotFound: notFound})
}

// GetCreatureTypes returns the creature type catalog.
func (h *CardHandler) GetCreatureTypes(w http.ResponseWriter, r *http.Request) {
	key := pricing.CreatureTypesKey()
	var types []string
	if h.cache.Get(key, &types) {
		response.Success(w, types)
		return
	}

	types, err := h.catalog.GetCreatureTypes(r.Context())
	if err != nil {
		response.BadGateway(w, err)
		return
	}

	h.cache.Put(key, types)
	response.Success(w, types)
}
