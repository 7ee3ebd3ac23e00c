package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portalmtg/portal/internal/api/response"
	"github.com/portalmtg/portal/internal/store"
)

// SearchHandler manages saved searches.
type SearchHandler struct {
	store *store.Store
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(st *store.Store) *SearchHandler {
	return &SearchHandler{store: st}
}

// ListSearches returns all saved searches.
func (h *SearchHandler) ListSearches(w http.ResponseWriter, r *http.Request) {
	searches, err := h.store.ListSearches(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, searches)
}

// SaveSearchRequest is the body for saving a search.
type SaveSearchRequest struct {
	Name     string          `json:"name"`
	Criteria json.RawMessage `json:"criteria"`
}

// SaveSearch stores a named search criteria set.
func (h *SearchHandler) SaveSearch(w http.ResponseWriter, r *http.Request) {
	var req SaveSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Name == "" {
		response.BadRequest(w, errors.New("search name is required"))
		return
	}

	search, err := h.store.SaveSearch(r.Context(), req.Name, req.Criteria)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, search)
}

// DeleteSearch removes a saved search.
func (h *SearchHandler) DeleteSearch(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSearch(r.Context(), chi.URLParam(r, "searchID")); err != nil {
		response.NotFound(w, err)
		return
	}

	response.NoContent(w)
}
