package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portalmtg/portal/internal/api/response"
	"github.com/portalmtg/portal/internal/collection"
)

// CollectionHandler handles collection-related API requests.
type CollectionHandler struct {
	manager *collection.Manager
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(manager *collection.Manager) *CollectionHandler {
	return &CollectionHandler{manager: manager}
}

// ListCollections returns all collections plus the active collection id.
func (h *CollectionHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]interface{}{
		"collections": h.manager.List(),
		"activeId":    h.manager.ActiveID(),
	})
}

// CreateCollectionRequest is the body for creating an empty collection.
type CreateCollectionRequest struct {
	Name        string `json:"name"`
	FilterType  string `json:"filterType,omitempty"`
	FilterValue string `json:"filterValue,omitempty"`
	Query       string `json:"query,omitempty"`
}

// CreateCollection creates a new collection.
func (h *CollectionHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Name == "" {
		response.BadRequest(w, errors.New("collection name is required"))
		return
	}

	col, err := h.manager.Create(r.Context(), req.Name, req.FilterType, req.FilterValue, req.Query)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, col)
}

// GetCollection returns a single collection by id.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	col, err := h.manager.Get(chi.URLParam(r, "collectionID"))
	if err != nil {
		response.NotFound(w, err)
		return
	}

	response.Success(w, col)
}

// DeleteCollection removes a collection. The local removal is immediate;
// the store delete completes in the background.
func (h *CollectionHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(chi.URLParam(r, "collectionID")); err != nil {
		response.NotFound(w, err)
		return
	}

	response.NoContent(w)
}

// ActivateCollection marks a collection as the active one.
func (h *CollectionHandler) ActivateCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "collectionID")
	if err := h.manager.SetActive(id); err != nil {
		response.NotFound(w, err)
		return
	}

	response.Success(w, map[string]string{"activeId": id})
}

// CardOperationRequest is the body for a card-level mutation.
type CardOperationRequest struct {
	CardID   string            `json:"cardId"`
	Action   collection.Action `json:"action"`
	Quantity int               `json:"quantity,omitempty"`
}

// ApplyCardOperation applies one of the seven card actions to a collection.
// The local mutation happens before the store write, so the response
// reflects state that may still be syncing.
func (h *CollectionHandler) ApplyCardOperation(w http.ResponseWriter, r *http.Request) {
	var req CardOperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.CardID == "" {
		response.BadRequest(w, errors.New("card id is required"))
		return
	}
	if !collection.ValidAction(req.Action) {
		response.BadRequest(w, errors.New("unknown action"))
		return
	}

	collectionID := chi.URLParam(r, "collectionID")
	err := h.manager.Apply(collection.CardOperation{
		CollectionID: collectionID,
		CardID:       req.CardID,
		Action:       req.Action,
		Quantity:     req.Quantity,
	})
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	col, err := h.manager.Get(collectionID)
	if err != nil {
		response.NotFound(w, err)
		return
	}

	response.Accepted(w, col)
}
