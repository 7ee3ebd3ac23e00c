package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/portalmtg/portal/internal/api/response"
	"github.com/portalmtg/portal/internal/collection"
	"github.com/portalmtg/portal/internal/importer"
)

// ImportHandler creates collections from pasted lists, vendor CSV exports
// and collection snapshots.
type ImportHandler struct {
	importer *importer.Service
	manager  *collection.Manager
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(svc *importer.Service, manager *collection.Manager) *ImportHandler {
	return &ImportHandler{importer: svc, manager: manager}
}

// ImportRequest is the body for a collection import.
type ImportRequest struct {
	Name    string `json:"name"`
	Format  string `json:"format"` // "text", "csv" or "snapshot"
	Content string `json:"content"`
}

// ImportResult is returned after an import completes.
type ImportResult struct {
	Collection *collection.Collection `json:"collection"`
	Resolved   int                    `json:"resolved"`
	Unresolved int                    `json:"unresolved"`
	Skipped    int                    `json:"skipped"`
}

// ImportCollection parses the payload, resolves the entries against the
// card catalog and creates a collection from whatever resolved. Unresolved
// entries are reported, not fatal.
func (h *ImportHandler) ImportCollection(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Name == "" {
		response.BadRequest(w, errors.New("collection name is required"))
		return
	}
	if req.Content == "" {
		response.BadRequest(w, errors.New("content is required"))
		return
	}

	var result importer.Result
	switch req.Format {
	case "text", "":
		result = h.importer.ImportText(r.Context(), req.Content)
	case "csv":
		result = h.importer.ImportCSV(r.Context(), req.Content)
	case "snapshot":
		var err error
		result, err = h.importer.ImportSnapshot([]byte(req.Content))
		if err != nil {
			response.BadRequest(w, err)
			return
		}
	default:
		response.BadRequest(w, errors.New("unknown import format"))
		return
	}

	col, err := h.manager.CreateFromImport(r.Context(), req.Name, result.Holding.IDs, result.Holding.Quantities)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, ImportResult{
		Collection: col,
		Resolved:   result.Resolved,
		Unresolved: result.Unresolved,
		Skipped:    result.Skipped,
	})
}
