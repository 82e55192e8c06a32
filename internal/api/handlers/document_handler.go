package handlers

import (
	"fmt"
	"net/http"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

type DocumentHandler struct {
	store core.ObjectStore
}

func NewDocumentHandler(store core.ObjectStore) *DocumentHandler {
	return &DocumentHandler{store: store}
}

type documentListResponse struct {
	Documents []models.StoredDocument `json:"documents"`
	Count     int                     `json:"count"`
}

// ListDocuments enumerates the stored PDFs with their origin metadata.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []models.StoredDocument{}
	}
	writeJSON(w, http.StatusOK, documentListResponse{Documents: docs, Count: len(docs)})
}

// ClearDocuments deletes every stored PDF. The index keeps serving stale
// passages until the next sync runs.
func (h *DocumentHandler) ClearDocuments(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.DeleteAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": deleted,
		"message": fmt.Sprintf("Deleted %d documents", deleted),
	})
}
