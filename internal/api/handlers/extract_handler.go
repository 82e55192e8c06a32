package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/extractor"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

type ExtractHandler struct {
	extractor *extractor.Extractor
	maxPDFs   int
}

func NewExtractHandler(ex *extractor.Extractor, maxPDFs int) *ExtractHandler {
	return &ExtractHandler{extractor: ex, maxPDFs: maxPDFs}
}

type extractRequest struct {
	URL     string `json:"url"`
	MaxPDFs int    `json:"max_pdfs"`
}

type extractResponse struct {
	URL      string           `json:"url"`
	PdfLinks []models.PdfLink `json:"pdf_links"`
	Count    int              `json:"count"`
	Message  string           `json:"message"`
}

// ExtractPdfLinks discovers PDF links on a page. Zero links is a normal
// 200 response with count 0, not an error.
func (h *ExtractHandler) ExtractPdfLinks(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	links, err := h.extractor.ExtractLinks(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := h.maxPDFs
	if req.MaxPDFs > 0 && req.MaxPDFs < limit {
		limit = req.MaxPDFs
	}
	if len(links) > limit {
		links = links[:limit]
	}

	writeJSON(w, http.StatusOK, extractResponse{
		URL:      req.URL,
		PdfLinks: links,
		Count:    len(links),
		Message:  fmt.Sprintf("Found %d PDF links", len(links)),
	})
}
