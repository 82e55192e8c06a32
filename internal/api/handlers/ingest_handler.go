package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/batch"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core/extractor"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/models"
)

type IngestHandler struct {
	extractor   *extractor.Extractor
	coordinator *batch.Coordinator
	tracker     *batch.Tracker
}

func NewIngestHandler(ex *extractor.Extractor, co *batch.Coordinator, tr *batch.Tracker) *IngestHandler {
	return &IngestHandler{extractor: ex, coordinator: co, tracker: tr}
}

type processRequest struct {
	URL     string `json:"url"`
	MaxPDFs int    `json:"max_pdfs"`
}

// ProcessAndUploadPdfs discovers the page's PDF links and starts the
// ingestion batch, replying 202 with the initial status while downloads
// continue in the background.
func (h *IngestHandler) ProcessAndUploadPdfs(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	// A busy batch is rejected up front, before any page fetch happens.
	// Start re-checks under its own lock, so a race here only costs the
	// extraction work, never the single-batch invariant.
	if h.tracker.Snapshot().Status == models.BatchRunning {
		writeError(w, core.ErrBusy)
		return
	}

	links, err := h.extractor.ExtractLinks(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	status, err := h.coordinator.Start(links, req.MaxPDFs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, status)
}

// GetProcessingStatus returns the current batch progress record.
func (h *IngestHandler) GetProcessingStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Snapshot())
}

// ClearProcessingStatus resets the record to idle; rejected with 409 while
// a batch is running.
func (h *IngestHandler) ClearProcessingStatus(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.Clear(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// CancelProcessing stops the running batch. Already-stored documents stay.
func (h *IngestHandler) CancelProcessing(w http.ResponseWriter, r *http.Request) {
	h.coordinator.Cancel()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
