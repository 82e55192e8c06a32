package handlers

import (
	"net/http"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/services"
)

type StatusHandler struct {
	status *services.StatusService
}

func NewStatusHandler(status *services.StatusService) *StatusHandler {
	return &StatusHandler{status: status}
}

// TriggerSync starts an index sync job and returns its handle.
func (h *StatusHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	job, err := h.status.TriggerSync(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// DetailedStatus returns the combined storage, batch, and sync view.
func (h *StatusHandler) DetailedStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.status.DetailedStatus(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
