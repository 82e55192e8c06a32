package handlers

import (
	"net/http"
	"time"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
)

type HealthHandler struct {
	store     core.ObjectStore
	retriever core.Retriever
}

func NewHealthHandler(store core.ObjectStore, retriever core.Retriever) *HealthHandler {
	return &HealthHandler{store: store, retriever: retriever}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Documents int               `json:"documents"`
}

// Health probes storage and the retrieval service. Degraded dependencies
// flip the overall status but the endpoint itself still answers 200 so
// load balancers can read the detail.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  map[string]string{"storage": "ok", "retrieval": "ok"},
	}

	if err := h.store.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Services["storage"] = err.Error()
	} else if stats, err := h.store.Stats(r.Context()); err == nil {
		resp.Documents = stats.DocumentCount
	}

	if err := h.retriever.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Services["retrieval"] = err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}
