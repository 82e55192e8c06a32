package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/services"
)

type QAHandler struct {
	qa *services.QAService
}

func NewQAHandler(qa *services.QAService) *QAHandler {
	return &QAHandler{qa: qa}
}

type askRequest struct {
	Question      string `json:"question"`
	MaxResults    int    `json:"max_results"`
	UseGuardrails *bool  `json:"use_guardrails"`
}

// AskQuestion answers a question against the indexed documents. Guardrails
// default to on unless the request disables them explicitly.
func (h *QAHandler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &core.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	useGuardrails := true
	if req.UseGuardrails != nil {
		useGuardrails = *req.UseGuardrails
	}

	answer, err := h.qa.Ask(r.Context(), req.Question, req.MaxResults, useGuardrails)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}
