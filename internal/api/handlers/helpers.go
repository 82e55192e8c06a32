package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dhanunjayudu/ncdhhs-pdf-qa/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the typed failure taxonomy onto HTTP statuses so the UI
// can distinguish bad input, a busy batch, an unreachable origin site, and
// a retrieval-service outage without parsing messages.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *core.ValidationError
		fetchErr      *core.FetchError
		parseErr      *core.ParseError
		storageErr    *core.StorageError
		syncErr       *core.SyncUnavailableError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, core.ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &fetchErr), errors.As(err, &parseErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	case errors.As(err, &syncErr):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.As(err, &storageErr):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
