package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"evtariff/internal/repository"
	"evtariff/internal/service"
	"evtariff/internal/tariff"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeEngineError maps the engine's error kinds to HTTP statuses. Rule
// gaps are unprocessable (the rule set must be fixed), never a silent
// default price.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tariff.ErrNoApplicableRule):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, tariff.ErrInvalidSession):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, tariff.ErrOverlappingRuleConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, tariff.ErrRuleNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
