package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"evtariff/internal/service"
)

// PricingMatrixHandler serves the hour grid and point resolution consumed
// by the pricing chart.
type PricingMatrixHandler struct {
	pricing *service.PricingService
	logger  *zap.Logger
}

// NewPricingMatrixHandler builds handler.
func NewPricingMatrixHandler(pricing *service.PricingService, logger *zap.Logger) *PricingMatrixHandler {
	return &PricingMatrixHandler{pricing: pricing, logger: logger}
}

// Matrix handles GET /pricing/matrix?season=&day_type=.
func (h *PricingMatrixHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	season := r.URL.Query().Get("season")
	dayType := r.URL.Query().Get("day_type")

	grid, err := h.pricing.Matrix(r.Context(), season, dayType)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season":   season,
		"day_type": dayType,
		"hours":    grid,
	})
}

// Resolve handles GET /pricing/resolve?at=RFC3339 (defaults to now).
func (h *PricingMatrixHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	at := time.Now()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "at must be RFC3339")
			return
		}
		at = parsed
	}

	quote, err := h.pricing.Quote(r.Context(), at)
	if err != nil {
		h.logger.Warn("price resolution failed", zap.Time("at", at), zap.Error(err))
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
