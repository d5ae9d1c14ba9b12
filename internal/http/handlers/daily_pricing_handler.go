package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"evtariff/internal/service"
)

// DailyPricingHandler serves date override CRUD and the copy-to-dates
// operation for the daily pricing editor.
type DailyPricingHandler struct {
	pricing *service.PricingService
	logger  *zap.Logger
}

// NewDailyPricingHandler builds handler.
func NewDailyPricingHandler(pricing *service.PricingService, logger *zap.Logger) *DailyPricingHandler {
	return &DailyPricingHandler{pricing: pricing, logger: logger}
}

type overrideRequest struct {
	ID        int64           `json:"id"`
	Date      string          `json:"date"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Price     decimal.Decimal `json:"price"`
	Label     string          `json:"label"`
}

func (r overrideRequest) input() service.OverrideInput {
	return service.OverrideInput{
		ID:        r.ID,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Price:     r.Price,
		Label:     r.Label,
	}
}

// List handles GET /pricing/daily?date=YYYY-MM-DD.
func (h *DailyPricingHandler) List(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date required")
		return
	}
	overrides, err := h.pricing.OverridesFor(r.Context(), date)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overrides)
}

// Create handles POST /pricing/daily.
func (h *DailyPricingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	override, err := h.pricing.AddOverride(r.Context(), req.input())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, override)
}

// Update handles PUT /pricing/daily.
func (h *DailyPricingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ID == 0 {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}
	override, err := h.pricing.UpdateOverride(r.Context(), req.input())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, override)
}

// Delete handles DELETE /pricing/daily?id=N.
func (h *DailyPricingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}
	if err := h.pricing.DeleteOverride(r.Context(), id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

type duplicateRequest struct {
	SourceDate  string   `json:"source_date"`
	TargetDates []string `json:"target_dates"`
}

// Duplicate handles POST /pricing/daily/duplicate.
func (h *DailyPricingHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	var req duplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.SourceDate == "" || len(req.TargetDates) == 0 {
		writeError(w, http.StatusBadRequest, "source_date and target_dates required")
		return
	}
	copied, err := h.pricing.DuplicateDay(r.Context(), req.SourceDate, req.TargetDates)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"copied":  copied,
		"targets": len(req.TargetDates),
	})
}
