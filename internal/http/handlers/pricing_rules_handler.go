package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"evtariff/internal/service"
)

// PricingRulesHandler serves recurring rule CRUD for the pricing editor.
type PricingRulesHandler struct {
	pricing *service.PricingService
	logger  *zap.Logger
}

// NewPricingRulesHandler builds handler.
func NewPricingRulesHandler(pricing *service.PricingService, logger *zap.Logger) *PricingRulesHandler {
	return &PricingRulesHandler{pricing: pricing, logger: logger}
}

type ruleRequest struct {
	Season    string          `json:"season"`
	DayType   string          `json:"day_type"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	Price     decimal.Decimal `json:"price"`
}

func (r ruleRequest) input() service.RuleInput {
	return service.RuleInput{
		Season:    r.Season,
		DayType:   r.DayType,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Price:     r.Price,
	}
}

// List handles GET /pricing/rules.
func (h *PricingRulesHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.pricing.ListRules(r.Context())
	if err != nil {
		h.logger.Error("failed to list pricing rules", zap.Error(err))
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// Create handles POST /pricing/rules.
func (h *PricingRulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	rule, err := h.pricing.AddRule(r.Context(), req.input())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

// Replace handles PUT /pricing/rules (atomic replace-in-group).
func (h *PricingRulesHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	rule, err := h.pricing.ReplaceRule(r.Context(), req.input())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// Delete handles DELETE /pricing/rules.
func (h *PricingRulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.pricing.DeleteRule(r.Context(), req.input()); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
