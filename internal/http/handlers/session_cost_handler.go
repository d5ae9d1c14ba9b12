package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"evtariff/internal/service"
)

// SessionCostHandler serves cost breakdowns and their CSV export.
type SessionCostHandler struct {
	costing *service.CostingService
	logger  *zap.Logger
}

// NewSessionCostHandler builds handler.
func NewSessionCostHandler(costing *service.CostingService, logger *zap.Logger) *SessionCostHandler {
	return &SessionCostHandler{costing: costing, logger: logger}
}

func sessionID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("session_id"), 10, 64)
	return id, err == nil && id > 0
}

// Cost handles GET /sessions/cost?session_id=N.
func (h *SessionCostHandler) Cost(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "session_id required")
		return
	}

	breakdown, err := h.costing.SessionCost(r.Context(), id)
	if err != nil {
		h.logger.Error("session cost failed", zap.Int64("session_id", id), zap.Error(err))
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// Export handles GET /sessions/cost/export?session_id=N, streaming the
// breakdown's detail lines as CSV.
func (h *SessionCostHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "session_id required")
		return
	}

	breakdown, err := h.costing.SessionCost(r.Context(), id)
	if err != nil {
		h.logger.Error("session cost export failed", zap.Int64("session_id", id), zap.Error(err))
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=session_%d_cost.csv", id))

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"from", "to", "energy_wh", "price", "cost"})
	for _, line := range breakdown.Lines {
		_ = writer.Write([]string{
			line.From.Format(time.RFC3339),
			line.To.Format(time.RFC3339),
			strconv.FormatFloat(line.EnergyWh, 'f', 3, 64),
			line.UnitPrice.String(),
			line.Cost.StringFixed(2),
		})
	}
	_ = writer.Write([]string{"total", "", strconv.FormatFloat(breakdown.TotalEnergyWh, 'f', 3, 64), "", breakdown.TotalCost.StringFixed(2)})
	writer.Flush()
}
