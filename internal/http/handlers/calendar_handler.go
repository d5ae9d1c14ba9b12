package handlers

import (
	"net/http"
	"time"

	"evtariff/internal/calendar"
)

// CalendarHandler exposes the season/holiday classification to the UI.
type CalendarHandler struct {
	classifier *calendar.Classifier
}

// NewCalendarHandler builds handler.
func NewCalendarHandler(classifier *calendar.Classifier) *CalendarHandler {
	return &CalendarHandler{classifier: classifier}
}

// Info handles GET /calendar?date=YYYY-MM-DD.
func (h *CalendarHandler) Info(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, h.classifier.Info(date))
}
