package api

import (
	"net/http"

	"github.com/kjannette/avaline-backend/internal/metrics"
	"github.com/kjannette/avaline-backend/internal/models"
)

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	obs, ok := s.loadObservations(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "failed to fetch prices")
		return
	}
	writeJSON(w, http.StatusOK, metrics.Compute(obs))
}

func (s *Server) handleAvailableDays(w http.ResponseWriter, r *http.Request) {
	obs, ok := s.loadObservations(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "failed to fetch available days")
		return
	}
	days, _ := metrics.GroupByDate(obs)
	if days == nil {
		days = []string{}
	}
	writeJSON(w, http.StatusOK, days)
}

// handlePricesByDay returns the observations of one date, at most ?limit= of
// the latest ones.
func (s *Server) handlePricesByDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !validateDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	obs, ok := s.loadObservations(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "failed to fetch prices")
		return
	}

	_, groups := metrics.GroupByDate(obs)
	day := groups[date]
	if limit := parseLimit(r, maxQueryLimit); len(day) > limit {
		day = day[len(day)-limit:]
	}
	if day == nil {
		day = []models.Observation{}
	}
	writeJSON(w, http.StatusOK, day)
}
