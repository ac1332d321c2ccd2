package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kjannette/avaline-backend/internal/advisory"
	"github.com/kjannette/avaline-backend/internal/metrics"
	"github.com/kjannette/avaline-backend/internal/reply"
)

type avalineRequest struct {
	Question string `json:"question"`
}

type avalineResponse struct {
	Reply     string        `json:"reply"`
	Current   *float64      `json:"current"`
	Delta24h  *float64      `json:"delta24h"`
	Low7d     *float64      `json:"low7d"`
	AvgQty7d  *int          `json:"avg_qty7d"`
	Band      advisory.Band `json:"band"`
	Generated bool          `json:"generated"`
}

type greetingResponse struct {
	Greeting string        `json:"greeting"`
	Band     advisory.Band `json:"band"`
	Current  *float64      `json:"current"`
}

func (s *Server) handleAvaline(w http.ResponseWriter, r *http.Request) {
	var req avalineRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	question := reply.Truncate(strings.TrimSpace(req.Question), maxQuestionLength)

	obs, ok := s.loadObservations(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "failed to fetch prices")
		return
	}

	m := metrics.Compute(obs)
	rep := s.composer.Compose(r.Context(), m, question)
	if !rep.Generated {
		fmt.Printf("[API] [%s] Served template reply\n", requestID(r.Context()))
	}

	writeJSON(w, http.StatusOK, avalineResponse{
		Reply:     rep.Text,
		Current:   m.Current,
		Delta24h:  m.Delta24h,
		Low7d:     m.Low7d,
		AvgQty7d:  m.BestQuantityToday,
		Band:      s.thresholds.Classify(m.Current),
		Generated: rep.Generated,
	})
}

func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	obs, ok := s.loadObservations(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "failed to fetch prices")
		return
	}

	m := metrics.Compute(obs)
	text, band := s.composer.Greeting(m)
	writeJSON(w, http.StatusOK, greetingResponse{Greeting: text, Band: band, Current: m.Current})
}
