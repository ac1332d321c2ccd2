package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	Store       string `json:"store"`
	StoreStatus string `json:"storeStatus"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	storeStatus := "unknown"
	if p, ok := s.source.(pinger); ok {
		storeStatus = "connected"
		if err := p.Ping(r.Context()); err != nil {
			storeStatus = "disconnected"
		}
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  healthServices{Store: s.source.Name(), StoreStatus: storeStatus},
	})
}
