package api

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"
)

type subscribeRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	email, ok := normalizeEmail(req.Email)
	if !ok {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	if err := s.subscribers.AddSubscriber(r.Context(), email); err != nil {
		fmt.Printf("[API] [%s] Error adding subscriber: %v\n", requestID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// normalizeEmail accepts a bare address only, not "Name <addr>".
func normalizeEmail(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", false
	}
	return addr.Address, true
}
