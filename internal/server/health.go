package server

import (
	"net/http"
	"time"
)

const apiVersion = "1.0.0"

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":   "Billboard API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   apiVersion,
	})
}
