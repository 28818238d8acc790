package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"billboardwatch/pkg/types"
)

type errorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

func (s *Service) respondUnauthenticated(w http.ResponseWriter, reason, message string) {
	s.respondJSON(w, http.StatusUnauthorized, errorResponse{Error: message, Reason: reason})
}

func (s *Service) internalServerError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: "Internal server error"}
	if err != nil && s.config.Development() {
		resp.Details = err.Error()
	}
	s.respondJSON(w, http.StatusInternalServerError, resp)
}

// serviceError maps service-layer failures onto the HTTP error taxonomy.
func (s *Service) serviceError(w http.ResponseWriter, err error) {
	var validationErr *types.ValidationError
	if errors.As(err, &validationErr) {
		s.respondError(w, http.StatusBadRequest, validationErr.Message)
		return
	}

	var upstreamErr *types.UpstreamError
	if errors.As(err, &upstreamErr) {
		s.logger.WithError(err).Error("upstream collaborator failed")
		s.internalServerError(w, err)
		return
	}

	switch {
	case errors.Is(err, types.ErrDuplicateEmail):
		s.respondError(w, http.StatusBadRequest, "User already exists with this email")
	case errors.Is(err, types.ErrInvalidCredentials):
		s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, types.ErrForbidden):
		s.respondError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, types.ErrReportNotFound):
		s.respondError(w, http.StatusNotFound, "Report not found")
	default:
		s.logger.WithError(err).Error("unhandled service error")
		s.internalServerError(w, err)
	}
}
