package server

import (
	"encoding/json"
	"net/http"

	"billboardwatch/internal/service"
)

type authResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, signed, err := s.auth.Register(r.Context(), input)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, authResponse{
		Token: signed,
		User:  user.View(),
	})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, signed, err := s.auth.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, authResponse{
		Token: signed,
		User:  user.View(),
	})
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actorFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("actor not found in context")
		s.internalServerError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"user": actor.View()})
}
