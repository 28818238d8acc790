package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"billboardwatch/internal/password"
	"billboardwatch/internal/token"
	"billboardwatch/internal/utils"
	"billboardwatch/pkg/types"

	"github.com/sirupsen/logrus"
)

// AuthService handles registration, login and bearer-token resolution.
type AuthService struct {
	users  UserStore
	issuer *token.Issuer
	logger *logrus.Logger
}

func NewAuthService(users UserStore, issuer *token.Issuer, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:  users,
		issuer: issuer,
		logger: logger,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a user and issues a token for it. The role is fixed here;
// no later operation may change it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*types.User, string, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if name == "" || email == "" || input.Password == "" {
		return nil, "", types.NewValidationError("Name, email, and password are required")
	}

	if len(name) < 2 || len(name) > 50 {
		return nil, "", types.NewValidationError("Name must be between 2 and 50 characters")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", types.NewValidationError("Please enter a valid email")
	}

	if len(input.Password) < 6 {
		return nil, "", types.NewValidationError("Password must be at least 6 characters")
	}

	role := types.UserRole(input.Role)
	if input.Role == "" {
		role = types.UserRolePublic
	}
	if !role.Valid() {
		return nil, "", types.NewValidationError("Role must be public or organization")
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		ID:           utils.NanoID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, types.ErrDuplicateEmail) {
			return nil, "", types.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	signed, err := s.issuer.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user registered")

	return user, signed, nil
}

// Login verifies credentials and issues a fresh token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (*types.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" || plaintext == "" {
		return nil, "", types.NewValidationError("Email and password are required")
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return nil, "", types.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to fetch user: %w", err)
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		return nil, "", types.ErrInvalidCredentials
	}

	signed, err := s.issuer.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")

	return user, signed, nil
}

// Authenticate resolves a raw bearer token to a live user. Token errors pass
// through unchanged (token.ErrExpired, token.ErrInvalid); a token for a user
// that no longer exists fails with types.ErrUserNotFound.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*types.User, error) {
	claims, err := s.issuer.Verify(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.users.ByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user for token: %w", err)
	}

	return user, nil
}
