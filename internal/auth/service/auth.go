package service

import (
	"context"
	"crypto/subtle"
	"time"

	"gleam/pkg/config"
	apperrors "gleam/pkg/errors"
	"gleam/pkg/sealer"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error)
	Verify(token string) (string, error)
}

type authService struct {
	sealer *sealer.Sealer
	cfg    *config.Config
	now    func() time.Time
}

func NewAuthService(sealer *sealer.Sealer, cfg *config.Config) AuthService {
	return &authService{
		sealer: sealer,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Login checks the submitted credentials against the configured admin
// account and mints a sealed session token. Both comparisons always run so
// response timing does not reveal which field was wrong.
func (s *authService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		s.cfg.Log.Warn("Admin login rejected", "username", username)
		return "", time.Time{}, apperrors.Unauthorized("Invalid credentials")
	}

	expiresAt := s.now().Add(s.cfg.SessionTTL)
	token, err := s.sealer.Seal(username, expiresAt)
	if err != nil {
		return "", time.Time{}, apperrors.Internal("Failed to create session token", err)
	}

	s.cfg.Log.Info("Admin session created", "username", username, "expires_at", expiresAt)
	return token, expiresAt, nil
}

// Verify opens a session token and returns the username it was sealed for.
// Expired, tampered, or foreign-user tokens are rejected with the same
// generic error.
func (s *authService) Verify(token string) (string, error) {
	username, expiresAt, err := s.sealer.Open(token)
	if err != nil {
		return "", apperrors.Unauthorized("Invalid or expired session")
	}
	if s.now().After(expiresAt) {
		return "", apperrors.Unauthorized("Invalid or expired session")
	}
	// A token outlives an admin rename only until it is next checked.
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) != 1 {
		return "", apperrors.Unauthorized("Invalid or expired session")
	}
	return username, nil
}
