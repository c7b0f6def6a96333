package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"linksoc/internal/core/apperror"
	"linksoc/pkg/logger"
)

// Repository stores the bcrypt hashes of accepted operator passwords.
type Repository interface {
	PasswordHashes(ctx context.Context) ([]string, error)
	AddPasswordHash(ctx context.Context, hash string) error
}

// Session is issued on successful login.
type Session struct {
	AccessToken string
	SessionID   string
	ExpiresAt   time.Time
}

// Service provides operator authentication.
type Service struct {
	repo Repository
	jwt  *JWTService
}

// NewService creates a new auth service.
func NewService(repo Repository, jwtService *JWTService) *Service {
	return &Service{repo: repo, jwt: jwtService}
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperror.NewValidation("password is required").WithDetail("field", "password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login checks password against every stored hash and opens a session on match.
func (s *Service) Login(ctx context.Context, password string) (*Session, error) {
	if password == "" {
		return nil, apperror.NewValidation("password is required").WithDetail("field", "password")
	}

	hashes, err := s.repo.PasswordHashes(ctx)
	if err != nil {
		return nil, apperror.NewDatabase("password hashes", err)
	}

	matched := false
	for _, h := range hashes {
		err := bcrypt.CompareHashAndPassword([]byte(h), []byte(password))
		if err == nil {
			matched = true
			break
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Warn(ctx, "malformed password hash in store", "error", err)
		}
	}
	if !matched {
		logger.Info(ctx, "operator login rejected")
		return nil, apperror.NewUnauthorized("invalid password")
	}

	token, sessionID, expiresAt, err := s.jwt.GenerateAccessToken()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "operator logged in", "session_id", sessionID)
	return &Session{AccessToken: token, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// AddPassword stores a new accepted password.
func (s *Service) AddPassword(ctx context.Context, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.AddPasswordHash(ctx, hash); err != nil {
		return apperror.NewDatabase("add password", err)
	}
	return nil
}
