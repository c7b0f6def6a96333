package dto

import (
	"time"

	"linksoc/internal/domain/auth"
)

// LoginRequest for POST /auth/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// TokenResponse represents an issued access token.
type TokenResponse struct {
	Valid       bool      `json:"valid"`
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	SessionID   string    `json:"sessionId"`
}

// FromSession converts a session to response.
func FromSession(s *auth.Session) TokenResponse {
	return TokenResponse{
		Valid:       true,
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   s.ExpiresAt,
		SessionID:   s.SessionID,
	}
}
