package auth

import (
	"github.com/google/uuid"
)

// User represents an authenticated account.
type User struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// RegisterRequest for email/password registration.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest for email/password authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OAuthProvider constants.
const (
	OAuthProviderGoogle = "google"
)
