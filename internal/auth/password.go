package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password policy for study accounts. bcrypt truncates input beyond 72
// bytes, so longer passwords are rejected rather than silently clipped.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
	bcryptCost        = 12
)

var (
	ErrPasswordBlank    = errors.New("password cannot be blank")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters")
)

// ValidatePassword checks a candidate password against the account policy.
func ValidatePassword(password string) error {
	switch {
	case strings.TrimSpace(password) == "":
		return ErrPasswordBlank
	case len(password) < minPasswordLength:
		return ErrPasswordTooShort
	case len(password) > maxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword validates the password against the policy and returns its
// bcrypt hash.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a stored hash against a login attempt.
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
