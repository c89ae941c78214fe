package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "notes-backend/pkg/errors"
)

// User is a registered account. The username is the unique identifier and
// is stored normalized; the password never leaves the credential store
// unhashed.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeUsername lowercases and trims an identifier. Registration and
// lookup must use the same normalization or uniqueness breaks.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NewUser creates a user with a fresh id and normalized username
func NewUser(username, passwordHash string) (*User, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, pkgerrors.NewValidationError("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, pkgerrors.NewValidationError("password hash cannot be empty")
	}

	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
