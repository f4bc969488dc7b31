// Package storage persists users and favorites, either as flat JSON files or in PostgreSQL.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrEmptyEmail    = errors.New("email is empty")
)

// User is a registered account. Password holds plaintext or a bcrypt hash depending on the password policy.
type User struct {
	Email    string `json:"-"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserStore interface {
	// GetUser returns ErrNotFound for an unknown email.
	GetUser(ctx context.Context, email string) (User, error)
	// CreateUser returns ErrAlreadyExists when the email is taken; the stored user is left unchanged.
	CreateUser(ctx context.Context, u User) error
}

// FavoriteStore keeps arbitrary JSON objects per user. There is no update or delete.
type FavoriteStore interface {
	SaveFavorite(ctx context.Context, email string, payload json.RawMessage) error
	ListFavorites(ctx context.Context, email string) ([]json.RawMessage, error)
}

// NormalizeEmail is the user key: trimmed and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SanitizeEmail turns an email into a safe file name prefix.
func SanitizeEmail(email string) string {
	email = NormalizeEmail(email)
	var b strings.Builder
	for _, r := range email {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			// '@' and anything unsafe
			b.WriteByte('_')
		}
	}
	return b.String()
}
