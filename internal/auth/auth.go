// Package auth implements signup and login over a storage.UserStore.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/deusflow/factcheck/internal/config"
	"github.com/deusflow/factcheck/internal/metrics"
	"github.com/deusflow/factcheck/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailTaken       = errors.New("email already registered")
	ErrUnknownEmail     = errors.New("no user found")
	ErrWrongPassword    = errors.New("incorrect password")
)

type SignupInput struct {
	Username  string
	Email     string
	Password  string
	Password2 string
}

type Service struct {
	users  storage.UserStore
	policy string
}

// NewService returns a Service storing passwords according to policy (config.PasswordPolicyPlain or Bcrypt).
func NewService(users storage.UserStore, policy string) *Service {
	return &Service{users: users, policy: policy}
}

// Signup registers a new user. An existing email is never overwritten.
func (s *Service) Signup(ctx context.Context, in SignupInput) (storage.User, error) {
	username := strings.TrimSpace(in.Username)
	email := storage.NormalizeEmail(in.Email)

	if username == "" || email == "" || in.Password == "" || in.Password2 == "" {
		s.record("signup", "missing_fields")
		return storage.User{}, ErrMissingFields
	}

	if in.Password != in.Password2 {
		s.record("signup", "password_mismatch")
		return storage.User{}, ErrPasswordMismatch
	}

	stored, err := s.hash(in.Password)
	if err != nil {
		s.record("signup", "error")
		return storage.User{}, err
	}

	u := storage.User{Email: email, Username: username, Password: stored}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.record("signup", "email_taken")
			return storage.User{}, ErrEmailTaken
		}
		s.record("signup", "error")
		return storage.User{}, fmt.Errorf("failed to store user: %w", err)
	}

	s.record("signup", "ok")
	return u, nil
}

// Login checks the password for email and returns the stored user.
func (s *Service) Login(ctx context.Context, email, password string) (storage.User, error) {
	u, err := s.users.GetUser(ctx, storage.NormalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		s.record("login", "unknown_email")
		return storage.User{}, ErrUnknownEmail
	}
	if err != nil {
		s.record("login", "error")
		return storage.User{}, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.verify(u.Password, password) {
		s.record("login", "wrong_password")
		return storage.User{}, ErrWrongPassword
	}

	s.record("login", "ok")
	return u, nil
}

func (s *Service) hash(password string) (string, error) {
	if s.policy != config.PasswordPolicyBcrypt {
		return password, nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}

func (s *Service) verify(stored, candidate string) bool {
	if s.policy == config.PasswordPolicyBcrypt {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

func (s *Service) record(event, outcome string) {
	metrics.AuthEvents.WithLabelValues(event, outcome).Inc()
}
