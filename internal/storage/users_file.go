package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/deusflow/factcheck/internal/logger"
)

// FileUserStore keeps all users in one JSON object keyed by email and rewrites it on every signup.
type FileUserStore struct {
	filePath string
	mu       sync.Mutex
}

func NewFileUserStore(filePath string) *FileUserStore {
	return &FileUserStore{filePath: filePath}
}

// load reads the users file. A missing, empty or corrupt file is an empty user set.
func (s *FileUserStore) load() (map[string]User, error) {
	users := make(map[string]User)

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return users, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	if len(data) == 0 {
		return users, nil
	}

	if err := json.Unmarshal(data, &users); err != nil {
		logger.Warn("users file is not valid JSON, treating as empty", "path", s.filePath, "error", err)
		return make(map[string]User), nil
	}
	return users, nil
}

func (s *FileUserStore) save(users map[string]User) error {
	data, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write users file: %w", err)
	}
	return nil
}

func (s *FileUserStore) GetUser(_ context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return User{}, err
	}

	email = NormalizeEmail(email)
	u, ok := users[email]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Email = email
	return u, nil
}

func (s *FileUserStore) CreateUser(_ context.Context, u User) error {
	email := NormalizeEmail(u.Email)
	if email == "" {
		return ErrEmptyEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	if _, exists := users[email]; exists {
		return ErrAlreadyExists
	}

	users[email] = User{Username: u.Username, Password: u.Password}
	return s.save(users)
}
