package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/deusflow/factcheck/internal/logger"
)

const maxSuffixAttempts = 50

// FileFavoriteStore writes each favorite to <sanitized-email>_<NNNN>.json in one directory.
type FileFavoriteStore struct {
	dir    string
	mu     sync.Mutex
	suffix func() int
}

func NewFileFavoriteStore(dir string) *FileFavoriteStore {
	return &FileFavoriteStore{
		dir:    dir,
		suffix: func() int { return 1000 + rand.Intn(9000) },
	}
}

func (s *FileFavoriteStore) SaveFavorite(_ context.Context, email string, payload json.RawMessage) error {
	prefix := SanitizeEmail(email)
	if prefix == "" {
		return ErrEmptyEmail
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "    "); err != nil {
		return fmt.Errorf("invalid favorite payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	for i := 0; i < maxSuffixAttempts; i++ {
		name := fmt.Sprintf("%s_%04d.json", prefix, s.suffix())
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create favorite file: %w", err)
		}

		_, werr := f.Write(pretty.Bytes())
		cerr := f.Close()
		if werr != nil {
			return fmt.Errorf("failed to write favorite: %w", werr)
		}
		if cerr != nil {
			return fmt.Errorf("failed to close favorite file: %w", cerr)
		}
		logger.Debug("favorite saved", "file", name)
		return nil
	}

	return fmt.Errorf("no free favorite file name for %s after %d attempts: %w", prefix, maxSuffixAttempts, ErrAlreadyExists)
}

func (s *FileFavoriteStore) ListFavorites(_ context.Context, email string) ([]json.RawMessage, error) {
	prefix := SanitizeEmail(email)
	if prefix == "" {
		return []json.RawMessage{}, nil
	}
	nameRe := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `_[0-9]{4}\.json$`)

	s.mu.Lock()
	defer s.mu.Unlock()

	// ReadDir returns entries sorted by file name.
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data dir: %w", err)
	}

	favorites := []json.RawMessage{}
	for _, e := range entries {
		if e.IsDir() || !nameRe.MatchString(e.Name()) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil || !json.Valid(data) {
			logger.Debug("skipping unreadable favorite", "file", e.Name(), "error", err)
			continue
		}
		favorites = append(favorites, json.RawMessage(data))
	}
	return favorites, nil
}
