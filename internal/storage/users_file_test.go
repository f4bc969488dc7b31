package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileUserStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.json")
	s := NewFileUserStore(path)

	_, err := s.GetUser(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.CreateUser(ctx, User{Email: " Bob@Example.com", Username: "bob", Password: "pw"}))

	u, err := s.GetUser(ctx, "BOB@example.com ")
	require.NoError(t, err)
	assert.Equal(t, User{Email: "bob@example.com", Username: "bob", Password: "pw"}, u)
}

func TestFileUserStore_DuplicateKeepsFirst(t *testing.T) {
	ctx := context.Background()
	s := NewFileUserStore(filepath.Join(t.TempDir(), "users.json"))

	require.NoError(t, s.CreateUser(ctx, User{Email: "a@b.c", Username: "first", Password: "one"}))
	err := s.CreateUser(ctx, User{Email: "A@B.C", Username: "second", Password: "two"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	u, err := s.GetUser(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "first", u.Username)
	assert.Equal(t, "one", u.Password)
}

func TestFileUserStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s := NewFileUserStore(path)
	require.NoError(t, s.CreateUser(context.Background(), User{Email: "a@b.c", Username: "al", Password: "pw"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a@b.c\": {\n        \"username\": \"al\",\n        \"password\": \"pw\"\n    }\n}", string(data))

	var raw map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "al", raw["a@b.c"]["username"])
}

func TestFileUserStore_CorruptFileIsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s := NewFileUserStore(path)

	_, err := s.GetUser(ctx, "a@b.c")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.CreateUser(ctx, User{Email: "a@b.c", Username: "al", Password: "pw"}))
	_, err = s.GetUser(ctx, "a@b.c")
	assert.NoError(t, err)
}

func TestFileUserStore_EmptyEmail(t *testing.T) {
	s := NewFileUserStore(filepath.Join(t.TempDir(), "users.json"))
	assert.ErrorIs(t, s.CreateUser(context.Background(), User{Email: "  "}), ErrEmptyEmail)
}
