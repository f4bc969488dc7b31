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

func TestFileFavoriteStore_SaveThenList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileFavoriteStore(dir)

	payload := json.RawMessage(`{"email":"bob@example.com","title":"Headline","gemini_percent":80}`)
	require.NoError(t, s.SaveFavorite(ctx, "bob@example.com", payload))

	got, err := s.ListFavorites(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.JSONEq(t, string(payload), string(got[0]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Regexp(t, `^bob_example\.com_[1-9][0-9]{3}\.json$`, entries[0].Name())
}

func TestFileFavoriteStore_CollisionRedraws(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileFavoriteStore(dir)

	suffixes := []int{1234, 1234, 5678}
	s.suffix = func() int {
		n := suffixes[0]
		suffixes = suffixes[1:]
		return n
	}

	require.NoError(t, s.SaveFavorite(ctx, "a@b.c", json.RawMessage(`{"n":1}`)))
	require.NoError(t, s.SaveFavorite(ctx, "a@b.c", json.RawMessage(`{"n":2}`)))

	assert.FileExists(t, filepath.Join(dir, "a_b.c_1234.json"))
	assert.FileExists(t, filepath.Join(dir, "a_b.c_5678.json"))

	got, err := s.ListFavorites(ctx, "a@b.c")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"n":1}`, string(got[0]))
	assert.JSONEq(t, `{"n":2}`, string(got[1]))
}

func TestFileFavoriteStore_GivesUpAfterAttempts(t *testing.T) {
	ctx := context.Background()
	s := NewFileFavoriteStore(t.TempDir())
	s.suffix = func() int { return 4242 }

	require.NoError(t, s.SaveFavorite(ctx, "a@b.c", json.RawMessage(`{}`)))
	err := s.SaveFavorite(ctx, "a@b.c", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestFileFavoriteStore_ListFiltersAndSkipsCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	write("a_b.c_2000.json", `{"n":2}`)
	write("a_b.c_1000.json", `{"n":1}`)
	write("a_b.c_3000.json", `{broken`)
	write("a_b.c_extra_1000.json", `{"other":true}`)
	write("xa_b.c_1000.json", `{"other":true}`)
	write("a_b.c_12345.json", `{"other":true}`)

	s := NewFileFavoriteStore(dir)
	got, err := s.ListFavorites(ctx, "A@B.C")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"n":1}`, string(got[0]))
	assert.JSONEq(t, `{"n":2}`, string(got[1]))
}

func TestFileFavoriteStore_EmptyAndMissing(t *testing.T) {
	ctx := context.Background()
	s := NewFileFavoriteStore(filepath.Join(t.TempDir(), "missing"))

	got, err := s.ListFavorites(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.ErrorIs(t, s.SaveFavorite(ctx, "", json.RawMessage(`{}`)), ErrEmptyEmail)
	assert.Error(t, s.SaveFavorite(ctx, "a@b.c", json.RawMessage(`not json`)))
}

func TestFileFavoriteStore_NonASCIIEmailsStaySeparate(t *testing.T) {
	ctx := context.Background()
	s := NewFileFavoriteStore(t.TempDir())

	require.NoError(t, s.SaveFavorite(ctx, "ü@x.com", json.RawMessage(`{"email":"ü@x.com","title":"umlaut"}`)))
	require.NoError(t, s.SaveFavorite(ctx, "_@x.com", json.RawMessage(`{"email":"_@x.com","title":"underscore"}`)))

	got, err := s.ListFavorites(ctx, "ü@x.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, string(got[0]), "umlaut")

	got, err = s.ListFavorites(ctx, "_@x.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, string(got[0]), "underscore")
}
