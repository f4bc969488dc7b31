package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, PasswordPolicyPlain, cfg.PasswordPolicy)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "./users.json", cfg.UsersFile)
	assert.Equal(t, "./data", cfg.DataDir)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "factcheck.yaml", `
listen_addr: ":8080"
page_size: 20
model_dir: /srv/model
request_timeout: 5s
feeds:
  - url: https://example.com/rss
    country: us
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PAGE_SIZE", "15")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("WORLD_NEWS_API_KEY", "w-key")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 15, cfg.PageSize, "env must win over file")
	assert.Equal(t, "/srv/model", cfg.ModelDir)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "g-key", cfg.GeminiAPIKey)
	assert.Equal(t, "w-key", cfg.WorldNewsAPIKey)
	assert.True(t, cfg.Debug)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, Feed{URL: "https://example.com/rss", Country: "us"}, cfg.Feeds[0])
}

func TestLoad_BadYAML(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeFile(t, "bad.yaml", "page_size: [oops"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"bcrypt", func(c *Config) { c.PasswordPolicy = PasswordPolicyBcrypt }, true},
		{"unknown policy", func(c *Config) { c.PasswordPolicy = "md5" }, false},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, false},
		{"negative budget", func(c *Config) { c.MaxGeminiRequests = -1 }, false},
		{"rate limit", func(c *Config) { c.AuthRateLimit = "20-M" }, true},
		{"bad rate limit", func(c *Config) { c.AuthRateLimit = "lots" }, false},
		{"feed without url", func(c *Config) { c.Feeds = []Feed{{Country: "us"}} }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
