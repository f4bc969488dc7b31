// Package config loads service settings from defaults, an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/ulule/limiter/v3"
	"gopkg.in/yaml.v3"
)

const (
	PasswordPolicyPlain  = "plain"
	PasswordPolicyBcrypt = "bcrypt"
)

// Feed is one RSS/Atom source used when the World News API is not configured.
type Feed struct {
	URL     string `yaml:"url"`
	Country string `yaml:"country"`
}

type Config struct {
	// HTTP server
	ListenAddr    string `yaml:"listen_addr"`
	SessionSecret string `yaml:"session_secret"`
	GinMode       string `yaml:"gin_mode"`

	// News sources
	WorldNewsAPIKey  string `yaml:"-"`
	WorldNewsBaseURL string `yaml:"world_news_base_url"`
	PageSize         int    `yaml:"page_size"`
	Feeds            []Feed `yaml:"feeds"`

	// Generative opinion
	GeminiAPIKey      string `yaml:"-"`
	GeminiModel       string `yaml:"gemini_model"`
	OpenAIAPIKey      string `yaml:"-"`
	OpenAIModel       string `yaml:"openai_model"`
	MaxGeminiRequests int    `yaml:"max_gemini_requests"` // per day, 0 = unlimited

	// Classifier artifacts (vectorizer.json, classifier.json)
	ModelDir string `yaml:"model_dir"`

	// Storage
	UsersFile   string `yaml:"users_file"`
	DataDir     string `yaml:"data_dir"`
	DatabaseURL string `yaml:"-"`

	// Auth
	PasswordPolicy string `yaml:"password_policy"` // plain | bcrypt
	AuthRateLimit  string `yaml:"auth_rate_limit"` // limiter format, e.g. "20-M"; empty disables

	// App settings
	Debug          bool          `yaml:"debug"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Default returns the built-in settings before any file or environment override.
func Default() *Config {
	return &Config{
		ListenAddr:       ":5000",
		GinMode:          "release",
		WorldNewsBaseURL: "https://api.worldnewsapi.com/search-news",
		PageSize:         10,
		GeminiModel:      "gemini-2.0-flash",
		OpenAIModel:      "gpt-4o-mini",
		ModelDir:         "./model",
		UsersFile:        "./users.json",
		DataDir:          "./data",
		PasswordPolicy:   PasswordPolicyPlain,
		RequestTimeout:   30 * time.Second,
	}
}

// Load reads .env (if present), then CONFIG_FILE (default configs/factcheck.yaml, optional),
// then environment variables, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := Default()

	path := getEnvOrDefault("CONFIG_FILE", "configs/factcheck.yaml")
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.WorldNewsAPIKey = os.Getenv("WORLD_NEWS_API_KEY")
	c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.DatabaseURL = os.Getenv("DATABASE_URL")

	c.ListenAddr = getEnvOrDefault("LISTEN_ADDR", c.ListenAddr)
	c.SessionSecret = getEnvOrDefault("SESSION_SECRET", c.SessionSecret)
	c.GinMode = getEnvOrDefault("GIN_MODE", c.GinMode)
	c.WorldNewsBaseURL = getEnvOrDefault("WORLD_NEWS_BASE_URL", c.WorldNewsBaseURL)
	c.GeminiModel = getEnvOrDefault("GEMINI_MODEL", c.GeminiModel)
	c.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", c.OpenAIModel)
	c.ModelDir = getEnvOrDefault("MODEL_DIR", c.ModelDir)
	c.UsersFile = getEnvOrDefault("USERS_FILE", c.UsersFile)
	c.DataDir = getEnvOrDefault("DATA_DIR", c.DataDir)
	c.PasswordPolicy = getEnvOrDefault("PASSWORD_POLICY", c.PasswordPolicy)
	c.AuthRateLimit = getEnvOrDefault("AUTH_RATE_LIMIT", c.AuthRateLimit)

	c.PageSize = getEnvIntOrDefault("PAGE_SIZE", c.PageSize)
	c.MaxGeminiRequests = getEnvIntOrDefault("MAX_GEMINI_REQUESTS", c.MaxGeminiRequests)

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.RequestTimeout = d
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		c.Debug = true
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.PasswordPolicy != PasswordPolicyPlain && c.PasswordPolicy != PasswordPolicyBcrypt {
		return fmt.Errorf("PASSWORD_POLICY must be '%s' or '%s'", PasswordPolicyPlain, PasswordPolicyBcrypt)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive")
	}
	if c.MaxGeminiRequests < 0 {
		return fmt.Errorf("MAX_GEMINI_REQUESTS must not be negative")
	}
	if c.AuthRateLimit != "" {
		if _, err := limiter.NewRateFromFormatted(c.AuthRateLimit); err != nil {
			return fmt.Errorf("AUTH_RATE_LIMIT: %w", err)
		}
	}
	for i, f := range c.Feeds {
		if f.URL == "" {
			return fmt.Errorf("feeds[%d]: url is required", i)
		}
	}
	return nil
}
