package app

import (
	"context"
	"fmt"

	"github.com/deusflow/factcheck/internal/config"
	"github.com/deusflow/factcheck/internal/logger"
	"github.com/deusflow/factcheck/internal/news"
	"github.com/deusflow/factcheck/internal/opinion"
	"github.com/deusflow/factcheck/internal/ratelimit"
	"github.com/deusflow/factcheck/internal/storage"
)

// Stores groups the user and favorites backends picked from configuration.
type Stores struct {
	Users     storage.UserStore
	Favorites storage.FavoriteStore
	Stats     statsReporter
	close     func() error
}

func (s *Stores) Close() {
	if s.close == nil {
		return
	}
	if err := s.close(); err != nil {
		logger.Warn("failed to close store", "error", err)
	}
}

// openStores uses PostgreSQL when DATABASE_URL is set and flat files otherwise.
func openStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return &Stores{Users: pg, Favorites: pg, Stats: pg, close: pg.Close}, nil
	}

	logger.Info("using file stores", "users_file", cfg.UsersFile, "data_dir", cfg.DataDir)
	return &Stores{
		Users:     storage.NewFileUserStore(cfg.UsersFile),
		Favorites: storage.NewFileFavoriteStore(cfg.DataDir),
	}, nil
}

// newBudget caps calls per provider per day; nil when unlimited.
func newBudget(cfg *config.Config) *ratelimit.Budget {
	if cfg.MaxGeminiRequests == 0 {
		return nil
	}
	return ratelimit.NewBudget(map[string]int{
		"gemini": cfg.MaxGeminiRequests,
		"openai": cfg.MaxGeminiRequests,
	})
}

// newOpinionClient prefers Gemini, then OpenAI. Without keys every score is the default.
func newOpinionClient(ctx context.Context, cfg *config.Config, budget *ratelimit.Budget) (*opinion.Client, func(), error) {
	noop := func() {}

	switch {
	case cfg.GeminiAPIKey != "":
		g, err := opinion.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, err
		}
		return opinion.NewClient(g, budget, cfg.RequestTimeout), g.Close, nil
	case cfg.OpenAIAPIKey != "":
		return opinion.NewClient(opinion.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel), budget, cfg.RequestTimeout), noop, nil
	default:
		logger.Warn("no GEMINI_API_KEY or OPENAI_API_KEY, opinion scores will always be the default", "default", opinion.DefaultScore)
		return opinion.NewClient(nil, nil, 0), noop, nil
	}
}

// newNewsSource uses the World News API when a key is set, else configured feeds.
func newNewsSource(cfg *config.Config) news.Source {
	if cfg.WorldNewsAPIKey == "" && len(cfg.Feeds) > 0 {
		logger.Info("WORLD_NEWS_API_KEY not set, serving news from feeds", "feeds", len(cfg.Feeds))
		return news.NewFeedSource(cfg.Feeds, cfg.PageSize, cfg.RequestTimeout)
	}
	if cfg.WorldNewsAPIKey == "" {
		logger.Warn("WORLD_NEWS_API_KEY not set and no feeds configured, /load will return empty pages")
	}
	return news.NewWorldNewsClient(cfg.WorldNewsBaseURL, cfg.WorldNewsAPIKey, cfg.PageSize, cfg.RequestTimeout)
}
