// Package app wires the news, classifier, opinion, auth and favorites components into a gin server.
package app

import (
	"context"
	"crypto/rand"
	"embed"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/deusflow/factcheck/internal/auth"
	"github.com/deusflow/factcheck/internal/classifier"
	"github.com/deusflow/factcheck/internal/config"
	"github.com/deusflow/factcheck/internal/logger"
	"github.com/deusflow/factcheck/internal/news"
	"github.com/deusflow/factcheck/internal/opinion"
	"github.com/deusflow/factcheck/internal/ratelimit"
	"github.com/deusflow/factcheck/internal/storage"
	"github.com/deusflow/factcheck/internal/textnorm"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionName = "factcheck_session"

func init() {
	gob.Register(Flash{})
}

// Deps is the shared, read-only context handed to every handler.
type Deps struct {
	Config     *config.Config
	News       news.Source
	Normalizer *textnorm.Normalizer
	Classifier *classifier.Classifier
	Opinion    *opinion.Client
	Budget     *ratelimit.Budget
	Auth       *auth.Service
	Favorites  storage.FavoriteStore
	// Stats is optional; set when the store can report row counts.
	Stats statsReporter
}

type statsReporter interface {
	GetStats(ctx context.Context) (map[string]int, error)
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(d *Deps) (*gin.Engine, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(PrometheusMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	store := cookie.NewStore([]byte(d.Config.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	r.SetHTMLTemplate(tmpl)

	authLimit, err := AuthRateLimitMiddleware(d.Config.AuthRateLimit)
	if err != nil {
		return nil, err
	}

	h := &handler{d: d}

	// Pages
	r.GET("/", h.index)
	r.GET("/auth", h.authPage)
	r.GET("/favorites", h.favoritesPage)

	// News + detection
	r.GET("/load", h.loadNews)
	r.POST("/detect", h.detect)

	// Auth
	r.POST("/signup", authLimit, h.signup)
	r.POST("/login", authLimit, h.login)
	r.GET("/logout", h.logout)

	// Favorites
	r.POST("/save_favorite", h.saveFavorite)
	r.GET("/get_favorites", h.getFavorites)

	// Ops
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r, nil
}

// Run builds every component from cfg and serves until SIGINT/SIGTERM.
func Run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)

	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return err
		}
		cfg.SessionSecret = secret
		logger.Warn("SESSION_SECRET not set, using a random secret; sessions will not survive a restart")
	}
	if cfg.PasswordPolicy == config.PasswordPolicyPlain {
		logger.Warn("PASSWORD_POLICY=plain stores passwords unhashed; set PASSWORD_POLICY=bcrypt for new deployments")
	}

	normalizer, err := textnorm.NewEnglish()
	if err != nil {
		return fmt.Errorf("failed to load lemma dictionary: %w", err)
	}

	clf, err := classifier.Load(cfg.ModelDir)
	if err != nil {
		return fmt.Errorf("failed to load classifier: %w", err)
	}

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	budget := newBudget(cfg)
	opinionClient, closeOpinion, err := newOpinionClient(ctx, cfg, budget)
	if err != nil {
		return err
	}
	defer closeOpinion()

	deps := &Deps{
		Config:     cfg,
		News:       newNewsSource(cfg),
		Normalizer: normalizer,
		Classifier: clf,
		Opinion:    opinionClient,
		Budget:     budget,
		Auth:       auth.NewService(stores.Users, cfg.PasswordPolicy),
		Favorites:  stores.Favorites,
		Stats:      stores.Stats,
	}

	router, err := NewRouter(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("factcheck listening", "addr", cfg.ListenAddr, "news_source", deps.News.Name(), "opinion", opinionClient.Provider())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
