package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/deusflow/factcheck/internal/auth"
	"github.com/deusflow/factcheck/internal/logger"
	"github.com/deusflow/factcheck/internal/metrics"
	"github.com/deusflow/factcheck/internal/news"
	"github.com/deusflow/factcheck/internal/opinion"
	"github.com/deusflow/factcheck/internal/storage"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

const (
	sessionUsername = "username"
	sessionEmail    = "email"
)

type sessionUser struct {
	Username string
	Email    string
}

type handler struct {
	d *Deps
}

func (h *handler) index(c *gin.Context)         { h.render(c, "index.html", "Latest news") }
func (h *handler) authPage(c *gin.Context)      { h.render(c, "auth.html", "Sign in") }
func (h *handler) favoritesPage(c *gin.Context) { h.render(c, "favorites.html", "Favorites") }

// render drains pending flashes into the page together with the signed-in user.
func (h *handler) render(c *gin.Context, name, title string) {
	session := sessions.Default(c)

	var flashes []Flash
	for _, f := range session.Flashes() {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	if len(flashes) > 0 {
		if err := session.Save(); err != nil {
			logger.Warn("failed to save session", "error", err)
		}
	}

	c.HTML(http.StatusOK, name, gin.H{
		"Title":   title,
		"Flashes": flashes,
		"User":    currentUser(session),
	})
}

func currentUser(session sessions.Session) *sessionUser {
	email, _ := session.Get(sessionEmail).(string)
	if email == "" {
		return nil
	}
	username, _ := session.Get(sessionUsername).(string)
	return &sessionUser{Username: username, Email: email}
}

// flashRedirect queues a flash and redirects with 302.
func flashRedirect(c *gin.Context, category, message, location string) {
	session := sessions.Default(c)
	session.AddFlash(Flash{Category: category, Message: message})
	if err := session.Save(); err != nil {
		logger.Warn("failed to save session", "error", err)
	}
	c.Redirect(http.StatusFound, location)
}

func (h *handler) loadNews(c *gin.Context) {
	q := news.Query{
		Country: c.DefaultQuery("country", news.AllCountries),
		Search:  c.Query("search"),
		Page:    news.ParsePage(c.Query("page")),
	}

	items, err := h.d.News.Fetch(c.Request.Context(), q)
	if err != nil {
		metrics.Global.SetError(err.Error())
	} else {
		metrics.Global.SetHealthy()
	}
	if items == nil {
		items = []news.Item{}
	}

	c.JSON(http.StatusOK, gin.H{"news": items})
}

type detectRequest struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Text    string `json:"text"`
}

func (h *handler) detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	processed := h.d.Normalizer.Normalize(req.Title + " " + req.Summary + " " + req.Text)
	label := h.d.Classifier.Classify(processed)
	metrics.Classifications.WithLabelValues(label).Inc()

	percent := h.d.Opinion.Score(c.Request.Context(), opinion.Article{
		Title:   req.Title,
		Summary: req.Summary,
		Text:    req.Text,
	})

	c.JSON(http.StatusOK, gin.H{
		"gemini_percent": percent,
		"model_label":    label,
	})
}

func (h *handler) signup(c *gin.Context) {
	u, err := h.d.Auth.Signup(c.Request.Context(), auth.SignupInput{
		Username:  c.PostForm("username"),
		Email:     c.PostForm("email"),
		Password:  c.PostForm("password"),
		Password2: c.PostForm("password2"),
	})

	switch {
	case errors.Is(err, auth.ErrMissingFields):
		flashRedirect(c, "danger", "All fields are required", "/auth#signup")
		return
	case errors.Is(err, auth.ErrPasswordMismatch):
		flashRedirect(c, "danger", "Passwords do not match", "/auth#signup")
		return
	case errors.Is(err, auth.ErrEmailTaken):
		flashRedirect(c, "warning", "Email already registered, please login", "/auth#login")
		return
	case err != nil:
		logger.Error("signup failed", "error", err)
		metrics.Global.SetError(err.Error())
		flashRedirect(c, "danger", "Signup failed, please try again later.", "/auth#signup")
		return
	}

	h.startSession(c, u)
	flashRedirect(c, "success", "Signup successful! You are now logged in.", "/")
}

func (h *handler) login(c *gin.Context) {
	u, err := h.d.Auth.Login(c.Request.Context(), c.PostForm("email"), c.PostForm("password"))

	switch {
	case errors.Is(err, auth.ErrUnknownEmail):
		flashRedirect(c, "danger", "No user found. Please signup.", "/auth#signup")
		return
	case errors.Is(err, auth.ErrWrongPassword):
		flashRedirect(c, "danger", "Incorrect password.", "/auth#login")
		return
	case err != nil:
		logger.Error("login failed", "error", err)
		metrics.Global.SetError(err.Error())
		flashRedirect(c, "danger", "Login failed, please try again later.", "/auth#login")
		return
	}

	h.startSession(c, u)
	flashRedirect(c, "success", "Welcome "+u.Username+"!", "/")
}

func (h *handler) startSession(c *gin.Context, u storage.User) {
	session := sessions.Default(c)
	session.Set(sessionUsername, u.Username)
	session.Set(sessionEmail, u.Email)
}

func (h *handler) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	flashRedirect(c, "info", "You have been logged out.", "/")
}

func (h *handler) saveFavorite(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	email, _ := payload["email"].(string)
	if strings.TrimSpace(email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No email provided"})
		return
	}

	if err := h.d.Favorites.SaveFavorite(c.Request.Context(), email, json.RawMessage(body)); err != nil {
		logger.Error("failed to save favorite", "error", err)
		metrics.Global.SetError(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save favorite"})
		return
	}

	metrics.FavoritesSaved.Inc()
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (h *handler) getFavorites(c *gin.Context) {
	email := c.Query("email")
	if strings.TrimSpace(email) == "" {
		c.JSON(http.StatusOK, []json.RawMessage{})
		return
	}

	favorites, err := h.d.Favorites.ListFavorites(c.Request.Context(), email)
	if err != nil {
		logger.Error("failed to list favorites", "error", err)
		favorites = []json.RawMessage{}
	}
	c.JSON(http.StatusOK, favorites)
}

func (h *handler) health(c *gin.Context) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if healthy, _ := stats["is_healthy"].(bool); !healthy {
		status = "error"
	}

	resp := gin.H{
		"status":      status,
		"health":      stats,
		"news_source": h.d.News.Name(),
		"opinion":     h.d.Opinion.Provider(),
	}
	if budget := h.d.Budget.GetStats(); budget != nil {
		resp["opinion_budget"] = budget
	}
	if h.d.Stats != nil {
		storeStats, err := h.d.Stats.GetStats(c.Request.Context())
		if err != nil {
			logger.Warn("failed to read store stats", "error", err)
			resp["status"] = "error"
		} else {
			resp["store"] = storeStats
		}
	}

	code := http.StatusOK
	if resp["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
