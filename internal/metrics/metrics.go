package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factcheck_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "factcheck_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	NewsItemsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factcheck_news_items_fetched_total",
			Help: "News items returned by upstream sources",
		},
		[]string{"source", "status"},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factcheck_classifications_total",
			Help: "Model labels produced by /detect",
		},
		[]string{"label"},
	)

	OpinionCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factcheck_opinion_calls_total",
			Help: "Generative opinion requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	OpinionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "factcheck_opinion_duration_seconds",
			Help:    "Generative opinion round-trip time",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	FavoritesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "factcheck_favorites_saved_total",
			Help: "Favorites written to the store",
		},
	)

	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factcheck_auth_events_total",
			Help: "Signup/login attempts by outcome",
		},
		[]string{"event", "outcome"},
	)
)

// Health tracks the last failure seen by the service.
type Health struct {
	mu sync.RWMutex

	StartTime     time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Health{IsHealthy: true, StartTime: time.Now()}

func (h *Health) SetError(err string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastError = err
	h.LastErrorTime = time.Now()
	h.IsHealthy = false
}

func (h *Health) SetHealthy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.IsHealthy = true
}

func (h *Health) GetStats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := map[string]interface{}{
		"uptime_seconds": int64(time.Since(h.StartTime).Seconds()),
		"last_error":     h.LastError,
		"is_healthy":     h.IsHealthy,
	}
	if !h.LastErrorTime.IsZero() {
		stats["last_error_time"] = h.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}
