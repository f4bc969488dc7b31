// Package opinion asks a generative model how likely a news article is to be true.
//
// Every failure path (no provider, spent budget, transport or auth error, empty or
// digit-free answer) yields DefaultScore; callers never see an error.
package opinion

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/deusflow/factcheck/internal/logger"
	"github.com/deusflow/factcheck/internal/metrics"
	"github.com/deusflow/factcheck/internal/ratelimit"
)

// DefaultScore is returned whenever no usable answer was obtained.
const DefaultScore = 50

type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Text    string `json:"text"`
}

// Generator sends one prompt to a model and returns its text answer.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	gen     Generator
	budget  *ratelimit.Budget
	timeout time.Duration
}

// NewClient wraps gen. gen may be nil, in which case Score always returns DefaultScore.
// budget may be nil for no cap; timeout <= 0 leaves the caller's deadline alone.
func NewClient(gen Generator, budget *ratelimit.Budget, timeout time.Duration) *Client {
	return &Client{gen: gen, budget: budget, timeout: timeout}
}

// Provider names the configured generator, or "none".
func (c *Client) Provider() string {
	if c == nil || c.gen == nil {
		return "none"
	}
	return c.gen.Name()
}

// Score returns the model's 0-100 "likely true" answer for a, or DefaultScore.
func (c *Client) Score(ctx context.Context, a Article) int {
	provider := c.Provider()
	if provider == "none" {
		metrics.OpinionCalls.WithLabelValues(provider, "disabled").Inc()
		return DefaultScore
	}

	if err := c.budget.Use(provider); err != nil {
		metrics.OpinionCalls.WithLabelValues(provider, "budget").Inc()
		return DefaultScore
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := c.gen.Generate(ctx, BuildPrompt(a))
	metrics.OpinionDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn("opinion request failed", "provider", provider, "error", err)
		metrics.OpinionCalls.WithLabelValues(provider, "error").Inc()
		return DefaultScore
	}

	score, ok := parseDigits(answer)
	if !ok {
		logger.Warn("opinion answer has no usable number", "provider", provider, "answer", answer)
		metrics.OpinionCalls.WithLabelValues(provider, "unparsed").Inc()
		return DefaultScore
	}

	metrics.OpinionCalls.WithLabelValues(provider, "ok").Inc()
	return score
}

// BuildPrompt renders the fixed evaluator instruction for one article.
func BuildPrompt(a Article) string {
	return fmt.Sprintf(`
You are a strict fake news evaluator.
Respond ONLY with a number from 0 to 100 indicating the likelihood that the following news is TRUE.

Title: %s
Summary: %s
Full Text: %s
`, a.Title, a.Summary, a.Text)
}

// ParseScore concatenates every decimal digit in answer, in any script, and parses the result.
// The value is not clamped: "85%, id 2024" yields 852024.
func ParseScore(answer string) int {
	score, ok := parseDigits(answer)
	if !ok {
		return DefaultScore
	}
	return score
}

func parseDigits(answer string) (int, bool) {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(answer) {
		if v, ok := digitValue(r); ok {
			digits.WriteByte(byte('0' + v))
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// digitValue maps a Unicode decimal digit (category Nd) to its value.
// Nd digits come in contiguous runs starting at zero.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}
	for _, rg := range unicode.Nd.R16 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) && rg.Stride == 1 {
			return int(r-rune(rg.Lo)) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) && rg.Stride == 1 {
			return int(r-rune(rg.Lo)) % 10, true
		}
	}
	return 0, false
}
