package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	rateLimitProblemType  = "https://go-architecture.example.com/errors/rate-limit-exceeded"
	rateLimitProblemTitle = "Rate Limit Exceeded"
)

// RateLimitStore is the sliding-window persistence the limiter relies on.
type RateLimitStore interface {
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}

// IdentifierFunc derives the scope of a limit from the request, typically the
// client IP. Returning false skips the rule for this request.
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule is one named sliding-window limit.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// ProblemDetails is an RFC 9457 payload; rate limiting is the only surface
// that responds with it.
type ProblemDetails struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail"`
	Instance   string         `json:"instance"`
	RetryAfter int            `json:"retry_after"`
	TraceID    string         `json:"trace_id,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// RateLimiter evaluates sliding-window rules against a store. Store failures
// fail open: an unavailable limiter must not take logins down with it.
type RateLimiter struct {
	store  RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// windowState captures one rule's verdict for a single request.
type windowState struct {
	limit      int
	remaining  int
	reset      time.Time
	retryAfter time.Duration
	blocked    bool
}

// NewRateLimiter builds a limiter over the given store.
func NewRateLimiter(store RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock injects a deterministic clock for tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier scopes a rule to the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		return ip, ip != ""
	}
}

// RateLimit enforces the given rules. Rules with no identifier, limit, or
// window are dropped up front. When several rules apply, the strictest
// verdict drives the rate-limit headers.
func (rl *RateLimiter) RateLimit(rules ...RateLimitRule) gin.HandlerFunc {
	active := make([]RateLimitRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			continue
		}
		if rule.Name == "" {
			rule.Name = "default"
		}
		active = append(active, rule)
	}

	return func(c *gin.Context) {
		if rl.store == nil || len(active) == 0 {
			c.Next()
			return
		}

		now := rl.now()
		var strictest *windowState

		for _, rule := range active {
			identifier, ok := rule.Identifier(c)
			if !ok || identifier == "" {
				continue
			}

			state, err := rl.check(c.Request.Context(), rule, identifier, now)
			if err != nil {
				rl.logger.Warn("rate limit check failed",
					zap.String("rule", rule.Name),
					zap.String("identifier", identifier),
					zap.Error(err))
				continue
			}

			if strictest == nil || stricter(state, *strictest) {
				s := state
				strictest = &s
			}

			if state.blocked {
				writeRateLimitHeaders(c, state)
				rl.reject(c, state)
				return
			}
		}

		if strictest != nil {
			writeRateLimitHeaders(c, *strictest)
		}
		c.Next()
	}
}

// check trims the window, counts attempts, and records the new one unless
// the rule is already saturated.
func (rl *RateLimiter) check(ctx context.Context, rule RateLimitRule, identifier string, now time.Time) (windowState, error) {
	key := fmt.Sprintf("%s:%s", rule.Name, identifier)

	if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
		return windowState{}, err
	}
	count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
	if err != nil {
		return windowState{}, err
	}
	oldest, hasAttempts, err := rl.store.OldestAttempt(ctx, key, rule.Window, now)
	if err != nil {
		return windowState{}, err
	}

	reset := now.Add(rule.Window)
	if hasAttempts {
		reset = oldest.Add(rule.Window)
	}

	state := windowState{limit: rule.Limit, reset: reset}

	if count >= rule.Limit {
		state.blocked = true
		state.retryAfter = reset.Sub(now)
		if state.retryAfter < 0 {
			state.retryAfter = 0
		}
		return state, nil
	}

	if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
		return windowState{}, err
	}

	state.remaining = rule.Limit - count - 1
	if state.remaining < 0 {
		state.remaining = 0
	}
	if !hasAttempts {
		state.reset = now.Add(rule.Window)
	}
	return state, nil
}

// stricter orders verdicts: blocked beats allowed, then fewer remaining,
// then the earlier reset.
func stricter(a, b windowState) bool {
	if a.blocked != b.blocked {
		return a.blocked
	}
	if a.remaining != b.remaining {
		return a.remaining < b.remaining
	}
	return a.reset.Before(b.reset)
}

func writeRateLimitHeaders(c *gin.Context, state windowState) {
	h := c.Writer.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(state.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(state.remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(state.reset.Unix(), 10))
	if state.blocked {
		h.Set("Retry-After", strconv.Itoa(retrySeconds(state)))
	}
}

func (rl *RateLimiter) reject(c *gin.Context, state windowState) {
	seconds := retrySeconds(state)

	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ProblemDetails{
		Type:       rateLimitProblemType,
		Title:      rateLimitProblemTitle,
		Status:     http.StatusTooManyRequests,
		Detail:     fmt.Sprintf("Too many requests. Try again in %d seconds.", seconds),
		Instance:   instance,
		RetryAfter: seconds,
		TraceID:    GetTraceID(c),
	})
}

func retrySeconds(state windowState) int {
	seconds := int(math.Ceil(state.retryAfter.Seconds()))
	if seconds < 0 {
		return 0
	}
	return seconds
}
