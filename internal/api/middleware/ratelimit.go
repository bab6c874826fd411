package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/robark/destiny-matrix/internal/core/ports"
)

const MsgRateLimited = "Too many analysis requests. Please try again later."

// RateLimitStage caps how often one caller may reach the order stage. It is
// placed after authentication so the limit is per user rather than per IP.
// Limiter failures let the request through.
type RateLimitStage struct {
	limiter ports.RateLimiter
	log     zerolog.Logger
}

func NewRateLimitStage(limiter ports.RateLimiter, log zerolog.Logger) *RateLimitStage {
	return &RateLimitStage{limiter: limiter, log: log.With().Str("stage", "rate_limit").Logger()}
}

func (s *RateLimitStage) Name() string { return "rate_limit" }

func (s *RateLimitStage) Run(c echo.Context) error {
	key := s.key(c)

	allowed, retryAfter, err := s.limiter.Allow(c.Request().Context(), key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
		return nil
	}
	if allowed {
		return nil
	}

	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
	s.log.Warn().Str("key", key).Int("retry_after", secs).Msg("rate limit exceeded")
	return echo.NewHTTPError(http.StatusTooManyRequests, MsgRateLimited)
}

func (s *RateLimitStage) key(c echo.Context) string {
	if u, ok := UserFrom(c); ok && u.ID != "" {
		return "user:" + u.ID
	}
	if token, err := BearerToken(c.Request()); err == nil {
		return "token:" + Fingerprint(token)
	}
	return "ip:" + c.RealIP()
}

const maxTrackedKeys = 10000

// MemoryRateLimiter is a per-process token bucket per key, used when no
// shared Redis is configured.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

// NewMemoryRateLimiter allows perMinute requests per key, refilled evenly.
func NewMemoryRateLimiter(perMinute int) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
		now:      time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	r := l.get(key).ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute, nil
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d, nil
	}
	return true, 0, nil
}

func (l *MemoryRateLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedKeys {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	return lim
}
