package ports

import (
	"context"
	"time"
)

// RateLimiter decides whether key may perform one more request.
// retryAfter is only meaningful when allowed is false.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}
