package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, limit int) (*RateLimiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2026, 10, 16, 10, 0, 15, 0, time.UTC)
	l := NewRateLimiter(client, limit, time.Minute)
	l.now = func() time.Time { return now }
	return l, mr, &now
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	l, _, _ := newLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "user-1")
		if err != nil || !ok {
			t.Fatalf("call %d: expected allowed, got ok=%v err=%v", i, ok, err)
		}
	}

	ok, retry, err := l.Allow(ctx, "user-1")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatalf("third call should be limited")
	}
	if retry != 45*time.Second {
		t.Fatalf("expected retry after 45s, got %s", retry)
	}

	if ok, _, _ := l.Allow(ctx, "user-2"); !ok {
		t.Fatalf("other keys must not be affected")
	}
}

func TestRateLimiter_NewWindowResets(t *testing.T) {
	l, _, now := newLimiter(t, 1)
	ctx := context.Background()

	if ok, _, _ := l.Allow(ctx, "u"); !ok {
		t.Fatalf("first call should pass")
	}
	if ok, _, _ := l.Allow(ctx, "u"); ok {
		t.Fatalf("second call should be limited")
	}

	*now = now.Add(time.Minute)
	if ok, _, _ := l.Allow(ctx, "u"); !ok {
		t.Fatalf("call in next window should pass")
	}
}

func TestRateLimiter_KeysExpire(t *testing.T) {
	l, mr, _ := newLimiter(t, 5)
	if _, _, err := l.Allow(context.Background(), "u"); err != nil {
		t.Fatalf("Allow: %v", err)
	}

	keys := mr.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected one key, got %v", keys)
	}
	if ttl := mr.TTL(keys[0]); ttl != time.Minute {
		t.Fatalf("expected 1m TTL, got %s", ttl)
	}
}

func TestRateLimiter_BackendDown(t *testing.T) {
	l, mr, _ := newLimiter(t, 5)
	mr.Close()

	if _, _, err := l.Allow(context.Background(), "u"); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}
