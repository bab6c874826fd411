package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8000" {
		t.Fatalf("expected port 8000, got %q", cfg.Port)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %q", cfg.Gemini.Model)
	}
	if cfg.Platform.Timeout != 10*time.Second {
		t.Fatalf("unexpected platform timeout %s", cfg.Platform.Timeout)
	}
	if cfg.RateLimit.PerMinute != 30 {
		t.Fatalf("unexpected rate limit %d", cfg.RateLimit.PerMinute)
	}
	if len(cfg.CORS.AllowedOrigins) != len(DefaultAllowedOrigins) {
		t.Fatalf("expected default origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_OriginsAreNormalized(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"CORS_ALLOWED_ORIGINS": "https://a.example/, https://b.example",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []string{"https://a.example", "https://b.example"}
	if strings.Join(cfg.CORS.AllowedOrigins, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, cfg.CORS.AllowedOrigins)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected GEMINI_API_KEY error, got %v", err)
	}
}

func TestValidate_OK(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"GEMINI_API_KEY": "key",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_BadPlatformURL(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"GEMINI_API_KEY":    "key",
		"PLATFORM_BASE_URL": "numina.polo-plus.com",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "PLATFORM_BASE_URL") {
		t.Fatalf("expected PLATFORM_BASE_URL error, got %v", err)
	}
}
