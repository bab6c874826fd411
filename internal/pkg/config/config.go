package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8000"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	LogDir          string        `env:"LOG_DIR,          default=logs"`
	LogPretty       bool          `env:"LOG_PRETTY,       default=false"`
	MaxBodySize     string        `env:"MAX_BODY_SIZE,    default=1M"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`

	Gemini    GeminiConfig
	Platform  PlatformConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	Model   string        `env:"GEMINI_MODEL,    default=gemini-2.5-flash"`
	BaseURL string        `env:"GEMINI_BASE_URL"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT,  default=60s"`
}

type PlatformConfig struct {
	BaseURL     string        `env:"PLATFORM_BASE_URL,     default=https://numina.polo-plus.com"`
	Timeout     time.Duration `env:"PLATFORM_TIMEOUT,      default=10s"`
	ServiceName string        `env:"PLATFORM_SERVICE_NAME, default=destiny-matrix"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`
}

type RateLimitConfig struct {
	PerMinute int `env:"RATE_LIMIT_PER_MINUTE, default=30"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB,        default=destiny_matrix"`
	Workers  int    `env:"JOURNAL_WORKERS, default=4"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// DefaultAllowedOrigins is used when CORS_ALLOWED_ORIGINS is empty.
var DefaultAllowedOrigins = []string{
	"http://localhost:8000",
	"https://api.robark.com.tr",
	"https://destiny.robark.com.tr",
	"http://localhost:9115",
	"https://robark.com.tr",
}

// Load reads a .env file when one exists, then the process environment.
// Variables already set in the environment win over the .env file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	cfg.CORS.AllowedOrigins = normalizeOrigins(cfg.CORS.AllowedOrigins)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
	return &cfg, nil
}

// Validate reports misconfiguration that would otherwise only surface on the
// first request.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY environment variable is not set"))
	}
	if c.Gemini.Timeout <= 0 {
		errs = append(errs, errors.New("GEMINI_TIMEOUT must be positive"))
	}
	if c.Platform.Timeout <= 0 {
		errs = append(errs, errors.New("PLATFORM_TIMEOUT must be positive"))
	}
	if u, err := url.Parse(c.Platform.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("PLATFORM_BASE_URL %q is not an absolute http(s) URL", c.Platform.BaseURL))
	}
	if strings.TrimSpace(c.Platform.ServiceName) == "" {
		errs = append(errs, errors.New("PLATFORM_SERVICE_NAME must not be empty"))
	}
	if c.RateLimit.PerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// IsProduction reports whether ENV selects production behaviour (JSON logs).
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Browsers never send a trailing slash in Origin.
func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
