// Package gemini implements ports.TextGenerator on top of the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/robark/destiny-matrix/internal/api/metrics"
	"github.com/robark/destiny-matrix/internal/core/domain"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
)

// Config captures the settings for the Gemini client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // empty = SDK default endpoint
	Timeout time.Duration
	// HTTPClient is shared by all calls. The SDK default is used when nil.
	HTTPClient *http.Client
}

// Generator sends one prompt per call to a Gemini model.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// New builds a Generator. A missing API key is reported as
// domain.ErrGeneratorUnavailable so callers can fail at startup.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: %w: GEMINI_API_KEY is not set", domain.ErrGeneratorUnavailable)
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w: %v", domain.ErrGeneratorUnavailable, err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Generator{client: client, model: model, timeout: timeout}, nil
}

// Generate sends prompt as a single user message and returns the model text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	outcome := "error"
	start := time.Now()
	defer func() {
		metrics.RemoteCallDuration.WithLabelValues("gemini", outcome).Observe(time.Since(start).Seconds())
	}()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyAnalysis
	}

	outcome = "ok"
	return text, nil
}
