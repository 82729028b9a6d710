package llm

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"InsightStream/internal/config"
	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
)

// NewAnalysisClient resolves the configured provider and wraps it with a rate limiter.
func NewAnalysisClient(cfg config.AnalysisConfig) (ports.AnalysisClient, error) {
	var client ports.AnalysisClient
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "gemini":
		client = NewGeminiClient(cfg.Endpoint, cfg.Model, cfg.APIKey, cfg.Timeout)
	case "openai":
		client = NewOpenAIClient(cfg.Endpoint, cfg.Model, cfg.APIKey)
	case "anthropic", "claude":
		client = NewAnthropicClient(cfg.Endpoint, cfg.Model, cfg.APIKey)
	default:
		return nil, fmt.Errorf("unknown analysis provider %q (valid: gemini, openai, anthropic)", cfg.Provider)
	}

	if cfg.RequestsPerMinute > 0 {
		client = NewThrottled(client, cfg.RequestsPerMinute)
	}
	return client, nil
}

// Throttled spaces out analysis calls to stay within provider quotas.
type Throttled struct {
	next    ports.AnalysisClient
	limiter *rate.Limiter
}

var _ ports.AnalysisClient = (*Throttled)(nil)

// NewThrottled allows perMinute calls per minute with a burst of one.
func NewThrottled(next ports.AnalysisClient, perMinute int) *Throttled {
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1),
	}
}

// Analyze waits for a token, then delegates.
func (t *Throttled) Analyze(ctx context.Context, title, snippet string) (domain.Analysis, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return domain.Analysis{}, fmt.Errorf("rate limit: %w", err)
	}
	return t.next.Analyze(ctx, title, snippet)
}
