package llm

import (
	"context"
	"fmt"

	"github.com/liushuangls/go-anthropic/v2"

	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
)

const (
	anthropicDefaultModel = "claude-3-5-haiku-latest"
	anthropicMaxTokens    = 1024
)

// AnthropicClient implements ports.AnalysisClient via the Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	apiKey string
}

var _ ports.AnalysisClient = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client; endpoint overrides the default base URL.
func NewAnthropicClient(endpoint, model, apiKey string) *AnthropicClient {
	if model == "" {
		model = anthropicDefaultModel
	}
	var opts []anthropic.ClientOption
	if endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(endpoint))
	}
	return &AnthropicClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
		apiKey: apiKey,
	}
}

// Analyze sends the JSON-only prompt and parses the first text block.
func (c *AnthropicClient) Analyze(ctx context.Context, title, snippet string) (domain.Analysis, error) {
	if c.apiKey == "" {
		return domain.Analysis{}, ErrMissingCredential
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(buildAnalysisPrompt(title, snippet) + jsonOnlySuffix),
		},
	})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("anthropic analyze: %w", err)
	}
	return parseAnalysis(resp.GetFirstContentText())
}
