package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
)

const openAIDefaultModel = "gpt-4o-mini"

// OpenAIClient implements ports.AnalysisClient backed by OpenAI-compatible APIs.
type OpenAIClient struct {
	client *openai.Client
	model  string
	apiKey string
}

var _ ports.AnalysisClient = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client; endpoint overrides the default base URL.
func NewOpenAIClient(endpoint, model, apiKey string) *OpenAIClient {
	if model == "" {
		model = openAIDefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		apiKey: apiKey,
	}
}

// Analyze asks for a JSON object response and parses it.
func (c *OpenAIClient) Analyze(ctx context.Context, title, snippet string) (domain.Analysis, error) {
	if c.apiKey == "" {
		return domain.Analysis{}, ErrMissingCredential
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildAnalysisPrompt(title, snippet) + jsonOnlySuffix},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("openai analyze: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Analysis{}, fmt.Errorf("openai analyze: %w: no choices", ErrMalformedResponse)
	}
	return parseAnalysis(resp.Choices[0].Message.Content)
}
