package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"InsightStream/internal/config"
	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
)

const (
	geminiDefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel    = "gemini-2.5-flash"
	defaultSearchLimit    = 5
)

// GeminiClient talks to the Gemini generateContent REST API.
type GeminiClient struct {
	rest   restClient
	model  string
	apiKey string
}

var _ ports.AnalysisClient = (*GeminiClient)(nil)

// NewGeminiClient builds a client; an empty key is allowed and makes every call fail fast.
func NewGeminiClient(endpoint, model, apiKey string, timeout time.Duration) *GeminiClient {
	if endpoint == "" {
		endpoint = geminiDefaultEndpoint
	}
	if model == "" {
		model = geminiDefaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiClient{
		rest: restClient{
			endpoint: endpoint,
			headers:  map[string]string{"x-goog-api-key": apiKey},
			http:     &http.Client{Timeout: timeout},
		},
		model:  model,
		apiKey: apiKey,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig map[string]any   `json:"generationConfig,omitempty"`
	Tools            []map[string]any `json:"tools,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content           geminiContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func (r geminiResponse) citations() []string {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var urls []string
	for _, chunk := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web != nil && chunk.Web.URI != "" {
			urls = append(urls, chunk.Web.URI)
		}
	}
	return urls
}

var analysisSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"summary":   map[string]any{"type": "STRING"},
		"sentiment": map[string]any{"type": "STRING", "enum": []string{"POSITIVE", "NEGATIVE", "NEUTRAL"}},
		"actionTip": map[string]any{"type": "STRING"},
		"keywords":  map[string]any{"type": "ARRAY", "items": map[string]any{"type": "STRING"}},
	},
	"required": []string{"summary", "sentiment", "actionTip", "keywords"},
}

// Analyze requests a schema-constrained JSON annotation.
func (c *GeminiClient) Analyze(ctx context.Context, title, snippet string) (domain.Analysis, error) {
	if c.apiKey == "" {
		return domain.Analysis{}, ErrMissingCredential
	}

	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: buildAnalysisPrompt(title, snippet)}}}},
		GenerationConfig: map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   analysisSchema,
		},
	}

	var resp geminiResponse
	if err := c.rest.post(ctx, c.generatePath(), req, &resp); err != nil {
		return domain.Analysis{}, fmt.Errorf("gemini analyze: %w", err)
	}
	return parseAnalysis(resp.text())
}

func (c *GeminiClient) generatePath() string {
	return "/models/" + c.model + ":generateContent"
}

// SearchClient runs grounded Gemini searches and turns the answer into items.
type SearchClient struct {
	gemini *GeminiClient
	limit  int
	now    func() time.Time
	newID  func() string
}

var _ ports.SearchClient = (*SearchClient)(nil)

// NewSearchClient builds the live-search adapter from configuration.
func NewSearchClient(cfg config.SearchConfig) *SearchClient {
	limit := cfg.MaxResults
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &SearchClient{
		gemini: NewGeminiClient(cfg.Endpoint, cfg.Model, cfg.APIKey, cfg.Timeout),
		limit:  limit,
		now:    time.Now,
		newID:  func() string { return "live-" + uuid.NewString() },
	}
}

// Search issues one query for all terms. Citation URLs are attached
// positionally; items without a matching citation get domain.NoLinkURL.
func (s *SearchClient) Search(ctx context.Context, terms []string) ([]domain.Item, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	if s.gemini.apiKey == "" {
		return nil, ErrMissingCredential
	}

	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: buildSearchPrompt(terms, s.limit)}}}},
		Tools:    []map[string]any{{"google_search": map[string]any{}}},
	}

	var resp geminiResponse
	if err := s.gemini.rest.post(ctx, s.gemini.generatePath(), req, &resp); err != nil {
		return nil, fmt.Errorf("gemini search: %w", err)
	}

	hits, err := parseSearchHits(resp.text())
	if err != nil {
		return nil, fmt.Errorf("gemini search: %w", err)
	}

	citations := resp.citations()
	now := s.now()
	items := make([]domain.Item, 0, len(hits))
	for i, hit := range hits {
		url := domain.NoLinkURL
		if i < len(citations) {
			url = citations[i]
		}
		items = append(items, domain.Item{
			ID:          s.newID(),
			Title:       strings.TrimSpace(hit.Title),
			Source:      strings.TrimSpace(hit.Source),
			Snippet:     strings.TrimSpace(hit.Snippet),
			URL:         url,
			PublishedAt: now,
			Category:    domain.CategoryMacro,
		})
	}
	return items, nil
}
