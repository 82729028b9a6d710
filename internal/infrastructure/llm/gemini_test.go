package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"InsightStream/internal/config"
	"InsightStream/internal/domain"
)

func geminiReply(t *testing.T, text string, citations ...string) []byte {
	t.Helper()

	chunks := make([]map[string]any, 0, len(citations))
	for _, c := range citations {
		chunks = append(chunks, map[string]any{"web": map[string]any{"uri": c, "title": "t"}})
	}
	body, err := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content":           map[string]any{"parts": []any{map[string]any{"text": text}}},
			"groundingMetadata": map[string]any{"groundingChunks": chunks},
		}},
	})
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return body
}

func TestGeminiAnalyze(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write(geminiReply(t, `{"summary":"s","sentiment":"negative","actionTip":"call","keywords":["a"," ","b"]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "m", "key", time.Second)
	got, err := client.Analyze(context.Background(), "title", "snippet")
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if gotPath != "/models/m:generateContent" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotKey != "key" {
		t.Fatalf("api key header not set")
	}
	if _, ok := gotBody["generationConfig"]; !ok {
		t.Fatalf("expected schema-constrained generation config, got %v", gotBody)
	}
	want := domain.Analysis{Summary: "s", Sentiment: domain.SentimentNegative, ActionTip: "call", Keywords: []string{"a", "b"}}
	if !got.Equal(want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestGeminiAnalyzeFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if strings.Contains(r.URL.Path, "broken") {
			_, _ = w.Write(geminiReply(t, "not json"))
			return
		}
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := NewGeminiClient(server.URL, "m", "", time.Second).Analyze(context.Background(), "t", "s"); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("missing credential must not reach the network")
	}

	if _, err := NewGeminiClient(server.URL, "m", "key", time.Second).Analyze(context.Background(), "t", "s"); err == nil {
		t.Fatalf("expected error on non-2xx")
	}

	_, err := NewGeminiClient(server.URL, "broken", "key", time.Second).Analyze(context.Background(), "t", "s")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func newTestSearch(endpoint, key string) *SearchClient {
	s := NewSearchClient(config.SearchConfig{Endpoint: endpoint, Model: "m", APIKey: key, Timeout: time.Second})
	n := 0
	s.newID = func() string {
		n++
		return "live-" + string(rune('0'+n))
	}
	s.now = func() time.Time { return time.Date(2024, time.January, 10, 8, 0, 0, 0, time.UTC) }
	return s
}

func TestSearchAttachesCitationsPositionally(t *testing.T) {
	t.Parallel()

	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompt = req.Contents[0].Parts[0].Text
		if len(req.Tools) != 1 {
			t.Errorf("expected search tool in request")
		}
		text := "```json\n[{\"title\":\"A\",\"source\":\"CNA\",\"snippet\":\"a\"},{\"title\":\"B\",\"source\":\"UDN\",\"snippet\":\"b\"},{\"title\":\"\",\"source\":\"x\"}]\n```"
		_, _ = w.Write(geminiReply(t, text, "https://a.example"))
	}))
	defer server.Close()

	items, err := newTestSearch(server.URL, "key").Search(context.Background(), []string{"麥當勞 食安", "外送平台 法規"})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}

	if !strings.Contains(prompt, "麥當勞 食安, 外送平台 法規") {
		t.Fatalf("terms must be joined into one query, prompt: %s", prompt)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].URL != "https://a.example" || items[1].URL != domain.NoLinkURL {
		t.Fatalf("unexpected urls: %q %q", items[0].URL, items[1].URL)
	}
	for _, item := range items {
		if item.Category != domain.CategoryMacro || item.Analyzed {
			t.Fatalf("unexpected item: %+v", item)
		}
	}
	if items[0].ID == items[1].ID {
		t.Fatalf("ids must be unique")
	}
}

func TestSearchShortCircuitsAndFailsSoft(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write(geminiReply(t, "Sorry, I could not find anything."))
	}))
	defer server.Close()

	items, err := newTestSearch(server.URL, "key").Search(context.Background(), nil)
	if err != nil || items != nil {
		t.Fatalf("empty terms should return nothing, got %v %v", items, err)
	}
	if _, err := newTestSearch(server.URL, "").Search(context.Background(), []string{"x"}); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("short-circuit paths must not call the service")
	}

	if _, err := newTestSearch(server.URL, "key").Search(context.Background(), []string{"x"}); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}
