package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"InsightStream/internal/domain"
	"InsightStream/internal/store"
)

func TestEnsureAnalyzedIsIdempotent(t *testing.T) {
	t.Parallel()

	item := domain.Item{ID: "n2", Title: "chicken", Snippet: "smaller"}
	items := newStore(t, item)
	client := &stubAnalysis{result: domain.Analysis{Summary: "s", Sentiment: domain.SentimentNegative, Keywords: []string{"price"}}}
	cache := NewAnalysisCache(client, items, nil, 0)

	first, err := cache.EnsureAnalyzed(context.Background(), item)
	if err != nil {
		t.Fatalf("EnsureAnalyzed returned error: %v", err)
	}
	second, err := cache.EnsureAnalyzed(context.Background(), item)
	if err != nil {
		t.Fatalf("second EnsureAnalyzed returned error: %v", err)
	}

	if client.calls.Load() != 1 {
		t.Fatalf("expected one external call, got %d", client.calls.Load())
	}
	if !first.Analyzed || !second.Analyzed || !first.Analysis.Equal(*second.Analysis) {
		t.Fatalf("expected equal analyses, got %+v and %+v", first.Analysis, second.Analysis)
	}
}

func TestEnsureAnalyzedSkipsAnalyzedItems(t *testing.T) {
	t.Parallel()

	item := domain.Item{ID: "a"}.WithAnalysis(domain.Analysis{Summary: "done"})
	client := &stubAnalysis{}
	cache := NewAnalysisCache(client, newStore(t, item), nil, 0)

	got, err := cache.EnsureAnalyzed(context.Background(), item)
	if err != nil {
		t.Fatalf("EnsureAnalyzed returned error: %v", err)
	}
	if got.Analysis.Summary != "done" || client.calls.Load() != 0 {
		t.Fatalf("analyzed item must be returned unchanged without a call")
	}
}

// joinedSignal reports every caller attached to a flight on the returned channel.
func joinedSignal(cache *AnalysisCache) <-chan string {
	joined := make(chan string, 8)
	cache.joined = func(id string) { joined <- id }
	return joined
}

func TestEnsureAnalyzedSingleFlight(t *testing.T) {
	t.Parallel()

	item := domain.Item{ID: "x", Title: "title"}
	items := newStore(t, item)
	client := &stubAnalysis{release: make(chan struct{}), started: make(chan struct{})}
	cache := NewAnalysisCache(client, items, nil, 0)
	joined := joinedSignal(cache)

	var (
		wg      sync.WaitGroup
		results [2]domain.Item
		errs    [2]error
	)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = cache.EnsureAnalyzed(context.Background(), item)
		}()
	}

	<-joined
	<-joined
	<-client.started
	close(client.release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d returned error: %v", i, err)
		}
	}
	if client.calls.Load() != 1 {
		t.Fatalf("expected exactly one external call, got %d", client.calls.Load())
	}
	if !results[0].Analysis.Equal(*results[1].Analysis) {
		t.Fatalf("callers observed different results: %+v vs %+v", results[0].Analysis, results[1].Analysis)
	}
}

func TestEnsureAnalyzedOutlivesCancelledCaller(t *testing.T) {
	t.Parallel()

	item := domain.Item{ID: "x", Title: "title"}
	items := newStore(t, item)
	want := domain.Analysis{Summary: "real", Sentiment: domain.SentimentPositive, Keywords: []string{"deal"}}
	client := &stubAnalysis{result: want, release: make(chan struct{}), started: make(chan struct{})}
	cache := NewAnalysisCache(client, items, nil, time.Minute)
	joined := joinedSignal(cache)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.EnsureAnalyzed(firstCtx, item)
		firstErr <- err
	}()
	<-client.started
	<-joined

	type outcome struct {
		item domain.Item
		err  error
	}
	second := make(chan outcome, 1)
	go func() {
		got, err := cache.EnsureAnalyzed(context.Background(), item)
		second <- outcome{got, err}
	}()
	<-joined

	cancel()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller should see context.Canceled, got %v", err)
	}
	if stored, _ := items.Get("x"); stored.Analyzed {
		t.Fatalf("nothing may be stored before the call completes: %+v", stored.Analysis)
	}

	close(client.release)
	res := <-second
	if res.err != nil {
		t.Fatalf("waiting caller returned error: %v", res.err)
	}
	if !res.item.Analysis.Equal(want) {
		t.Fatalf("waiting caller got %+v, want the service result", res.item.Analysis)
	}
	stored, _ := items.Get("x")
	if !stored.Analyzed || !stored.Analysis.Equal(want) {
		t.Fatalf("service result not stored: %+v", stored.Analysis)
	}
	if client.calls.Load() != 1 {
		t.Fatalf("expected one external call, got %d", client.calls.Load())
	}
}

func TestEnsureAnalyzedFallbackIsCached(t *testing.T) {
	t.Parallel()

	item := domain.Item{ID: "f"}
	items := newStore(t, item)
	client := &stubAnalysis{err: errors.New("quota exceeded")}
	cache := NewAnalysisCache(client, items, nil, 0)

	got, err := cache.EnsureAnalyzed(context.Background(), item)
	if err != nil {
		t.Fatalf("EnsureAnalyzed returned error: %v", err)
	}
	if !got.Analysis.Equal(domain.FallbackAnalysis()) {
		t.Fatalf("expected fallback analysis, got %+v", got.Analysis)
	}

	if _, err := cache.EnsureAnalyzed(context.Background(), item); err != nil {
		t.Fatalf("second EnsureAnalyzed returned error: %v", err)
	}
	if client.calls.Load() != 1 {
		t.Fatalf("fallback must be cached, got %d calls", client.calls.Load())
	}

	stored, _ := items.Get("f")
	if !stored.Analyzed || stored.Analysis.Sentiment != domain.SentimentNeutral {
		t.Fatalf("fallback not stored: %+v", stored)
	}
}

func TestEnsureAnalyzedWithoutClientUsesFallback(t *testing.T) {
	t.Parallel()

	item := domain.Item{ID: "nokey"}
	cache := NewAnalysisCache(nil, newStore(t, item), nil, 0)

	got, err := cache.EnsureAnalyzed(context.Background(), item)
	if err != nil {
		t.Fatalf("EnsureAnalyzed returned error: %v", err)
	}
	if got.Analysis.Keywords[0] != "Error" {
		t.Fatalf("expected fallback keywords, got %v", got.Analysis.Keywords)
	}
}

func TestEnsureAnalyzedUnknownID(t *testing.T) {
	t.Parallel()

	cache := NewAnalysisCache(&stubAnalysis{}, newStore(t), nil, 0)
	_, err := cache.EnsureAnalyzed(context.Background(), domain.Item{ID: "ghost"})
	if !errors.Is(err, store.ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}
}

func TestEnsureAnalyzedTimeoutFallsBack(t *testing.T) {
	t.Parallel()

	item := domain.Item{ID: "slow"}
	client := &stubAnalysis{release: make(chan struct{})}
	cache := NewAnalysisCache(client, newStore(t, item), nil, 10*time.Millisecond)

	got, err := cache.EnsureAnalyzed(context.Background(), item)
	if err != nil {
		t.Fatalf("EnsureAnalyzed returned error: %v", err)
	}
	if !got.Analysis.Equal(domain.FallbackAnalysis()) {
		t.Fatalf("expected fallback after timeout, got %+v", got.Analysis)
	}
}
