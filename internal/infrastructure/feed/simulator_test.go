package feed

import (
	"context"
	"testing"
	"time"

	"InsightStream/internal/domain"
)

var testSubs = []domain.SubscriptionConfig{
	{ID: "rss1", Name: "食品安全新聞網", URL: "https://example.com/food-safety-rss"},
	{ID: "rss2", Name: "數位時代", URL: "https://example.com/tech-rss"},
}

func TestSimulatorEmitsOneItemPerSubscription(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	sim := NewSimulator()
	sim.now = func() time.Time { return now }

	items, err := sim.Poll(context.Background(), testSubs)
	if err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if len(items) != len(testSubs) {
		t.Fatalf("expected %d items, got %d", len(testSubs), len(items))
	}
	for i, item := range items {
		if item.Source != testSubs[i].Name {
			t.Fatalf("item %d: expected source %q, got %q", i, testSubs[i].Name, item.Source)
		}
		if !item.PublishedAt.Equal(now) {
			t.Fatalf("item %d: expected refresh time as published time", i)
		}
		if item.Analyzed || item.Analysis != nil {
			t.Fatalf("item %d: fresh items must be unanalyzed", i)
		}
		if item.URL != domain.NoLinkURL {
			t.Fatalf("item %d: unexpected url %q", i, item.URL)
		}
	}
	if items[0].Category != domain.CategorySocial || items[1].Category != domain.CategoryDefensive {
		t.Fatalf("unexpected categories %s %s", items[0].Category, items[1].Category)
	}
}

func TestSimulatorIDsStayUniqueAcrossPolls(t *testing.T) {
	t.Parallel()

	sim := NewSimulator()
	frozen := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	sim.now = func() time.Time { return frozen }

	seen := map[string]bool{}
	for round := 0; round < 3; round++ {
		items, err := sim.Poll(context.Background(), testSubs)
		if err != nil {
			t.Fatalf("Poll returned error: %v", err)
		}
		for _, item := range items {
			if seen[item.ID] {
				t.Fatalf("duplicate id %s in round %d", item.ID, round)
			}
			seen[item.ID] = true
		}
		if round == 1 && items[0].Category != domain.CategoryDefensive {
			t.Fatalf("expected rotation to advance, got %s", items[0].Category)
		}
	}
}

func TestSimulatorHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSimulator().Poll(ctx, testSubs); err == nil {
		t.Fatalf("expected error for cancelled context")
	}

	items, err := NewSimulator().Poll(context.Background(), nil)
	if err != nil || len(items) != 0 {
		t.Fatalf("no subscriptions should yield nothing, got %v %v", items, err)
	}
}
