package ports

import (
	"context"
	"time"

	"InsightStream/internal/domain"
)

// SearchClient queries a keyword-driven live search service.
type SearchClient interface {
	Search(ctx context.Context, terms []string) ([]domain.Item, error)
}

// FeedSource polls user-configured subscriptions, one item per subscription.
type FeedSource interface {
	Poll(ctx context.Context, subscriptions []domain.SubscriptionConfig) ([]domain.Item, error)
}

// AnalysisClient annotates a single item with AI-derived insight.
type AnalysisClient interface {
	Analyze(ctx context.Context, title, snippet string) (domain.Analysis, error)
}

// SettingsStore persists the user's keyword and subscription collections.
type SettingsStore interface {
	LoadKeywords(ctx context.Context) ([]domain.KeywordConfig, error)
	SaveKeywords(ctx context.Context, keywords []domain.KeywordConfig) error
	LoadSubscriptions(ctx context.Context) ([]domain.SubscriptionConfig, error)
	SaveSubscriptions(ctx context.Context, subscriptions []domain.SubscriptionConfig) error
}

// ItemRepository keeps the collection between runs.
type ItemRepository interface {
	LoadItems(ctx context.Context) ([]domain.Item, error)
	AppendItems(ctx context.Context, batch []domain.Item) error
	UpdateItem(ctx context.Context, item domain.Item) error
}

// Notifier streams refresh digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when refreshes execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
