package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
	"InsightStream/internal/store"
)

// AggregatorDeps wires the fetch adapters and the collection.
type AggregatorDeps struct {
	Search  ports.SearchClient
	Feeds   ports.FeedSource
	Store   *store.ItemStore
	Logger  *slog.Logger
	Timeout time.Duration
}

// RefreshResult carries the merged batch and the per-branch failures that were absorbed.
type RefreshResult struct {
	Items  []domain.Item
	Errors []error
}

// Aggregator fans out to search and feeds, then prepends the merged batch.
type Aggregator struct {
	search  ports.SearchClient
	feeds   ports.FeedSource
	store   *store.ItemStore
	logger  *slog.Logger
	timeout time.Duration

	// mergeMu keeps dedup-then-append of one refresh from interleaving with another.
	mergeMu sync.Mutex
}

// NewAggregator constructs the refresh orchestrator.
func NewAggregator(deps AggregatorDeps) *Aggregator {
	return &Aggregator{
		search:  deps.Search,
		feeds:   deps.Feeds,
		store:   deps.Store,
		logger:  deps.Logger,
		timeout: deps.Timeout,
	}
}

// Refresh runs one aggregation cycle. Search items come first, then one
// item per subscription. A failing branch contributes nothing and is
// reported in RefreshResult.Errors; it never fails the other branch.
func (a *Aggregator) Refresh(ctx context.Context, keywords []string, subscriptions []domain.SubscriptionConfig) RefreshResult {
	var (
		searchRes domain.FetchResult
		feedRes   domain.FetchResult
		g         errgroup.Group
	)

	if len(keywords) > 0 && a.search != nil {
		g.Go(func() error {
			searchRes = a.fetch(ctx, func(ctx context.Context) ([]domain.Item, error) {
				return a.search.Search(ctx, keywords)
			})
			return nil
		})
	}

	if len(subscriptions) > 0 && a.feeds != nil {
		g.Go(func() error {
			feedRes = a.fetch(ctx, func(ctx context.Context) ([]domain.Item, error) {
				return a.feeds.Poll(ctx, subscriptions)
			})
			return nil
		})
	}

	_ = g.Wait()

	var result RefreshResult
	if !searchRes.OK() {
		a.warn("search branch failed", "error", searchRes.Err)
		result.Errors = append(result.Errors, fmt.Errorf("search: %w", searchRes.Err))
	}
	if !feedRes.OK() {
		a.warn("feed branch failed", "error", feedRes.Err)
		result.Errors = append(result.Errors, fmt.Errorf("feeds: %w", feedRes.Err))
	}

	batch := make([]domain.Item, 0, len(searchRes.Items)+len(feedRes.Items))
	batch = append(batch, searchRes.Items...)
	batch = append(batch, feedRes.Items...)
	if len(batch) == 0 {
		return result
	}

	merged, err := a.merge(batch)
	if err != nil {
		a.logError("merge rejected", "error", err)
		result.Errors = append(result.Errors, err)
		return result
	}

	a.debug("refresh merged", "search", len(searchRes.Items), "feeds", len(feedRes.Items), "appended", len(merged))
	result.Items = merged
	return result
}

func (a *Aggregator) fetch(ctx context.Context, call func(context.Context) ([]domain.Item, error)) domain.FetchResult {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	items, err := call(ctx)
	if err != nil {
		return domain.FetchResult{Err: err}
	}
	return domain.FetchResult{Items: items}
}

func (a *Aggregator) merge(batch []domain.Item) ([]domain.Item, error) {
	if a.store == nil {
		return nil, fmt.Errorf("item store is not configured")
	}

	a.mergeMu.Lock()
	defer a.mergeMu.Unlock()

	seen := make(map[string]struct{}, len(batch))
	unique := make([]domain.Item, 0, len(batch))
	for _, item := range batch {
		if _, dup := seen[item.ID]; dup || item.ID == "" || a.store.Has(item.ID) {
			a.logError("dropping item with colliding id", "id", item.ID, "source", item.Source)
			continue
		}
		seen[item.ID] = struct{}{}
		unique = append(unique, item)
	}

	if err := a.store.Append(unique); err != nil {
		return nil, fmt.Errorf("append batch: %w", err)
	}
	return unique, nil
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

func (a *Aggregator) logError(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Error(msg, args...)
	}
}
