package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"InsightStream/internal/domain"
	"InsightStream/internal/ports"
	"InsightStream/internal/store"
)

// AnalysisCache analyzes each item at most once and collapses concurrent
// requests for the same id into one call to the analysis service.
type AnalysisCache struct {
	client  ports.AnalysisClient
	store   *store.ItemStore
	logger  *slog.Logger
	timeout time.Duration

	// inflight is keyed by item id; entries are dropped when the call returns.
	inflight singleflight.Group
	// joined, when set, runs once a caller is attached to a flight.
	joined func(id string)
}

// NewAnalysisCache wraps the client around the collection it patches.
func NewAnalysisCache(client ports.AnalysisClient, items *store.ItemStore, logger *slog.Logger, timeout time.Duration) *AnalysisCache {
	return &AnalysisCache{
		client:  client,
		store:   items,
		logger:  logger,
		timeout: timeout,
	}
}

// EnsureAnalyzed returns the item with its analysis attached. Service
// failures yield domain.FallbackAnalysis, which is stored like a real result.
//
// The flight is detached from ctx: a caller that gives up gets ctx.Err()
// while the call keeps running, bounded by the cache timeout, for the callers
// still waiting. Apart from that, the only error is an id that is not in the
// collection.
func (c *AnalysisCache) EnsureAnalyzed(ctx context.Context, item domain.Item) (domain.Item, error) {
	if item.Analyzed {
		return item, nil
	}

	flight := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(item.ID, func() (any, error) {
		return c.analyze(flight, item.ID)
	})
	if c.joined != nil {
		c.joined(item.ID)
	}

	select {
	case <-ctx.Done():
		return domain.Item{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if c.logger != nil {
				c.logger.Error("analysis patch failed", "id", item.ID, "error", res.Err)
			}
			return domain.Item{}, res.Err
		}
		if res.Shared && c.logger != nil {
			c.logger.Debug("joined in-flight analysis", "id", item.ID)
		}
		return res.Val.(domain.Item), nil
	}
}

func (c *AnalysisCache) analyze(ctx context.Context, id string) (domain.Item, error) {
	current, ok := c.store.Get(id)
	if !ok {
		return domain.Item{}, fmt.Errorf("analyze %s: %w", id, store.ErrUnknownID)
	}
	if current.Analyzed {
		return current, nil
	}

	analysis := domain.FallbackAnalysis()
	if c.client != nil {
		callCtx := ctx
		if c.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}

		result, err := c.client.Analyze(callCtx, current.Title, current.Snippet)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("analysis unavailable, using fallback", "id", id, "error", err)
			}
		} else {
			analysis = result
		}
	}

	return c.store.Patch(id, analysis)
}
