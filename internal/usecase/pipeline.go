package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"InsightStream/internal/domain"
	"InsightStream/internal/filter"
	"InsightStream/internal/ports"
	"InsightStream/internal/store"
)

// analyzeAllLimit bounds concurrent analysis calls in AnalyzeAll.
const analyzeAllLimit = 4

// PipelineDeps wires the core components and the driven adapters around them.
type PipelineDeps struct {
	Settings   ports.SettingsStore
	Repository ports.ItemRepository
	Notifier   ports.Notifier
	Aggregator *Aggregator
	Analysis   *AnalysisCache
	Store      *store.ItemStore
	Logger     *slog.Logger
}

// Pipeline implements the refresh, analyze and query workflows.
type Pipeline struct {
	settings   ports.SettingsStore
	repository ports.ItemRepository
	notifier   ports.Notifier
	aggregator *Aggregator
	analysis   *AnalysisCache
	store      *store.ItemStore
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		settings:   deps.Settings,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		aggregator: deps.Aggregator,
		analysis:   deps.Analysis,
		store:      deps.Store,
		logger:     deps.Logger,
	}
}

// Refresh loads the current settings, runs one aggregation cycle, persists
// the new batch and publishes a digest of the new items.
func (p *Pipeline) Refresh(ctx context.Context) (RefreshResult, error) {
	if p.aggregator == nil {
		return RefreshResult{}, nil
	}

	var (
		keywords      []domain.KeywordConfig
		subscriptions []domain.SubscriptionConfig
		err           error
	)
	if p.settings != nil {
		keywords, err = p.settings.LoadKeywords(ctx)
		if err != nil {
			return RefreshResult{}, fmt.Errorf("load keywords: %w", err)
		}
		subscriptions, err = p.settings.LoadSubscriptions(ctx)
		if err != nil {
			return RefreshResult{}, fmt.Errorf("load subscriptions: %w", err)
		}
	}

	p.debug("refresh", "keywords", len(keywords), "subscriptions", len(subscriptions))
	result := p.aggregator.Refresh(ctx, domain.Terms(keywords), subscriptions)
	if len(result.Items) == 0 {
		return result, nil
	}

	if err := p.persistBatch(ctx, result.Items); err != nil {
		return result, err
	}

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, buildDigestMessage(result.Items)); err != nil {
			p.warn("publish digest failed", "error", err)
		}
	}

	return result, nil
}

// Analyze ensures the item with the given id carries an analysis.
func (p *Pipeline) Analyze(ctx context.Context, id string) (domain.Item, error) {
	item, ok := p.store.Get(id)
	if !ok {
		return domain.Item{}, fmt.Errorf("analyze %s: %w", id, store.ErrUnknownID)
	}
	// An analysis that finished after its caller gave up is persisted here.
	analyzed := item
	if !item.Analyzed {
		var err error
		analyzed, err = p.analysis.EnsureAnalyzed(ctx, item)
		if err != nil {
			return domain.Item{}, err
		}
	}
	if err := p.persistAnalysis(ctx, analyzed); err != nil {
		return analyzed, err
	}
	return analyzed, nil
}

// AnalyzeAll analyzes every unanalyzed item matching the criteria.
func (p *Pipeline) AnalyzeAll(ctx context.Context, criteria filter.Criteria) ([]domain.Item, error) {
	pending := make([]domain.Item, 0)
	for _, item := range p.Items(criteria) {
		if !item.Analyzed {
			pending = append(pending, item)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}

	results := make([]domain.Item, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(analyzeAllLimit)
	for i, item := range pending {
		g.Go(func() error {
			analyzed, err := p.analysis.EnsureAnalyzed(gctx, item)
			if err != nil {
				return err
			}
			results[i] = analyzed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, item := range results {
		if err := p.persistAnalysis(ctx, item); err != nil {
			return results, err
		}
	}
	return results, nil
}

// Items returns a filtered view over the current collection.
func (p *Pipeline) Items(criteria filter.Criteria) []domain.Item {
	return filter.Apply(p.store.Snapshot(), criteria)
}

// Stats summarizes the current collection.
func (p *Pipeline) Stats() Stats {
	return ComputeStats(p.store.Snapshot())
}

func (p *Pipeline) persistBatch(ctx context.Context, batch []domain.Item) error {
	if p.repository == nil {
		return nil
	}
	if err := p.repository.AppendItems(ctx, batch); err != nil {
		return fmt.Errorf("persist items: %w", err)
	}
	return nil
}

func (p *Pipeline) persistAnalysis(ctx context.Context, item domain.Item) error {
	if p.repository == nil {
		return nil
	}
	if err := p.repository.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("persist analysis %s: %w", item.ID, err)
	}
	return nil
}

func buildDigestMessage(items []domain.Item) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d new items\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(&b, "- [%s] %s\n%s\n", item.Category, item.Title, item.Source)
		if item.URL != "" && item.URL != domain.NoLinkURL {
			fmt.Fprintf(&b, "%s\n", item.URL)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
