package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"InsightStream/internal/config"
	"InsightStream/internal/domain"
	"InsightStream/internal/infrastructure/feed"
	"InsightStream/internal/infrastructure/llm"
	"InsightStream/internal/infrastructure/scheduler"
	"InsightStream/internal/infrastructure/storage"
	"InsightStream/internal/infrastructure/telegram"
	"InsightStream/internal/logging"
	"InsightStream/internal/ports"
	"InsightStream/internal/store"
	"InsightStream/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *storage.DB
	items     *store.ItemStore
	pipeline  *usecase.Pipeline
	settings  *usecase.SettingsService
	scheduler *usecase.Scheduler
}

// New opens storage, restores the item collection and builds the pipeline.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	dsn, err := cfg.Database.ResolvedDSN()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	baseLogger.Debug("storage opened", "driver", db.Driver())

	settingsRepo := storage.NewSettingsRepository(db, logging.Component(baseLogger, "settings"))
	itemRepo := storage.NewItemRepository(db)

	initial, err := itemRepo.LoadItems(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load items: %w", err)
	}
	if len(initial) == 0 {
		initial = domain.SeedItems(time.Now())
		if err := itemRepo.AppendItems(ctx, initial); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("seed items: %w", err)
		}
	}
	items, err := store.New(initial)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("restore items: %w", err)
	}

	feeds, err := newFeedRegistry(cfg, baseLogger).Resolve(cfg.Feeds.Mode)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	analysisClient, err := llm.NewAnalysisClient(cfg.Analysis)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	aggregator := usecase.NewAggregator(usecase.AggregatorDeps{
		Search:  llm.NewSearchClient(cfg.Search),
		Feeds:   feeds,
		Store:   items,
		Logger:  logging.Component(baseLogger, "aggregator"),
		Timeout: cfg.Refresh.Timeout,
	})

	analysis := usecase.NewAnalysisCache(analysisClient, items, logging.Component(baseLogger, "analysis"), cfg.Analysis.Timeout)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Settings:   settingsRepo,
		Repository: itemRepo,
		Notifier:   notifier,
		Aggregator: aggregator,
		Analysis:   analysis,
		Store:      items,
		Logger:     logging.Component(baseLogger, "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		db:       db,
		items:    items,
		pipeline: pipeline,
		settings: usecase.NewSettingsService(settingsRepo),
	}, nil
}

func newFeedRegistry(cfg config.Config, logger *slog.Logger) *feed.Registry {
	registry := feed.NewRegistry()
	registry.Register(feed.ModeSimulated, feed.NewSimulator())
	registry.Register(feed.ModeRSS, feed.NewRSSPoller(
		&http.Client{Timeout: cfg.Feeds.Timeout},
		logging.Component(logger, "feed.rss"),
	))
	return registry
}

// Pipeline exposes the refresh, analyze and query workflows.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Settings exposes keyword and subscription editing.
func (a *Application) Settings() *usecase.SettingsService {
	return a.settings
}

// Location is the timezone used for schedules and day-bounded filters.
func (a *Application) Location() *time.Location {
	return a.cfg.Scheduler.Location()
}

// Watch refreshes on the configured cron schedule until ctx is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	driver, err := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.Location(), a.cfg.Scheduler.RunOnStart)
	if err != nil {
		return err
	}

	a.scheduler = usecase.NewScheduler(driver, a.pipeline, logging.Component(a.logger, "scheduler"))
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("watching", "cron", a.cfg.Scheduler.CronExpression, "next", driver.Next(time.Now()))

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Close releases storage.
func (a *Application) Close() error {
	return a.db.Close()
}
