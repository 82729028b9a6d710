package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"InsightStream/internal/app"
	"InsightStream/internal/config"
	"InsightStream/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "insightstream",
		Short: "Business news radar: search, feeds and AI insight in one timeline",
		Long: `insightstream merges keyword search results and subscribed feeds into one
timeline, annotates items with AI sentiment and action tips, and filters the
collection by category, text and date.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log") {
				cfg.Logging.Level = opts.logLevel
			}
			opts.cfg = cfg
			opts.logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to config file (default "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log", "info",
		"Log level: debug, info, warn, error")

	cmd.AddCommand(
		newRefreshCmd(opts),
		newListCmd(opts),
		newAnalyzeCmd(opts),
		newStatsCmd(opts),
		newWatchCmd(opts),
		newKeywordsCmd(opts),
		newSubscriptionsCmd(opts),
	)

	return cmd
}

// withApp builds the application for one command and closes it afterwards.
func (o *rootOptions) withApp(ctx context.Context, run func(*app.Application) error) error {
	application, err := app.New(ctx, o.cfg, o.logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			o.logger.Warn("close storage", "error", closeErr)
		}
	}()
	return run(application)
}
