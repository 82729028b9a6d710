package main

import (
	"github.com/spf13/cobra"

	"InsightStream/internal/app"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh on the configured cron schedule and publish Telegram digests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				return a.Watch(cmd.Context())
			})
		},
	}
}
