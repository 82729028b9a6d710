package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"InsightStream/internal/app"
)

func newRefreshCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch search results and feeds once and merge them into the timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				result, err := a.Pipeline().Refresh(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, fetchErr := range result.Errors {
					fmt.Fprintln(out, warnStyle.Render("! "+fetchErr.Error()))
				}
				fmt.Fprintf(out, "%d new items\n", len(result.Items))
				for _, item := range result.Items {
					renderItem(out, item, a.Location())
				}
				return nil
			})
		},
	}
}
