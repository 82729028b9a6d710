package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"InsightStream/internal/app"
	"InsightStream/internal/domain"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize categories and sentiment of the timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				st := a.Pipeline().Stats()
				out := cmd.OutOrStdout()

				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(st)
				}

				fmt.Fprintf(out, "%s %d items, %d analyzed\n", titleStyle.Render("Timeline"), st.Total, st.Analyzed())
				for _, cat := range domain.Categories() {
					fmt.Fprintf(out, "  %s %d\n", categoryBadge(cat), st.ByCategory[cat])
				}
				for _, s := range []domain.Sentiment{domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative} {
					fmt.Fprintf(out, "  %s %d\n", sentimentBadge(s), st.Sentiment[s])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print stats as JSON")
	return cmd
}
