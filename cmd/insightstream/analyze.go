package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"InsightStream/internal/app"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		flags filterFlags
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [id]",
		Short: "Attach AI insight to one item, or to every matching item with --all",
		Args: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return fmt.Errorf("pass an id or --all, not both")
			}
			if !all && len(args) != 1 {
				return fmt.Errorf("expected exactly one item id")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				out := cmd.OutOrStdout()

				if !all {
					item, err := a.Pipeline().Analyze(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					renderItem(out, item, a.Location())
					return nil
				}

				criteria, err := flags.criteria(a)
				if err != nil {
					return err
				}
				items, err := a.Pipeline().AnalyzeAll(cmd.Context(), criteria)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d items analyzed\n", len(items))
				for _, item := range items {
					renderItem(out, item, a.Location())
				}
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "Analyze every unanalyzed item matching the filters")
	return cmd
}
