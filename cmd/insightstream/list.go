package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"InsightStream/internal/app"
	"InsightStream/internal/domain"
	"InsightStream/internal/filter"
)

type filterFlags struct {
	category string
	query    string
	from     string
	to       string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "DEFENSIVE, OFFENSIVE, MACRO, SOCIAL or ALL")
	cmd.Flags().StringVar(&f.query, "query", "", "Case-insensitive text to find in title or snippet")
	cmd.Flags().StringVar(&f.from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day to include (YYYY-MM-DD)")
}

func (f *filterFlags) criteria(a *app.Application) (filter.Criteria, error) {
	c := filter.Criteria{Query: f.query, Location: a.Location()}

	if f.category != "" {
		category, ok := domain.ParseCategory(f.category)
		if !ok {
			return filter.Criteria{}, fmt.Errorf("unknown category %q", f.category)
		}
		c.Category = category
	}

	if f.from != "" {
		day, err := filter.ParseDay(f.from, c.Location)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("--from: %w", err)
		}
		c.DateFrom = day
	}
	if f.to != "" {
		day, err := filter.ParseDay(f.to, c.Location)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("--to: %w", err)
		}
		c.DateTo = day
	}

	return c, nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		flags  filterFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the timeline, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				criteria, err := flags.criteria(a)
				if err != nil {
					return err
				}
				items := a.Pipeline().Items(criteria)

				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(items)
				}

				if len(items) == 0 {
					fmt.Fprintln(out, dimStyle.Render("no items match"))
					return nil
				}
				for _, item := range items {
					renderItem(out, item, a.Location())
				}
				fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d items", len(items))))
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print items as JSON")
	return cmd
}
