package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"InsightStream/internal/app"
	"InsightStream/internal/domain"
)

func newKeywordsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Manage search keywords",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				keywords, err := a.Settings().Keywords(cmd.Context())
				if err != nil {
					return err
				}
				for _, kw := range keywords {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s\n", dimStyle.Render(kw.ID), categoryBadge(kw.Category), kw.Term)
				}
				return nil
			})
		},
	}

	var category string
	add := &cobra.Command{
		Use:   "add <term>",
		Short: "Add a keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, ok := domain.ParseCategory(category)
			if !ok || cat == domain.CategoryAll {
				return fmt.Errorf("unknown category %q", category)
			}
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				kw, err := a.Settings().AddKeyword(cmd.Context(), args[0], cat)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", kw.Term, kw.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&category, "category", string(domain.CategoryDefensive), "Keyword category")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a keyword by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				return a.Settings().RemoveKeyword(cmd.Context(), args[0])
			})
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}

func newSubscriptionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Manage feed subscriptions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				subs, err := a.Settings().Subscriptions(cmd.Context())
				if err != nil {
					return err
				}
				for _, sub := range subs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %s %s\n", dimStyle.Render(sub.ID), sub.Name, dimStyle.Render(sub.URL))
				}
				return nil
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a subscription",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				sub, err := a.Settings().AddSubscription(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", sub.Name, sub.ID)
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a subscription by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.Application) error {
				return a.Settings().RemoveSubscription(cmd.Context(), args[0])
			})
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
