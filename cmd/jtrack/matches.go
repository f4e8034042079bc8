package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jtrack/internal/matches"
	"github.com/jonathan/jtrack/internal/shell"
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Jobs other users applied to",
}

var matchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recommended jobs",
	RunE:  runMatchesList,
}

var matchesWishlistCmd = &cobra.Command{
	Use:   "wishlist <job-id>",
	Short: "Add a recommended job to your wish list",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatchesWishlist,
}

func init() {
	matchesCmd.AddCommand(matchesListCmd, matchesWishlistCmd)
	rootCmd.AddCommand(matchesCmd)
}

// matchesView restores the session and loads the recommendations.
func (a *app) matchesView(ctx context.Context) (*matches.View, error) {
	if _, err := a.open(ctx, shell.PageMatches); err != nil {
		return nil, err
	}
	view := matches.New(a.api, a.store, a.logger.Named("matches"))
	if _, err := view.Fetch(ctx); err != nil {
		return nil, err
	}
	return view, nil
}

func runMatchesList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		view, err := a.matchesView(ctx)
		if err != nil {
			return err
		}
		a.printer.PrintMatches(view.Result())
		return nil
	})
}

func runMatchesWishlist(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		view, err := a.matchesView(ctx)
		if err != nil {
			return err
		}
		if err := view.Wishlist(ctx, args[0]); err != nil {
			return err
		}
		a.printer.PrintMessage(fmt.Sprintf("Added job %s to your wish list.", args[0]))
		a.printer.PrintMatches(view.Result())
		return nil
	})
}
