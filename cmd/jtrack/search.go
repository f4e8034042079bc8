package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/jtrack/internal/insights"
	"github.com/jonathan/jtrack/internal/shell"
)

var searchCmd = &cobra.Command{
	Use:   "search <job title>",
	Short: "Get career insights for a role and compare them with your resume",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past analyses or show one of them",
	RunE:  runHistory,
}

var selectID string

func init() {
	historyCmd.Flags().StringVar(&selectID, "select", "", "Show the analysis with this id")
	rootCmd.AddCommand(searchCmd, historyCmd)
}

// insightsView restores the session and loads the analysis history.
func (a *app) insightsView(ctx context.Context) (*insights.View, error) {
	if _, err := a.open(ctx, shell.PageSearch); err != nil {
		return nil, err
	}
	view := insights.New(insights.Options{
		Backend: a.api,
		Resume:  a.resume,
		Cache:   a.store,
		Logger:  a.logger.Named("insights"),
	})
	source, err := view.LoadHistory(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("analysis history loaded", zap.String("source", string(source)), zap.Int("count", len(view.History())))
	return view, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")
	return withApp(cmd, func(ctx context.Context, a *app) error {
		view, err := a.insightsView(ctx)
		if err != nil {
			return err
		}
		result, err := view.Search(ctx, term)
		if err != nil {
			return err
		}
		if result == nil {
			a.printer.PrintMessage("Enter a job title to search for.")
			return nil
		}
		a.printer.PrintSearchResult(result)
		return nil
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		view, err := a.insightsView(ctx)
		if err != nil {
			return err
		}
		if selectID == "" {
			a.printer.PrintHistory(view.History(), "")
			return nil
		}
		result, err := view.Select(selectID)
		if err != nil {
			return err
		}
		a.printer.PrintHistory(view.History(), view.Selected())
		a.printer.PrintSearchResult(result)
		return nil
	})
}
