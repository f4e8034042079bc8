package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/jtrack/internal/fetch"
	"github.com/jonathan/jtrack/internal/shell"
	"github.com/jonathan/jtrack/internal/tracker"
	"github.com/jonathan/jtrack/internal/types"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Track job applications",
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications grouped by status",
	RunE:  runAppsList,
}

var appsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an application",
	RunE:  runAppsAdd,
}

var appsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsUpdate,
}

var appsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsDelete,
}

var appsPreviewCmd = &cobra.Command{
	Use:   "preview <job-url>",
	Short: "Show what a job posting page says about itself",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsPreview,
}

var (
	appSearch   string
	appCollapse string

	appTitle    string
	appCompany  string
	appLocation string
	appDate     string
	appStatus   string
	appLink     string
	appFill     bool
)

func init() {
	appsListCmd.Flags().StringVarP(&appSearch, "search", "s", "", "Only show companies containing this text")
	appsListCmd.Flags().StringVar(&appCollapse, "collapse", "", "Comma separated statuses to show collapsed")

	for _, c := range []*cobra.Command{appsAddCmd, appsUpdateCmd} {
		f := c.Flags()
		f.StringVar(&appTitle, "title", "", "Job title")
		f.StringVar(&appCompany, "company", "", "Company name")
		f.StringVar(&appLocation, "location", "", "Location")
		f.StringVar(&appDate, "date", "", "Date applied, e.g. 2026-03-01")
		f.StringVar(&appStatus, "status", "", "Status code or label: wish list, waiting for referral, applied, rejected")
		f.StringVar(&appLink, "link", "", "Job posting URL")
	}
	appsAddCmd.Flags().BoolVar(&appFill, "fill", false, "Fill empty title, company, and location from the job posting at --link")

	appsCmd.AddCommand(appsListCmd, appsAddCmd, appsUpdateCmd, appsDeleteCmd, appsPreviewCmd)
	rootCmd.AddCommand(appsCmd)
}

// tracker restores the session and, when load is set, loads the board.
func (a *app) tracker(ctx context.Context, load bool) (*tracker.Tracker, error) {
	if _, err := a.open(ctx, shell.PageApplications); err != nil {
		return nil, err
	}
	opts := fetch.DefaultOptions()
	if a.cfg.Timeout > 0 {
		opts.Timeout = a.cfg.Timeout
	}
	t := tracker.New(a.api, fetch.NewPreviewer(opts), a.logger.Named("tracker"))
	if load {
		if err := t.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid application id %q", s)
	}
	return id, nil
}

// applyAppFlags copies the application flags the user set onto app.
func applyAppFlags(cmd *cobra.Command, app *types.Application) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		app.JobTitle = appTitle
	}
	if changed("company") {
		app.CompanyName = appCompany
	}
	if changed("location") {
		app.Location = appLocation
	}
	if changed("date") {
		app.Date = appDate
	}
	if changed("link") {
		app.JobLink = appLink
	}
	if changed("status") {
		st, err := types.ParseStatus(appStatus)
		if err != nil {
			return err
		}
		app.Status = st
	}
	return nil
}

func runAppsList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		t, err := a.tracker(ctx, true)
		if err != nil {
			return err
		}
		board := t.Board()
		board.SetQuery(appSearch)
		if appCollapse != "" {
			for _, part := range strings.Split(appCollapse, ",") {
				st, err := types.ParseStatus(part)
				if err != nil {
					return err
				}
				board.SetOpen(st, false)
			}
		}
		a.printer.PrintBoard(board.Sections())
		return nil
	})
}

func runAppsAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		t, err := a.tracker(ctx, true)
		if err != nil {
			return err
		}
		var app types.Application
		if err := applyAppFlags(cmd, &app); err != nil {
			return err
		}
		if appFill {
			if app.JobLink == "" {
				return fmt.Errorf("--fill needs --link")
			}
			preview, err := t.Preview(ctx, app.JobLink)
			if err != nil {
				return err
			}
			app = tracker.FillFromPreview(app, preview)
		}

		created, err := t.Create(ctx, app)
		if err != nil {
			return err
		}
		a.printer.PrintApplication(*created)
		return nil
	})
}

func runAppsUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		t, err := a.tracker(ctx, true)
		if err != nil {
			return err
		}
		app, ok := t.Board().Find(id)
		if !ok {
			return fmt.Errorf("application %d not found", id)
		}
		if err := applyAppFlags(cmd, &app); err != nil {
			return err
		}
		if err := t.Update(ctx, app); err != nil {
			return err
		}
		a.printer.PrintApplication(app)
		return nil
	})
}

func runAppsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		t, err := a.tracker(ctx, true)
		if err != nil {
			return err
		}
		if err := t.Delete(ctx, id); err != nil {
			return err
		}
		a.printer.PrintBoard(t.Board().Sections())
		return nil
	})
}

func runAppsPreview(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		t, err := a.tracker(ctx, false)
		if err != nil {
			return err
		}
		preview, err := t.Preview(ctx, args[0])
		if err != nil {
			return err
		}
		a.printer.PrintPreview(preview)
		return nil
	})
}
