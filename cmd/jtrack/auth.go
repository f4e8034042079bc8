package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jtrack/internal/shell"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE:  runLogout,
}

var oauthCaptureCmd = &cobra.Command{
	Use:   "oauth-capture <redirect-url>",
	Short: "Store the session carried by an OAuth redirect URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runOAuthCapture,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the stored session lands",
	RunE:  runStatus,
}

var (
	username string
	password string
	fullName string
)

func init() {
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")

	signupCmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	signupCmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	signupCmd.Flags().StringVarP(&fullName, "full-name", "n", "", "Full name (required)")
	signupCmd.MarkFlagRequired("username")
	signupCmd.MarkFlagRequired("password")
	signupCmd.MarkFlagRequired("full-name")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, oauthCaptureCmd, statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		state, err := a.shell.Login(ctx, username, password)
		if err != nil {
			return err
		}
		a.printer.PrintState(state)
		return nil
	})
}

func runSignup(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		state, err := a.shell.Signup(ctx, fullName, username, password)
		if err != nil {
			return err
		}
		a.printer.PrintState(state)
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if _, err := a.shell.Logout(ctx); err != nil {
			return err
		}
		a.printer.PrintMessage("Logged out.")
		return nil
	})
}

func runOAuthCapture(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		cleaned, captured, err := a.shell.CaptureOAuth(ctx, args[0])
		if err != nil {
			return err
		}
		if !captured {
			a.printer.PrintMessage("No session captured.")
			return nil
		}
		a.printer.PrintMessage(fmt.Sprintf("Session captured. Continue at %s", cleaned))
		return nil
	})
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		state, err := a.shell.Bootstrap(ctx)
		if err != nil {
			return err
		}
		a.printer.PrintState(state)
		if state.Page == shell.PageOnboarding {
			a.printer.PrintMessage("Profile is incomplete, run 'jtrack onboard'.")
		}
		return nil
	})
}
