package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jtrack/internal/resume"
	"github.com/jonathan/jtrack/internal/shell"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Manage the stored resume",
}

var resumeUploadCmd = &cobra.Command{
	Use:   "upload <pdf-file>",
	Short: "Upload a resume",
	Args:  cobra.ExactArgs(1),
	RunE:  runResumeUpload,
}

var resumeDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the stored resume",
	RunE:  runResumeDownload,
}

var resumeViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the text of the stored resume",
	RunE:  runResumeView,
}

var resumeOutDir string

func init() {
	resumeDownloadCmd.Flags().StringVarP(&resumeOutDir, "out", "o", ".", "Output directory")
	resumeCmd.AddCommand(resumeUploadCmd, resumeDownloadCmd, resumeViewCmd)
	rootCmd.AddCommand(resumeCmd)
}

func runResumeUpload(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if _, err := a.open(ctx, shell.PageResume); err != nil {
			return err
		}
		if err := a.resume.Upload(ctx, args[0]); err != nil {
			return err
		}
		a.printer.PrintMessage("Resume uploaded.")
		return nil
	})
}

func runResumeDownload(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if _, err := a.open(ctx, shell.PageResume); err != nil {
			return err
		}
		path, err := a.resume.Save(ctx, resumeOutDir)
		if errors.Is(err, resume.ErrNoResume) {
			a.printer.PrintMessage("No resume uploaded yet.")
			return nil
		}
		if err != nil {
			return err
		}
		a.printer.PrintMessage(fmt.Sprintf("Resume saved to %s", path))
		return nil
	})
}

func runResumeView(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if _, err := a.open(ctx, shell.PageResume); err != nil {
			return err
		}
		text, err := a.resume.View(ctx)
		if errors.Is(err, resume.ErrNoResume) {
			a.printer.PrintMessage("No resume uploaded yet.")
			return nil
		}
		if err != nil {
			return err
		}
		a.printer.PrintResumeText("stored resume", text)
		return nil
	})
}
