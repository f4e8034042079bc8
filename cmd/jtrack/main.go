// Package main provides the jtrack command line client for the J-Tracker backend.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "jtrack",
	Short:         "J-Tracker job application tracker client",
	Long:          "jtrack tracks job applications against the J-Tracker backend: profile and onboarding, the application board, career insights with resume comparison, resume storage, and shared job recommendations.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath  string
	apiURL      string
	storageKind string
	storagePath string
	logLevel    string
	metricsFile string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default: ./jtrack.yaml or ~/.jtrack/jtrack.yaml)")
	flags.StringVar(&apiURL, "api-url", "", "Backend base URL")
	flags.StringVar(&storageKind, "storage", "", "Session storage: file, redis, or memory")
	flags.StringVar(&storagePath, "storage-path", "", "Session file for file storage")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, or error")
	flags.StringVar(&metricsFile, "metrics-file", "", "Write backend call metrics to this file in Prometheus text format")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
