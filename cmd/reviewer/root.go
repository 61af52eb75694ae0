package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "reviewer",
	Short: "reviewer sends your pending git changes to a local model for code review.",
	Long: `A command-line code review assistant.

reviewer gathers the repository's pending changes, collects the surrounding
source files for context, and asks a locally hosted Ollama-compatible model
for a review. Configuration lives in config.toml next to the binary or in
the path given with --config.`,
	SilenceUsage: true,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the config file (default ./config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}
