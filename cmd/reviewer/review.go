package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xoho/code-reviewer/internal/app"
)

const timeRound = time.Millisecond

var (
	modelFlag string
	staged    bool
	plain     bool
)

var (
	titleColor = color.New(color.FgCyan, color.Bold)
	warnColor  = color.New(color.FgYellow)
	dimColor   = color.New(color.FgHiBlack)
)

var reviewCmd = &cobra.Command{
	Use:   "review [path]",
	Short: "Review the pending changes of a local git repository",
	Long: `Review the pending changes of a local git repository.

The review command extracts the uncommitted diff, gathers the surrounding
source files as context (honoring .gitignore), and asks the configured
model for a detailed review.

Examples:
  reviewer review
  reviewer review --staged ~/src/myproject
  reviewer review --model qwen2.5-coder:7b`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model to use (overrides config)")
	reviewCmd.Flags().BoolVar(&staged, "staged", false, "Review staged changes instead of the worktree")
	reviewCmd.Flags().BoolVar(&plain, "plain", false, "Print the review as plain text without rendering")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	a, err := app.NewApp(cfgFile,
		app.WithModel(modelFlag),
		app.WithStaged(staged),
		app.WithLogLevel(logLevel),
	)
	if err != nil {
		return err
	}

	titleColor.Fprintln(os.Stderr, "Reviewing pending changes...")
	dimColor.Fprintf(os.Stderr, "   Repository: %s\n", root)
	dimColor.Fprintf(os.Stderr, "   Model:      %s\n\n", a.Cfg.Model)

	report, err := a.Runner.Run(cmd.Context(), root)
	if report != nil {
		printWarnings(report.Warnings)
	}
	if err != nil {
		return err
	}

	printReview(report.Review)
	dimColor.Fprintf(os.Stderr, "\nModel %s answered in %s\n", report.Model, report.Duration.Round(timeRound))
	return nil
}

func printWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	warnColor.Fprintf(os.Stderr, "Warnings (%d):\n", len(warnings))
	for _, w := range warnings {
		warnColor.Fprintf(os.Stderr, "  - %s\n", w)
	}
	fmt.Fprintln(os.Stderr)
}

// printReview renders the review as markdown on a terminal and falls back
// to the raw text otherwise.
func printReview(text string) {
	if !plain {
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100)); err == nil {
			if out, err := r.Render(text); err == nil {
				fmt.Print(out)
				return
			}
		}
	}
	fmt.Println(text)
}
