// Package review sequences the pipeline stages of one review run: diff
// extraction, context collection, prompt assembly, and the inference call.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xoho/code-reviewer/internal/config"
	"github.com/xoho/code-reviewer/internal/core"
	"github.com/xoho/code-reviewer/internal/prompt"
)

// NothingToReview is the report text of a run whose change set was empty.
const NothingToReview = "Nothing to review."

// DiffExtractor produces the pending change set of a repository.
type DiffExtractor interface {
	Diff(ctx context.Context, root string, staged bool) (*core.ChangeSet, error)
}

// ContextCollector gathers repository files as review background.
type ContextCollector interface {
	Collect(ctx context.Context, root string, cs *core.ChangeSet, extraIgnore []string) ([]core.ContextEntry, []string, error)
}

// PromptBuilder renders a review request into prompt text.
type PromptBuilder interface {
	Build(req *core.ReviewRequest) (string, []string, error)
}

// Generator submits a prompt to the inference endpoint.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (*core.Completion, error)
}

// Runner drives one review run through its states. Stages execute strictly
// in sequence; each stage owns its output until it hands it to the next.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	differ    DiffExtractor
	collector ContextCollector
	builder   PromptBuilder
	generator Generator
}

// NewRunner assembles a Runner from its stage implementations.
func NewRunner(cfg *config.Config, logger *slog.Logger, differ DiffExtractor, collector ContextCollector, builder PromptBuilder, generator Generator) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:       cfg,
		logger:    logger,
		differ:    differ,
		collector: collector,
		builder:   builder,
		generator: generator,
	}
}

// Run executes the pipeline for the repository at root and returns the
// final Report. Fatal errors abort the run but the partially filled report,
// including every warning gathered so far, is still returned alongside the
// error so the caller can surface both.
func (r *Runner) Run(ctx context.Context, root string) (*core.Report, error) {
	start := time.Now()
	report := &core.Report{
		RunID: uuid.NewString(),
		Model: r.cfg.Model,
		State: core.StateInit,
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	fail := func(err error) (*core.Report, error) {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s (state %s)", core.ErrRunTimeout, r.cfg.Timeout, report.State)
		}
		report.State = core.StateFailed
		report.Duration = time.Since(start)
		return report, err
	}

	r.logger.InfoContext(ctx, "starting review run",
		"run_id", report.RunID, "root", root, "model", r.cfg.Model, "staged", r.cfg.Staged)

	cs, err := r.differ.Diff(ctx, root, r.cfg.Staged)
	if err != nil {
		return fail(err)
	}
	report.State = core.StateDiffExtracted

	// Nothing pending: short-circuit straight to Done. No context is
	// collected and no inference call is made.
	if cs.Empty() {
		r.logger.InfoContext(ctx, "no pending changes, skipping review", "run_id", report.RunID)
		report.Review = NothingToReview
		report.State = core.StateDone
		report.Duration = time.Since(start)
		return report, nil
	}

	repoCfg, err := config.LoadRepoConfig(root)
	if err != nil && !errors.Is(err, config.ErrRepoConfigNotFound) {
		report.Warnings = append(report.Warnings, fmt.Sprintf(".reviewer.yml ignored: %v", err))
		repoCfg = config.DefaultRepoConfig()
	}

	entries, warnings, err := r.collector.Collect(ctx, root, cs, repoCfg.IgnorePatterns)
	report.Warnings = append(report.Warnings, warnings...)
	if err != nil {
		return fail(err)
	}
	report.State = core.StateContextCollected

	req := &core.ReviewRequest{
		Instructions: instructionsFor(repoCfg),
		ChangeSet:    cs,
		Context:      entries,
		Model:        r.cfg.Model,
	}
	promptText, warnings, err := r.builder.Build(req)
	report.Warnings = append(report.Warnings, warnings...)
	if err != nil {
		return fail(err)
	}
	report.State = core.StatePromptBuilt

	r.logger.DebugContext(ctx, "requesting review",
		"run_id", report.RunID, "prompt_bytes", len(promptText), "context_files", len(entries))
	report.State = core.StateReviewRequested

	completion, err := r.generator.Generate(ctx, r.cfg.Model, promptText)
	if err != nil {
		return fail(err)
	}

	report.Review = completion.Text
	report.State = core.StateDone
	report.Duration = time.Since(start)

	r.logger.InfoContext(ctx, "review run finished",
		"run_id", report.RunID, "duration", report.Duration, "warnings", len(report.Warnings))
	return report, nil
}

// instructionsFor combines the built-in instructions with the repository's
// optional extra instructions.
func instructionsFor(repoCfg *config.RepoConfig) string {
	if repoCfg == nil || repoCfg.ExtraInstructions == "" {
		return prompt.DefaultInstructions
	}
	return prompt.DefaultInstructions + "\n\n" + repoCfg.ExtraInstructions
}
