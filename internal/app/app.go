// Package app initializes and wires together the components of the
// reviewer: configuration, logging, and the pipeline stages.
package app

import (
	"fmt"
	"log/slog"

	"github.com/xoho/code-reviewer/internal/collector"
	"github.com/xoho/code-reviewer/internal/config"
	"github.com/xoho/code-reviewer/internal/gitutil"
	"github.com/xoho/code-reviewer/internal/logger"
	"github.com/xoho/code-reviewer/internal/ollama"
	"github.com/xoho/code-reviewer/internal/prompt"
	"github.com/xoho/code-reviewer/internal/review"
)

// App holds the main application components.
type App struct {
	Cfg    *config.Config
	Logger *slog.Logger
	Runner *review.Runner
	Ollama *ollama.Client
}

// Option overrides parts of the configuration after loading, typically from
// command-line flags.
type Option func(*config.Config)

// WithModel overrides the configured model when name is non-empty.
func WithModel(name string) Option {
	return func(c *config.Config) {
		if name != "" {
			c.Model = name
		}
	}
}

// WithStaged switches the run to review the index instead of the worktree.
func WithStaged(staged bool) Option {
	return func(c *config.Config) {
		if staged {
			c.Staged = true
		}
	}
}

// WithLogLevel overrides the configured log level when level is non-empty.
func WithLogLevel(level string) Option {
	return func(c *config.Config) {
		if level != "" {
			c.Logging.Level = level
		}
	}
}

// NewApp loads configuration from cfgPath (empty means ./config.toml) and
// sets up the pipeline with all its dependencies.
func NewApp(cfgPath string, opts ...Option) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	log := logger.NewLogger(cfg.Logging, nil)
	log.Debug("initializing reviewer",
		"ollama_url", cfg.OllamaURL,
		"model", cfg.Model,
		"context_max_bytes", cfg.ContextMaxBytes,
	)

	builder, err := prompt.NewBuilder(cfg.ContextMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	gitClient := gitutil.NewClient(log)
	coll := collector.New(log, cfg.ContextMaxBytes)
	ollamaClient := ollama.NewClient(cfg.OllamaURL, cfg.RetryAttempts, cfg.RetryBackoff, log)
	runner := review.NewRunner(cfg, log, gitClient, coll, builder, ollamaClient)

	return &App{
		Cfg:    cfg,
		Logger: log,
		Runner: runner,
		Ollama: ollamaClient,
	}, nil
}
