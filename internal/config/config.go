// Package config loads the reviewer's configuration from a TOML file,
// environment variables, and flag bindings, using Viper to handle precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xoho/code-reviewer/internal/logger"
)

// Defaults applied when neither the config file nor the environment sets a
// value. The endpoint and model defaults match a stock local Ollama install.
const (
	DefaultOllamaURL       = "http://localhost:11434"
	DefaultModel           = "codellama"
	DefaultContextMaxBytes = 256 * 1024
	DefaultRetryAttempts   = 3
	DefaultRetryBackoff    = time.Second
	DefaultTimeout         = 10 * time.Minute
)

// Config holds the application's configuration values.
type Config struct {
	OllamaURL       string
	Model           string
	Staged          bool
	ContextMaxBytes int
	RetryAttempts   int
	RetryBackoff    time.Duration
	Timeout         time.Duration
	Logging         logger.Config
}

// Load reads configuration from the given TOML file (or ./config.toml when
// path is empty), applies defaults, and validates the result. A missing
// config file is not an error; everything has a default.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REVIEWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	v.SetDefault("ollama_url", DefaultOllamaURL)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("staged", false)
	v.SetDefault("context.max_bytes", DefaultContextMaxBytes)
	v.SetDefault("retry.attempts", DefaultRetryAttempts)
	v.SetDefault("retry.backoff", DefaultRetryBackoff)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.output", "stderr")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		OllamaURL:       v.GetString("ollama_url"),
		Model:           v.GetString("model"),
		Staged:          v.GetBool("staged"),
		ContextMaxBytes: v.GetInt("context.max_bytes"),
		RetryAttempts:   v.GetInt("retry.attempts"),
		RetryBackoff:    v.GetDuration("retry.backoff"),
		Timeout:         v.GetDuration("timeout"),
		Logging: logger.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values for internal consistency.
func (c *Config) Validate() error {
	if c.OllamaURL == "" {
		return fmt.Errorf("ollama_url must not be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.ContextMaxBytes <= 0 {
		return fmt.Errorf("context.max_bytes must be positive, got %d", c.ContextMaxBytes)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry.attempts must not be negative, got %d", c.RetryAttempts)
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry.backoff must not be negative, got %s", c.RetryBackoff)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
