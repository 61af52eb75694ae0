package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, DefaultOllamaURL, cfg.OllamaURL)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.False(t, cfg.Staged)
	assert.Equal(t, DefaultContextMaxBytes, cfg.ContextMaxBytes)
	assert.Equal(t, DefaultRetryAttempts, cfg.RetryAttempts)
	assert.Equal(t, DefaultRetryBackoff, cfg.RetryBackoff)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
ollama_url = "http://gpu-box:11434"
model = "qwen2.5-coder:7b"
staged = true
timeout = "2m"

[context]
max_bytes = 65536

[retry]
attempts = 5
backoff = "500ms"

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", cfg.OllamaURL)
	assert.Equal(t, "qwen2.5-coder:7b", cfg.Model)
	assert.True(t, cfg.Staged)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, 65536, cfg.ContextMaxBytes)
	assert.Equal(t, 5, cfg.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			OllamaURL:       DefaultOllamaURL,
			Model:           DefaultModel,
			ContextMaxBytes: 1024,
			RetryAttempts:   1,
			RetryBackoff:    time.Second,
			Timeout:         time.Minute,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty url", func(c *Config) { c.OllamaURL = "" }, true},
		{"empty model", func(c *Config) { c.Model = "" }, true},
		{"zero budget", func(c *Config) { c.ContextMaxBytes = 0 }, true},
		{"negative attempts", func(c *Config) { c.RetryAttempts = -1 }, true},
		{"zero attempts ok", func(c *Config) { c.RetryAttempts = 0 }, false},
		{"negative backoff", func(c *Config) { c.RetryBackoff = -time.Second }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadRepoConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadRepoConfig(t.TempDir())
		assert.ErrorIs(t, err, ErrRepoConfigNotFound)
		require.NotNil(t, cfg)
		assert.Empty(t, cfg.ExtraInstructions)
	})

	t.Run("valid overlay", func(t *testing.T) {
		root := t.TempDir()
		content := "extra_instructions: Mind the error handling.\nignore_patterns:\n  - testdata/\n  - '*.gen.go'\n"
		require.NoError(t, os.WriteFile(filepath.Join(root, ".reviewer.yml"), []byte(content), 0o644))

		cfg, err := LoadRepoConfig(root)
		require.NoError(t, err)
		assert.Equal(t, "Mind the error handling.", cfg.ExtraInstructions)
		assert.Equal(t, []string{"testdata/", "*.gen.go"}, cfg.IgnorePatterns)
	})

	t.Run("broken yaml", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, ".reviewer.yml"), []byte("\t:bad"), 0o644))

		_, err := LoadRepoConfig(root)
		assert.ErrorIs(t, err, ErrRepoConfigParsing)
	})
}
