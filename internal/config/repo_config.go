package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	ErrRepoConfigNotFound = errors.New("repo config file not found")
	ErrRepoConfigParsing  = errors.New("repo config parsing failed")
)

// RepoConfig is the optional per-repository overlay read from .reviewer.yml
// at the repository root. It cannot change the endpoint, only shape the
// review itself.
type RepoConfig struct {
	// ExtraInstructions is appended verbatim to the review instructions.
	ExtraInstructions string `yaml:"extra_instructions"`
	// IgnorePatterns are additional gitignore-style patterns applied on top
	// of the repository's own ignore files.
	IgnorePatterns []string `yaml:"ignore_patterns"`
}

// DefaultRepoConfig returns the overlay used when a repository has no
// .reviewer.yml.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{}
}

// LoadRepoConfig loads and parses the .reviewer.yml file from a repository
// path. A missing file yields the defaults together with
// ErrRepoConfigNotFound so callers can tell the two cases apart.
func LoadRepoConfig(repoPath string) (*RepoConfig, error) {
	configPath := filepath.Join(repoPath, ".reviewer.yml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRepoConfig(), ErrRepoConfigNotFound
		}
		return nil, fmt.Errorf("failed to read .reviewer.yml: %w", err)
	}

	cfg := DefaultRepoConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepoConfigParsing, err)
	}
	return cfg, nil
}
