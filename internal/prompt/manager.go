// Package prompt assembles the textual payload sent to the inference
// endpoint. Assembly is a pure function of its inputs: the same change set,
// context entries and configuration always produce a byte-identical prompt.
package prompt

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

type ModelProvider string
type PromptKey string

const (
	DefaultProvider ModelProvider = "default"
	ReviewPrompt    PromptKey     = "review"
)

// manager holds the parsed prompt templates, keyed by prompt kind and model
// provider. Filenames follow the `key_provider.prompt` convention.
type manager struct {
	prompts map[PromptKey]map[ModelProvider]*template.Template
}

func newManager() (*manager, error) {
	m := &manager{
		prompts: make(map[PromptKey]map[ModelProvider]*template.Template),
	}

	files, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompts directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		fileName := file.Name()
		baseName := strings.TrimSuffix(fileName, filepath.Ext(fileName))
		lastUnderscore := strings.LastIndex(baseName, "_")
		if lastUnderscore <= 0 || lastUnderscore == len(baseName)-1 {
			return nil, fmt.Errorf("invalid prompt filename format: %s (expected 'key_provider.prompt')", fileName)
		}

		key := PromptKey(baseName[:lastUnderscore])
		provider := ModelProvider(baseName[lastUnderscore+1:])

		content, err := promptFiles.ReadFile("prompts/" + fileName)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded prompt file %s: %w", fileName, err)
		}
		if err := m.register(key, provider, string(content)); err != nil {
			return nil, fmt.Errorf("failed to register prompt from file %s: %w", fileName, err)
		}
	}

	return m, nil
}

func (m *manager) register(key PromptKey, provider ModelProvider, content string) error {
	tmpl, err := template.New(string(key) + "_" + string(provider)).Parse(content)
	if err != nil {
		return fmt.Errorf("could not parse template: %w", err)
	}

	if _, ok := m.prompts[key]; !ok {
		m.prompts[key] = make(map[ModelProvider]*template.Template)
	}
	m.prompts[key][provider] = tmpl
	return nil
}

// get returns the template for a key and provider, falling back to the
// default provider when no model-specific template exists.
func (m *manager) get(key PromptKey, provider ModelProvider) (*template.Template, error) {
	taskPrompts, ok := m.prompts[key]
	if !ok {
		return nil, fmt.Errorf("no prompts found for key '%s'", key)
	}
	if tmpl, ok := taskPrompts[provider]; ok {
		return tmpl, nil
	}
	if tmpl, ok := taskPrompts[DefaultProvider]; ok {
		return tmpl, nil
	}
	return nil, fmt.Errorf("no prompt found for key '%s' and provider '%s'", key, provider)
}
