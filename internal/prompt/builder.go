package prompt

import (
	"bytes"
	"fmt"

	"github.com/xoho/code-reviewer/internal/core"
)

// DefaultInstructions opens every review prompt unless a repository overlay
// replaces them.
const DefaultInstructions = "As a code reviewer, analyze the following changes:"

// Builder renders review requests into prompt text.
type Builder struct {
	mgr      *manager
	maxBytes int
}

// NewBuilder loads the embedded prompt templates. maxBytes is the same
// context budget the collector enforces; the builder re-checks it as a
// defensive second bound over the actual admitted content.
func NewBuilder(maxBytes int) (*Builder, error) {
	mgr, err := newManager()
	if err != nil {
		return nil, err
	}
	return &Builder{mgr: mgr, maxBytes: maxBytes}, nil
}

type entryData struct {
	Path    string
	Content string
}

type promptData struct {
	Instructions string
	Diff         string
	Entries      []entryData
}

// Build serializes a ReviewRequest into the final prompt. Section order is
// fixed: instructions, diff, then context entries in their admitted order,
// each labeled with its path. Unreadable entries carry no content and are
// left out of the body; their warnings travel with the report instead.
//
// If the context entries still exceed the budget, the lowest-priority
// entries are truncated from the end and a warning is returned. Entries for
// changed paths are never truncated.
func (b *Builder) Build(req *core.ReviewRequest) (string, []string, error) {
	tmpl, err := b.mgr.get(ReviewPrompt, providerFor(req.Model))
	if err != nil {
		return "", nil, err
	}

	entries, warnings := b.bound(req.Context)

	data := promptData{
		Instructions: req.Instructions,
		Diff:         req.ChangeSet.Raw,
		Entries:      entries,
	}
	if data.Instructions == "" {
		data.Instructions = DefaultInstructions
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", nil, fmt.Errorf("failed to render review prompt: %w", err)
	}
	return buf.String(), warnings, nil
}

// bound converts readable entries to template data while enforcing the byte
// budget a second time. The collector admits on stat sizes; this pass sees
// the real content.
func (b *Builder) bound(entries []core.ContextEntry) ([]entryData, []string) {
	var (
		out      []entryData
		total    int
		dropped  int
		warnings []string
	)
	for _, e := range entries {
		if !e.Readable {
			continue
		}
		if e.Rank != core.RankChanged && total+len(e.Content) > b.maxBytes {
			dropped++
			continue
		}
		total += len(e.Content)
		out = append(out, entryData{Path: e.Path, Content: e.Content})
	}
	if dropped > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"prompt context truncated to %d bytes: %d lower-priority files omitted", b.maxBytes, dropped))
	}
	return out, warnings
}

// providerFor maps a model name to a prompt provider family, so model
// families can ship their own template without touching the builder.
func providerFor(model string) ModelProvider {
	for i, r := range model {
		if r == ':' || r == '/' {
			return ModelProvider(model[:i])
		}
	}
	if model == "" {
		return DefaultProvider
	}
	return ModelProvider(model)
}
