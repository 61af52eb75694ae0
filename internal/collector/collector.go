// Package collector traverses a repository and assembles the background
// context for a review: every relevant, non-ignored file under a size
// budget, with unreadable entries downgraded to warnings instead of errors.
package collector

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/xoho/code-reviewer/internal/core"
)

const defaultReadWorkers = 8

// candidate is a file discovered during traversal, before admission.
type candidate struct {
	rel   string
	abs   string
	size  int64
	rank  int
	index int
}

// Collector walks a repository tree and produces ordered ContextEntries.
type Collector struct {
	logger   *slog.Logger
	maxBytes int
	workers  int
}

// New returns a Collector that admits at most maxBytes of file content.
func New(logger *slog.Logger, maxBytes int) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		logger:   logger,
		maxBytes: maxBytes,
		workers:  defaultReadWorkers,
	}
}

// Collect gathers context entries for the given change set. Entries come
// back in admission order: changed files first, then their directory
// neighbors, then the rest of the tree, traversal order within each group.
// Read failures never abort the collection; each one becomes exactly one
// warning. The returned error is reserved for traversal being impossible
// outright.
func (c *Collector) Collect(ctx context.Context, root string, cs *core.ChangeSet, extraIgnore []string) ([]core.ContextEntry, []string, error) {
	var warnings []string

	matcher, err := NewIgnoreMatcher(root, extraIgnore)
	if err != nil {
		// Degrade to an unfiltered walk rather than refuse to review.
		warnings = append(warnings, fmt.Sprintf("ignore rules unavailable: %v", err))
		matcher = emptyIgnoreMatcher()
	}

	candidates, walkWarnings, err := c.discover(root, cs, matcher)
	if err != nil {
		return nil, warnings, err
	}
	warnings = append(warnings, walkWarnings...)

	admitted, dropped := c.admit(candidates)
	if dropped > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"context truncated to %d bytes: %d lower-priority files dropped", c.maxBytes, dropped))
	}

	entries, readWarnings, err := c.read(ctx, admitted)
	if err != nil {
		return nil, warnings, err
	}
	warnings = append(warnings, readWarnings...)

	if len(entries) == 0 {
		warnings = append(warnings, "no context available")
	}

	c.logger.DebugContext(ctx, "context collected",
		"candidates", len(candidates),
		"admitted", len(entries),
		"dropped", dropped,
	)
	return entries, warnings, nil
}

// discover walks the tree in deterministic lexical order, honoring ignore
// rules and skipping .git. Inaccessible directories are recorded as
// warnings and skipped.
func (c *Collector) discover(root string, cs *core.ChangeSet, matcher *IgnoreMatcher) ([]candidate, []string, error) {
	rank := newRanker(cs)

	var (
		candidates []candidate
		warnings   []string
	)
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			warnings = append(warnings, fmt.Sprintf("%s: %v", relOrSelf(root, p), err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel := relOrSelf(root, p)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" || matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Match(rel, false) {
			return nil
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		candidates = append(candidates, candidate{
			rel:   rel,
			abs:   p,
			size:  size,
			rank:  rank.Rank(rel),
			index: len(candidates),
		})
		return nil
	})
	if walkErr != nil {
		return nil, warnings, fmt.Errorf("failed to traverse %s: %w", root, walkErr)
	}
	return candidates, warnings, nil
}

// admit applies the size budget over candidates in priority order. Changed
// files are always admitted regardless of budget; everything else is
// admitted until the cumulative size would cross the limit.
func (c *Collector) admit(candidates []candidate) (admitted []candidate, dropped int) {
	ordered := make([]candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return candidateLess(ordered[i], ordered[j])
	})

	var used int64
	for _, cand := range ordered {
		if cand.rank == core.RankChanged {
			admitted = append(admitted, cand)
			used += cand.size
			continue
		}
		if used+cand.size > int64(c.maxBytes) {
			dropped++
			continue
		}
		admitted = append(admitted, cand)
		used += cand.size
	}
	return admitted, dropped
}

// read loads the admitted files concurrently and slots results back by
// admission index, so the observable order never depends on goroutine
// scheduling. Binary files are silently omitted; read failures become
// unreadable entries plus one warning each.
func (c *Collector) read(ctx context.Context, admitted []candidate) ([]core.ContextEntry, []string, error) {
	type slot struct {
		entry   core.ContextEntry
		skip    bool
		readErr error
	}
	slots := make([]slot, len(admitted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, cand := range admitted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(cand.abs)
			switch {
			case err != nil:
				slots[i] = slot{
					entry:   core.ContextEntry{Path: cand.rel, Readable: false, Rank: cand.rank},
					readErr: err,
				}
			case isBinary(data):
				slots[i] = slot{skip: true}
			default:
				slots[i] = slot{
					entry: core.ContextEntry{
						Path:     cand.rel,
						Content:  string(data),
						Readable: true,
						Rank:     cand.rank,
					},
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		entries  []core.ContextEntry
		warnings []string
	)
	for _, s := range slots {
		if s.skip {
			continue
		}
		if s.readErr != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", s.entry.Path, s.readErr))
		}
		entries = append(entries, s.entry)
	}
	return entries, warnings, nil
}

// isBinary sniffs for a NUL byte in the first 8 KiB, the same heuristic git
// uses to decide a file is not text.
func isBinary(data []byte) bool {
	const sniffLen = 8192
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return bytes.IndexByte(data, 0) != -1
}

// relOrSelf converts p to a slash-separated path relative to root, falling
// back to p itself when the conversion fails.
func relOrSelf(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}
