package collector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xoho/code-reviewer/internal/core"
)

// writeTree creates files under root from a path->content map.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func changeSet(paths ...string) *core.ChangeSet {
	cs := &core.ChangeSet{}
	for _, p := range paths {
		cs.Files = append(cs.Files, core.FileDiff{Path: p})
	}
	return cs
}

func entryPaths(entries []core.ContextEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func TestCollect_OrderAndRanks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"aaa.txt":      "root file",
		"src/lib.go":   "package src",
		"src/util.go":  "package src // util",
		"zzz/other.go": "package zzz",
	})

	c := New(nil, 1024*1024)
	entries, warnings, err := c.Collect(context.Background(), root, changeSet("src/lib.go"), nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Changed file first, then its neighbor, then the rest in lexical
	// traversal order.
	assert.Equal(t, []string{"src/lib.go", "src/util.go", "aaa.txt", "zzz/other.go"}, entryPaths(entries))
	assert.Equal(t, core.RankChanged, entries[0].Rank)
	assert.Equal(t, core.RankNeighbor, entries[1].Rank)
	assert.Equal(t, core.RankRest, entries[2].Rank)
	for _, e := range entries {
		assert.True(t, e.Readable)
		assert.NotEmpty(t, e.Content)
	}
}

func TestCollect_IgnoreRules(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":        "vendor/\n*.tmp\n",
		"src/.gitignore":    "gen_*.go\n",
		"src/lib.go":        "package src",
		"src/gen_stub.go":   "generated",
		"vendor/dep.go":     "vendored",
		"scratch.tmp":       "temp",
		"docs/notes.md":     "notes",
		".git/objects/blob": "never walked",
	})

	c := New(nil, 1024*1024)
	entries, _, err := c.Collect(context.Background(), root, changeSet("src/lib.go"), nil)
	require.NoError(t, err)

	paths := entryPaths(entries)
	assert.Contains(t, paths, "src/lib.go")
	assert.Contains(t, paths, "docs/notes.md")
	assert.NotContains(t, paths, "vendor/dep.go", "directory rule from root .gitignore")
	assert.NotContains(t, paths, "scratch.tmp", "glob rule from root .gitignore")
	assert.NotContains(t, paths, "src/gen_stub.go", "nested .gitignore applies to its subtree")
	assert.NotContains(t, paths, ".git/objects/blob")
	// The ignore files themselves are regular files and stay eligible.
	assert.Contains(t, paths, ".gitignore")
}

func TestCollect_ExtraIgnorePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/lib.go":    "package src",
		"testdata/x.go": "fixture",
	})

	c := New(nil, 1024*1024)
	entries, _, err := c.Collect(context.Background(), root, changeSet("src/lib.go"), []string{"testdata/"})
	require.NoError(t, err)
	assert.NotContains(t, entryPaths(entries), "testdata/x.go")
}

func TestCollect_UnreadableFileIsWarningNotError(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/lib.go": "package src",
	})
	// A dangling symlink fails on read regardless of the uid running the
	// tests.
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "src", "util.go")))

	c := New(nil, 1024*1024)
	entries, warnings, err := c.Collect(context.Background(), root, changeSet("src/lib.go"), nil)
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.True(t, strings.HasPrefix(warnings[0], "src/util.go: "), "warning names the path: %q", warnings[0])

	require.Len(t, entries, 2)
	assert.Equal(t, "src/lib.go", entries[0].Path)
	assert.True(t, entries[0].Readable)
	assert.Equal(t, "src/util.go", entries[1].Path)
	assert.False(t, entries[1].Readable)
	assert.Empty(t, entries[1].Content)
}

func TestCollect_BudgetDropsLowestPriorityFirst(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/lib.go":  strings.Repeat("a", 100),
		"src/util.go": strings.Repeat("b", 100),
		"big/blob.go": strings.Repeat("c", 500),
		"cmd/main.go": strings.Repeat("d", 100),
	})

	// Budget fits the changed file, its neighbor, and one more small file.
	c := New(nil, 300)
	entries, warnings, err := c.Collect(context.Background(), root, changeSet("src/lib.go"), nil)
	require.NoError(t, err)

	paths := entryPaths(entries)
	assert.Equal(t, []string{"src/lib.go", "src/util.go", "cmd/main.go"}, paths)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "truncated")
	assert.Contains(t, warnings[0], "1 lower-priority files dropped")
}

func TestCollect_ChangedFilesNeverDropped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"huge.go":  strings.Repeat("x", 10_000),
		"other.go": "tiny",
	})

	c := New(nil, 10) // budget far below the changed file's size
	entries, _, err := c.Collect(context.Background(), root, changeSet("huge.go"), nil)
	require.NoError(t, err)
	assert.Contains(t, entryPaths(entries), "huge.go")
}

func TestCollect_EmptyTreeWarnsButContinues(t *testing.T) {
	root := t.TempDir()

	c := New(nil, 1024)
	entries, warnings, err := c.Collect(context.Background(), root, changeSet("gone.go"), nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, warnings, "no context available")
}

func TestCollect_BinaryFilesSkipped(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/lib.go": "package src"})
	require.NoError(t, os.WriteFile(filepath.Join(root, "img.bin"), []byte{0x89, 0x00, 0x50, 0x4e}, 0o644))

	c := New(nil, 1024)
	entries, warnings, err := c.Collect(context.Background(), root, changeSet("src/lib.go"), nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"src/lib.go"}, entryPaths(entries))
}

func TestCollect_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go": "a", "b.go": "b", "c/d.go": "d", "c/e.go": "e", "f.go": "f",
	})

	c := New(nil, 1024)
	first, _, err := c.Collect(context.Background(), root, changeSet("c/d.go"), nil)
	require.NoError(t, err)
	for range 5 {
		again, _, err := c.Collect(context.Background(), root, changeSet("c/d.go"), nil)
		require.NoError(t, err)
		assert.Equal(t, first, again, "parallel reads must not leak scheduling order")
	}
}
