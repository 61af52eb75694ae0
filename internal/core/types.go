// Package core defines the data structures and error taxonomy shared by the
// review pipeline stages. The types here are plain values: each stage produces
// its output once and hands exclusive ownership to the next stage.
package core

import "time"

// Hunk is a single change region within one file of a diff.
type Hunk struct {
	// Header is the "@@ -a,b +c,d @@" line, including any trailing context.
	Header string
	// Body holds the hunk's +/-/context lines, newline separated.
	Body string
}

// FileDiff groups the hunks touching a single path.
type FileDiff struct {
	Path  string
	Hunks []Hunk
}

// ChangeSet is the ordered set of pending modifications in a repository.
// Order is the order git emitted the diff in and is stable for a run.
type ChangeSet struct {
	// Raw is the full unified diff text as produced by git.
	Raw string
	// Files are the parsed per-file diffs, in Raw's order.
	Files []FileDiff
}

// Empty reports whether there is nothing to review.
func (cs *ChangeSet) Empty() bool {
	return cs == nil || len(cs.Files) == 0
}

// Paths returns the changed file paths in diff order.
func (cs *ChangeSet) Paths() []string {
	paths := make([]string, 0, len(cs.Files))
	for _, f := range cs.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Admission priorities for context entries. Lower ranks survive the size
// budget longer; changed files are never dropped at all.
const (
	RankChanged  = 0
	RankNeighbor = 1
	RankRest     = 2
)

// ContextEntry is one repository file considered as review background.
// Entries with Readable=false carry no content; the read failure is recorded
// as a warning by the collector instead.
type ContextEntry struct {
	// Path is slash-separated and relative to the repository root.
	Path     string
	Content  string
	Readable bool
	// Rank is the admission priority: 0 for changed paths, 1 for files in
	// the same directory as a changed path, 2 for the rest of the tree.
	Rank int
}

// ReviewRequest is the immutable payload assembled for one inference call.
type ReviewRequest struct {
	Instructions string
	ChangeSet    *ChangeSet
	Context      []ContextEntry
	Model        string
}

// Completion is the raw result of a single inference call.
type Completion struct {
	Text     string
	Duration time.Duration
}

// Report is the terminal artifact of a run: the review text plus everything
// the user needs to judge it, including every warning gathered along the way.
type Report struct {
	RunID    string
	Model    string
	Review   string
	State    RunState
	Duration time.Duration
	Warnings []string
}
