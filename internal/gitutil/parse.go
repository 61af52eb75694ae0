package gitutil

import (
	"strings"

	"github.com/xoho/code-reviewer/internal/core"
)

// ParseUnifiedDiff splits raw `git diff` output into per-file diffs with
// their hunks, preserving git's emission order. Lines that do not belong to
// a recognized file section are ignored.
func ParseUnifiedDiff(raw string) []core.FileDiff {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var (
		files   []core.FileDiff
		current *core.FileDiff
		hunk    *core.Hunk
		body    strings.Builder
	)

	flushHunk := func() {
		if hunk == nil || current == nil {
			return
		}
		hunk.Body = strings.TrimSuffix(body.String(), "\n")
		current.Hunks = append(current.Hunks, *hunk)
		hunk = nil
		body.Reset()
	}
	flushFile := func() {
		flushHunk()
		if current != nil {
			files = append(files, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flushFile()
			current = &core.FileDiff{Path: pathFromHeader(line)}

		case strings.HasPrefix(line, "+++ "):
			// Prefer the post-image path; it survives renames. Deletions
			// keep the path already taken from the header.
			if current != nil {
				if p := stripPathPrefix(line[4:]); p != "" {
					current.Path = p
				}
			}

		case strings.HasPrefix(line, "@@"):
			if current == nil {
				continue
			}
			flushHunk()
			hunk = &core.Hunk{Header: line}

		default:
			if hunk != nil {
				body.WriteString(line)
				body.WriteByte('\n')
			}
		}
	}
	flushFile()

	return files
}

// pathFromHeader extracts the b-side path from a "diff --git a/x b/x" line.
func pathFromHeader(line string) string {
	rest := strings.TrimPrefix(line, "diff --git ")
	idx := strings.Index(rest, " b/")
	if idx == -1 {
		return ""
	}
	return rest[idx+len(" b/"):]
}

// stripPathPrefix normalizes a ---/+++ path, dropping the a/ or b/ prefix
// and any surrounding quotes. /dev/null means the side does not exist.
func stripPathPrefix(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, `"`)
	if p == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}
