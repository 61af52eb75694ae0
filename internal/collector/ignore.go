package collector

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreMatcher answers whether a repository-relative path is excluded by
// the repository's ignore rules. It reproduces git's own semantics: nested
// .gitignore files apply to their subtree and later rules win over earlier
// ones. Extra gitignore-style patterns may be layered on top.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher reads every .gitignore under root and compiles the
// patterns, appending any extra patterns last so they take precedence.
func NewIgnoreMatcher(root string, extra []string) (*IgnoreMatcher, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore rules under %s: %w", root, err)
	}
	for _, p := range extra {
		if strings.TrimSpace(p) == "" {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(patterns)}, nil
}

// emptyIgnoreMatcher matches nothing. Used when ignore rules could not be
// read at all.
func emptyIgnoreMatcher() *IgnoreMatcher {
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(nil)}
}

// Match reports whether the slash-separated relative path is ignored.
func (im *IgnoreMatcher) Match(rel string, isDir bool) bool {
	return im.matcher.Match(strings.Split(rel, "/"), isDir)
}
