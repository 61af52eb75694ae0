package collector

import (
	"path"

	"github.com/xoho/code-reviewer/internal/core"
)

// ranker assigns admission priorities to repository paths relative to a
// change set. It exists as an explicit comparator so the budget policy can
// be tested independently of traversal.
type ranker struct {
	changed     map[string]struct{}
	changedDirs map[string]struct{}
}

func newRanker(cs *core.ChangeSet) *ranker {
	r := &ranker{
		changed:     make(map[string]struct{}),
		changedDirs: make(map[string]struct{}),
	}
	for _, p := range cs.Paths() {
		r.changed[p] = struct{}{}
		r.changedDirs[path.Dir(p)] = struct{}{}
	}
	return r
}

// Rank returns the admission priority of a slash-separated relative path.
func (r *ranker) Rank(rel string) int {
	if _, ok := r.changed[rel]; ok {
		return core.RankChanged
	}
	if _, ok := r.changedDirs[path.Dir(rel)]; ok {
		return core.RankNeighbor
	}
	return core.RankRest
}

// candidateLess orders candidates for admission: rank first, traversal
// order within the same rank.
func candidateLess(a, b candidate) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.index < b.index
}
