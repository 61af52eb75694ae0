package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xoho/code-reviewer/internal/core"
)

func TestRanker(t *testing.T) {
	cs := &core.ChangeSet{Files: []core.FileDiff{
		{Path: "src/lib.go"},
		{Path: "docs/guide.md"},
	}}
	r := newRanker(cs)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"changed file", "src/lib.go", core.RankChanged},
		{"other changed file", "docs/guide.md", core.RankChanged},
		{"same directory neighbor", "src/util.go", core.RankNeighbor},
		{"neighbor of second change", "docs/index.md", core.RankNeighbor},
		{"subdirectory is not a neighbor", "src/sub/deep.go", core.RankRest},
		{"unrelated file", "cmd/main.go", core.RankRest},
		{"root file", "README.md", core.RankRest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Rank(tt.path))
		})
	}
}

func TestCandidateLess(t *testing.T) {
	a := candidate{rank: core.RankChanged, index: 5}
	b := candidate{rank: core.RankRest, index: 0}
	c := candidate{rank: core.RankRest, index: 3}

	assert.True(t, candidateLess(a, b), "lower rank wins regardless of traversal order")
	assert.True(t, candidateLess(b, c), "traversal order breaks rank ties")
	assert.False(t, candidateLess(c, b))
}
