package core

// RunState tracks how far a review run progressed. Transitions are strictly
// sequential; Failed is reachable from any state on a fatal error.
type RunState string

const (
	StateInit             RunState = "init"
	StateDiffExtracted    RunState = "diff_extracted"
	StateContextCollected RunState = "context_collected"
	StatePromptBuilt      RunState = "prompt_built"
	StateReviewRequested  RunState = "review_requested"
	StateDone             RunState = "done"
	StateFailed           RunState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s RunState) Terminal() bool {
	return s == StateDone || s == StateFailed
}
