package core

import "errors"

// Fatal pipeline errors. Non-fatal conditions (unreadable files, truncation,
// empty context) are never errors; they travel as warnings on the Report.
var (
	// ErrNoRepository means the target root is not under git version control.
	ErrNoRepository = errors.New("not a git repository")

	// ErrDiffUnavailable means git itself could not be invoked, so there is
	// nothing to review.
	ErrDiffUnavailable = errors.New("cannot obtain diff from git")

	// ErrEndpointUnreachable means the inference endpoint did not answer
	// after all retries were spent.
	ErrEndpointUnreachable = errors.New("inference endpoint unreachable")

	// ErrModelNotFound means the endpoint rejected the configured model.
	// Never retried.
	ErrModelNotFound = errors.New("model not found on inference endpoint")

	// ErrMalformedResponse means the endpoint answered with a body that does
	// not parse as a completion. Never retried.
	ErrMalformedResponse = errors.New("malformed response from inference endpoint")

	// ErrRunTimeout means the overall run deadline fired and cancelled
	// whatever stage was in flight.
	ErrRunTimeout = errors.New("review run timed out")
)
