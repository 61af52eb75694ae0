package ollama

import (
	"context"
	"time"
)

// backoff is the explicit retry state: how many attempts were made and how
// long the next pause lasts. Keeping it as plain state, rather than
// recursion, lets cancellation interrupt the policy at any attempt boundary.
type backoff struct {
	attempt int
	max     int
	delay   time.Duration
}

func newBackoff(max int, initial time.Duration) *backoff {
	return &backoff{max: max, delay: initial}
}

// exhausted reports whether the retry budget is spent.
func (b *backoff) exhausted() bool {
	return b.attempt >= b.max
}

// wait sleeps for the current delay, then advances the state: attempt count
// up, delay doubled. Returns early with the context's error on cancellation.
func (b *backoff) wait(ctx context.Context) error {
	timer := time.NewTimer(b.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	b.attempt++
	b.delay *= 2
	return nil
}
