package fetch

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer waits between requests.
type Pacer interface {
	// Pause blocks for a random duration in [minWait, maxWait] or until ctx
	// is done, in which case it returns the context's error.
	Pause(ctx context.Context, minWait, maxWait time.Duration) error
}

// RandomPacer sleeps for real. The zero value is ready to use.
type RandomPacer struct{}

// NewPacer returns the pacer used by real crawls.
func NewPacer() *RandomPacer {
	return &RandomPacer{}
}

// Pause implements Pacer.
func (RandomPacer) Pause(ctx context.Context, minWait, maxWait time.Duration) error {
	d := RandomDuration(minWait, maxWait)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RandomDuration returns a uniformly random duration in the closed range
// [minWait, maxWait]. When maxWait is not above minWait it returns minWait.
func RandomDuration(minWait, maxWait time.Duration) time.Duration {
	if maxWait <= minWait {
		return minWait
	}
	return minWait + time.Duration(rand.Int64N(int64(maxWait-minWait)+1)) //nolint:gosec // pacing jitter, not security sensitive
}
