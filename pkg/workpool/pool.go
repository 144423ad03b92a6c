// Package workpool bounds how many blocking external calls (NLU, store) run
// at once across all sessions, each under its own timeout.
package workpool

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

type Pool struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

// New returns a pool admitting size concurrent calls. A zero timeout means
// the caller's deadline alone applies.
func New(size int, timeout time.Duration) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), timeout: timeout}
}

// Run waits for a slot, then calls fn with a context bounded by the pool timeout.
func Run[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}
	defer p.sem.Release(1)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return fn(ctx)
}
