package ratelimit

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Admission bounds how many outbound calls may be in flight at once across every caller sharing it.
type Admission struct {
	sem  *semaphore.Weighted
	size int64
}

// NewAdmission creates a limiter admitting at most size concurrent calls.
func NewAdmission(size int) *Admission {
	if size <= 0 {
		size = 1
	}
	return &Admission{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

// Acquire blocks until a slot is free or ctx is done.
func (a *Admission) Acquire(ctx context.Context) error {
	return a.sem.Acquire(ctx, 1)
}

// Release frees a slot taken by Acquire.
func (a *Admission) Release() {
	a.sem.Release(1)
}

// Size returns the configured number of slots.
func (a *Admission) Size() int {
	return int(a.size)
}

// PerMinute returns a limiter allowing n requests per minute with a burst of one.
// A non-positive n disables limiting.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}
