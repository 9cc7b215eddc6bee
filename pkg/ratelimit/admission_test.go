package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmissionBoundsConcurrency(t *testing.T) {
	a := NewAdmission(2)
	var inFlight, peak int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !assert.NoError(t, a.Acquire(context.Background())) {
				return
			}
			defer a.Release()

			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, int32(2))
	assert.Equal(t, 2, a.Size())
}

func TestAdmissionAcquireHonoursContext(t *testing.T) {
	a := NewAdmission(1)
	require.NoError(t, a.Acquire(context.Background()))
	defer a.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, a.Acquire(ctx), context.DeadlineExceeded)
}

func TestPerMinuteZeroIsUnlimited(t *testing.T) {
	l := PerMinute(0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow())
	}
}
