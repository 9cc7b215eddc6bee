package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingPolicy(slept *[]time.Duration) RetryPolicy {
	p := DefaultRetryPolicy()
	p.Sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return p
}

func TestRetryPolicyRetriesBusyWithLinearBackoff(t *testing.T) {
	var slept []time.Duration
	calls := 0

	err := recordingPolicy(&slept).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return sqlite3.Error{Code: sqlite3.ErrBusy}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, slept)
}

func TestRetryPolicySurfacesBusyAfterExhaustion(t *testing.T) {
	var slept []time.Duration
	calls := 0

	err := recordingPolicy(&slept).Do(context.Background(), func() error {
		calls++
		return sqlite3.Error{Code: sqlite3.ErrLocked}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond,
		1000 * time.Millisecond,
		1500 * time.Millisecond,
		2000 * time.Millisecond,
	}, slept)
}

func TestRetryPolicyReturnsFatalImmediately(t *testing.T) {
	var slept []time.Duration
	fatal := errors.New("no such table: signals")
	calls := 0

	err := recordingPolicy(&slept).Do(context.Background(), func() error {
		calls++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.NotErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestRetryPolicyStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := DefaultRetryPolicy()
	err := p.Do(ctx, func() error { return errors.New("database is locked") })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, IsBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, IsBusy(nil))
}
