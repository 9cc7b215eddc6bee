package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ErrBusy is returned once a write has kept hitting a locked store for every attempt.
var ErrBusy = errors.New("database is busy")

// RetryPolicy retries writes that fail on store contention with linear backoff.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
	// Sleep is replaced in tests; nil means a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy is five attempts with backoff 0.5s, 1s, 1.5s, 2s between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, Backoff: 500 * time.Millisecond}
}

// Do runs op until it succeeds, fails with a non-busy error, or attempts run out.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		err := op()
		if err == nil {
			return nil
		}
		if !IsBusy(err) {
			return err
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		if err := p.sleep(ctx, p.Backoff*time.Duration(i+1)); err != nil {
			return fmt.Errorf("retry interrupted: %w", err)
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrBusy, attempts, lastErr)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsBusy reports whether err is transient store contention.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}
