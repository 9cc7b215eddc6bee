// Package testsupport holds helpers shared by package tests.
package testsupport

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"golang-news-signal/internal/pipeline/repository"
	"golang-news-signal/pkg/database"

	"github.com/stretchr/testify/require"
)

// MustOpenStore opens a migrated sqlite store in a temp dir and closes it when the test ends.
func MustOpenStore(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.NewDB(database.Config{
		Driver:      database.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "signals.db"),
		BusyTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db.DB))

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NoSleepRetry is the default retry policy without real waiting.
func NoSleepRetry() database.RetryPolicy {
	p := database.DefaultRetryPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}
