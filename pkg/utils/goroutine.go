package utils

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"golang-news-signal/pkg/logger"
)

// GoSafe runs fn in a goroutine and logs instead of crashing on panic.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered panic in goroutine: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// Recover converts a panic inside the calling function into an error.
// Use as: defer utils.Recover(&err)
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("panic: %v", r)
	}
}

// ShouldContinue reports whether ctx is still live, logging once it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("Context done, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
