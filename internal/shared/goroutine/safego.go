// Package goroutine runs background tasks whose panics must not take the process down.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/axonect/quotacycle/internal/shared/logger"
)

// Recover logs a panic raised by the named task. It must be deferred directly.
func Recover(log logger.Interface, task string, attrs ...any) {
	r := recover()
	if r == nil {
		return
	}
	fields := append([]any{
		"task", task,
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	}, attrs...)
	log.Errorw("background task panicked", fields...)
}

// Go runs fn on its own goroutine. Panics are recovered and a returned error is logged
// unless it only reports that ctx was cancelled.
func Go(ctx context.Context, log logger.Interface, task string, fn func(ctx context.Context) error) {
	go func() {
		defer Recover(log, task)
		if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warnw("background task failed", "task", task, "error", err)
		}
	}()
}
