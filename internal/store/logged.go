package store

import (
	"context"
	"log/slog"
	"time"
)

// Logged runs fn and logs the outcome of op through the default slog logger.
// The error from fn is returned unchanged.
func Logged[T any](ctx context.Context, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := fn(ctx)
	elapsed := time.Since(start).Round(time.Microsecond)
	if err != nil {
		slog.ErrorContext(ctx, "operation failed", "op", op, "duration", elapsed, "error", err)
		return v, err
	}
	slog.InfoContext(ctx, "operation executed", "op", op, "duration", elapsed)
	return v, nil
}
