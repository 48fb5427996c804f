package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// levelRouter is a slog.Handler that sends records below ERROR to out and
// ERROR+ to errOut, dropping anything under min.
type levelRouter struct {
	min    slog.Level
	out    slog.Handler
	errOut slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.min
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.errOut.Handle(ctx, r)
	}
	return lr.out.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		out:    lr.out.WithAttrs(attrs),
		errOut: lr.errOut.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		min:    lr.min,
		out:    lr.out.WithGroup(name),
		errOut: lr.errOut.WithGroup(name),
	}
}

// setupLogger installs the default logger. INFO/WARN go to stdout and ERROR to
// stderr; quiet drops INFO. With a logPath every record is also appended to
// that file, and the returned func closes it.
func setupLogger(stdout, stderr io.Writer, logPath string, quiet bool) (func(), error) {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}

	cleanup := func() {}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdout = io.MultiWriter(stdout, f)
		stderr = io.MultiWriter(stderr, f)
	}

	slog.SetDefault(slog.New(&levelRouter{
		min:    level,
		out:    slog.NewTextHandler(stdout, opts),
		errOut: slog.NewTextHandler(stderr, opts),
	}))
	return cleanup, nil
}
