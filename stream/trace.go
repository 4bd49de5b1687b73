package stream

import (
	"context"
	"io"
	"log/slog"
	"runtime"
)

type traceLoggerKey struct{}

// the null logger is a logger that does nothing
var nullLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// WithTraceLogger attaches a logger that the drivers use to record every
// event they pull. Useful when a declarative parser does something
// surprising and you want to watch the stream go by.
func WithTraceLogger(ctx context.Context, tlog *slog.Logger) context.Context {
	// If the context already has a trace logger, return the context as is
	if _, ok := ctx.Value(traceLoggerKey{}).(*slog.Logger); ok {
		return ctx
	}

	return context.WithValue(ctx, traceLoggerKey{}, tlog)
}

func traceLoggerFrom(ctx context.Context) *slog.Logger {
	if tlog, ok := ctx.Value(traceLoggerKey{}).(*slog.Logger); ok {
		// Retrieve the function name of the entry point for tracing
		pc, _, _, ok := runtime.Caller(2)
		if ok {
			fn := runtime.FuncForPC(pc)
			if fn != nil {
				tlog = tlog.With(slog.String("fn", fn.Name()))
			}
		}

		return tlog
	}
	return nullLogger
}
