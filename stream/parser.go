package stream

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/lestrrat-go/pdebug"
)

// Parser is a stateless factory for handlers that consume a stream of In
// and finish with a single Out. Parsers are freely shareable; every parse
// gets an independent handler tree from NewHandler.
type Parser[In, Out any] interface {
	NewHandler() Handler[In, Out]
	Name() string
}

// Parse drives the parser over the source until the handler finishes, the
// source ends, or either side raises. The returned error carries the
// structured trace.
func Parse[In, Out any](ctx context.Context, p Parser[In, Out], src Source[In]) (Out, error) {
	return run(ctx, p, src, "Parse", captureCallSite(1))
}

// ParseSeq runs the parser over an in-memory sequence of events.
func ParseSeq[In, Out any](ctx context.Context, p Parser[In, Out], inputs []In) (Out, error) {
	return run(ctx, p, SliceSource(inputs), "ParseSeq", captureCallSite(1))
}

func run[In, Out any](ctx context.Context, p Parser[In, Out], src Source[In], method string, cs CallSite) (out Out, err error) {
	if pdebug.Enabled {
		g := pdebug.Marker("stream.%s %s", method, p.Name()).BindError(&err)
		defer g.End()
	}

	var zero Out
	h := p.NewHandler()
	tlog := traceLoggerFrom(ctx)
	logging := tlog.Enabled(ctx, slog.LevelDebug)

	for {
		if cerr := ctx.Err(); cerr != nil {
			return zero, cerr
		}

		in, serr := src.Next()
		if errors.Is(serr, io.EOF) {
			break
		}
		if serr != nil {
			r, ok, herr := h.HandleError(serr)
			if ok {
				return r, nil
			}
			return zero, withTraceElement(asEngineError(herr), InParse{Parser: p.Name(), Method: method, CallSite: cs})
		}

		if logging {
			tlog.LogAttrs(ctx, slog.LevelDebug, "event", slog.Any("input", in))
		}

		r, done, herr := h.HandleInput(in)
		if herr != nil {
			herr = withLeafInput(herr, in)
			return zero, withTraceElement(herr, InParse{Parser: p.Name(), Method: method, CallSite: cs})
		}
		if done {
			return r, nil
		}
	}

	r, herr := h.HandleEnd()
	if herr != nil {
		return zero, withTraceElement(asEngineError(herr), InParse{Parser: p.Name(), Method: method, CallSite: cs})
	}
	return r, nil
}
