package stream

import "github.com/dylemma/xml-stream/internal/debug"

// ContextSplitter matches context-stack states to delimit sub-streams.
// Combined with a joiner (see Join) it becomes a transformer that runs a
// fresh sub-parser over each matched sub-stream and emits the results.
type ContextSplitter[In, S, C any] struct {
	strat   Stackable[In, S]
	matcher ContextMatcher[S, C]
	cs      CallSite
}

// NewSplitter builds a splitter from a stack strategy and a matcher over
// the resulting context stack.
func NewSplitter[In, S, C any](strat Stackable[In, S], matcher ContextMatcher[S, C]) *ContextSplitter[In, S, C] {
	return &ContextSplitter[In, S, C]{strat: strat, matcher: matcher, cs: captureCallSite(1)}
}

func (sp *ContextSplitter[In, S, C]) Name() string {
	return "Splitter(" + sp.matcher.String() + ")"
}

// Join attaches a joiner to the splitter: for every matched context, the
// joiner picks the parser that consumes that sub-stream, and the sub-
// stream's parse result is emitted downstream.
func Join[In, S, C, Out any](sp *ContextSplitter[In, S, C], joiner func(C) Parser[In, Out]) Transformer[In, Out] {
	return splitTransformer[In, S, C, Out]{sp: sp, joiner: joiner}
}

// JoinParser is Join with a fixed sub-parser, for matchers whose context
// value carries no information the sub-parse needs.
func JoinParser[In, S, C, Out any](sp *ContextSplitter[In, S, C], p Parser[In, Out]) Transformer[In, Out] {
	return Join(sp, func(C) Parser[In, Out] { return p })
}

type splitTransformer[In, S, C, Out any] struct {
	sp     *ContextSplitter[In, S, C]
	joiner func(C) Parser[In, Out]
}

func (t splitTransformer[In, S, C, Out]) Name() string {
	return t.sp.Name()
}

func (t splitTransformer[In, S, C, Out]) NewTransformHandler() TransformHandler[In, Out] {
	return &splitHandler[In, S, C, Out]{
		tracker: newContextTracker[In, S](t.sp.strat),
		matcher: t.sp.matcher,
		cs:      t.sp.cs,
		joiner:  t.joiner,
	}
}

// splitHandler is the splitter state machine. At most one sub-stream is
// open at a time: active is its handler, activeDepth the stack depth at
// which it opened. After the sub-parser finishes early, awaitClose stays
// set until the stack drops back below activeDepth, so the matcher is not
// re-consulted inside an already-consumed context.
type splitHandler[In, S, C, Out any] struct {
	tracker *contextTracker[In, S]
	matcher ContextMatcher[S, C]
	cs      CallSite
	joiner  func(C) Parser[In, Out]

	active      Handler[In, Out]
	activeDepth int
	awaitClose  bool
}

func (h *splitHandler[In, S, C, Out]) decorate(err error, in any) error {
	err = withLeafInput(err, in)
	return withTraceElement(err, InSplitter{Matcher: h.matcher.String(), CallSite: h.cs})
}

// tryOpen consults the matcher against the current stack and, on a match,
// instantiates a fresh sub-handler.
func (h *splitHandler[In, S, C, Out]) tryOpen() (bool, error) {
	c, _, ok := h.matcher.MatchContext(h.tracker.stackValues())
	if !ok {
		return false, nil
	}
	var p Parser[In, Out]
	if err := protect(func() error { p = h.joiner(c); return nil }); err != nil {
		return false, err
	}
	if debug.Enabled {
		debug.Printf(" --> open sub-stream %s at depth %d", h.matcher.String(), h.tracker.depth())
	}
	h.active = p.NewHandler()
	h.activeDepth = h.tracker.depth()
	h.awaitClose = true
	return true, nil
}

// feedActive delivers one input to the open sub-handler, emitting its
// result downstream if it finishes.
func (h *splitHandler[In, S, C, Out]) feedActive(in In, out Sink[Out]) (Signal, error) {
	r, done, err := h.active.HandleInput(in)
	if err != nil {
		return Stop, h.decorate(err, in)
	}
	if !done {
		return Continue, nil
	}
	h.active = nil
	return out.Push(r)
}

// closeActive finalizes the open sub-handler because its context closed.
func (h *splitHandler[In, S, C, Out]) closeActive(in any, out Sink[Out]) (Signal, error) {
	if debug.Enabled {
		debug.Printf(" <-- close sub-stream %s at depth %d", h.matcher.String(), h.tracker.depth())
	}
	h.awaitClose = false
	if h.active == nil {
		return Continue, nil
	}
	inner := h.active
	h.active = nil
	r, err := inner.HandleEnd()
	if err != nil {
		if in != nil {
			return Stop, h.decorate(err, in)
		}
		return Stop, withTraceElement(asEngineError(err), InSplitter{Matcher: h.matcher.String(), CallSite: h.cs})
	}
	return out.Push(r)
}

func (h *splitHandler[In, S, C, Out]) Push(in In, out Sink[Out]) (Signal, error) {
	interp := h.tracker.interpret(in)
	sig := Continue

	// stack changes that precede the input
	if interp.Effect == StackPush && interp.BeforeInput {
		h.tracker.push(in, interp.Frame)
	}
	if interp.Effect == StackPop && interp.BeforeInput {
		if err := h.tracker.pop(); err != nil {
			return Stop, h.decorate(err, in)
		}
		// the input belongs to the parent, so the sub-stream (if the
		// pop uncovered its start) ends before the input is seen
		if h.awaitClose && h.tracker.depth() < h.activeDepth {
			s, err := h.closeActive(in, out)
			if err != nil || s == Stop {
				return s, err
			}
			sig = s
		}
	}

	switch {
	case h.active != nil:
		s, err := h.feedActive(in, out)
		if err != nil || s == Stop {
			return s, err
		}
		sig = s
	case !h.awaitClose && interp.Effect == StackPush && interp.BeforeInput:
		opened, err := h.tryOpen()
		if err != nil {
			return Stop, h.decorate(err, in)
		}
		if opened {
			// a push that precedes its input puts the input inside
			// the new context
			s, ferr := h.feedActive(in, out)
			if ferr != nil || s == Stop {
				return s, ferr
			}
			sig = s
		}
	}

	// stack changes that follow the input
	if interp.Effect == StackPush && !interp.BeforeInput {
		h.tracker.push(in, interp.Frame)
		if h.active == nil && !h.awaitClose {
			if _, err := h.tryOpen(); err != nil {
				return Stop, h.decorate(err, in)
			}
		}
	}
	if interp.Effect == StackPop && !interp.BeforeInput {
		if err := h.tracker.pop(); err != nil {
			return Stop, h.decorate(err, in)
		}
		if h.awaitClose && h.tracker.depth() < h.activeDepth {
			s, err := h.closeActive(in, out)
			if err != nil || s == Stop {
				return s, err
			}
			sig = s
		}
	}

	return sig, nil
}

func (h *splitHandler[In, S, C, Out]) End(out Sink[Out]) error {
	if h.active != nil {
		if _, err := h.closeActive(nil, out); err != nil {
			return err
		}
	}
	return nil
}

type matchSplitTransformer[In, Out any] struct {
	pred   func(In) bool
	joiner func(In) Parser[In, Out]
}

// SplitOnMatch is the stack-less splitter: every run of consecutive
// inputs satisfying pred forms one sub-stream, opened with the first
// matching input and closed by the first non-matching one (which belongs
// to no sub-stream). The joiner picks the sub-parser from the opening
// input.
func SplitOnMatch[In, Out any](pred func(In) bool, joiner func(In) Parser[In, Out]) Transformer[In, Out] {
	return matchSplitTransformer[In, Out]{pred: pred, joiner: joiner}
}

func (t matchSplitTransformer[In, Out]) Name() string {
	return "SplitOnMatch"
}

func (t matchSplitTransformer[In, Out]) NewTransformHandler() TransformHandler[In, Out] {
	return &matchSplitHandler[In, Out]{pred: t.pred, joiner: t.joiner}
}

type matchSplitHandler[In, Out any] struct {
	pred   func(In) bool
	joiner func(In) Parser[In, Out]

	active Handler[In, Out]
	inSub  bool
}

func (h *matchSplitHandler[In, Out]) Push(in In, out Sink[Out]) (Signal, error) {
	match := false
	if err := protect(func() error { match = h.pred(in); return nil }); err != nil {
		return Stop, withLeafInput(err, in)
	}

	if !match {
		h.inSub = false
		if h.active == nil {
			return Continue, nil
		}
		inner := h.active
		h.active = nil
		r, err := inner.HandleEnd()
		if err != nil {
			return Stop, withLeafInput(err, in)
		}
		return out.Push(r)
	}

	if !h.inSub {
		var p Parser[In, Out]
		if err := protect(func() error { p = h.joiner(in); return nil }); err != nil {
			return Stop, withLeafInput(err, in)
		}
		h.active = p.NewHandler()
		h.inSub = true
	}
	if h.active == nil {
		// sub-parser already finished; drain the rest of this run
		return Continue, nil
	}

	r, done, err := h.active.HandleInput(in)
	if err != nil {
		return Stop, withLeafInput(err, in)
	}
	if !done {
		return Continue, nil
	}
	h.active = nil
	return out.Push(r)
}

func (h *matchSplitHandler[In, Out]) End(out Sink[Out]) error {
	if h.active == nil {
		return nil
	}
	inner := h.active
	h.active = nil
	r, err := inner.HandleEnd()
	if err != nil {
		return asEngineError(err)
	}
	_, perr := out.Push(r)
	return perr
}
