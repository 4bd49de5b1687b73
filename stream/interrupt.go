package stream

type interruptedParser[In, Out, I any] struct {
	base        Parser[In, Out]
	interrupter Parser[In, I]
}

// InterruptedBy runs the interrupter alongside the base parser. The moment
// the interrupter produces a value, the base is finalized as if the stream
// had ended; the triggering input is not forwarded to it. An interrupter
// error fails the whole parse — wrap the interrupter in Attempt to treat
// its failure as "no interruption" instead.
func InterruptedBy[In, Out, I any](base Parser[In, Out], interrupter Parser[In, I]) Parser[In, Out] {
	return interruptedParser[In, Out, I]{base: base, interrupter: interrupter}
}

func (p interruptedParser[In, Out, I]) Name() string {
	return p.base.Name() + ".InterruptedBy(" + p.interrupter.Name() + ")"
}

func (p interruptedParser[In, Out, I]) NewHandler() Handler[In, Out] {
	return &interruptedHandler[In, Out, I]{
		base:        p.base.NewHandler(),
		interrupter: p.interrupter.NewHandler(),
	}
}

type interruptedHandler[In, Out, I any] struct {
	base        Handler[In, Out]
	interrupter Handler[In, I]
	intrDead    bool
	done        bool
}

func (h *interruptedHandler[In, Out, I]) HandleInput(in In) (Out, bool, error) {
	var zero Out
	if !h.intrDead {
		iv, idone, ierr := h.interrupter.HandleInput(in)
		if ierr != nil {
			h.done = true
			return zero, false, ierr
		}
		if idone {
			h.intrDead = true
			// An Attempt-wrapped interrupter that failed is treated as
			// no interruption at all.
			if er, ok := any(iv).(errResult); !ok || er.resultErr() == nil {
				h.done = true
				out, err := h.base.HandleEnd()
				if err != nil {
					return zero, false, err
				}
				return out, true, nil
			}
		}
	}
	out, done, err := h.base.HandleInput(in)
	if err != nil || done {
		h.done = true
	}
	return out, done, err
}

func (h *interruptedHandler[In, Out, I]) HandleEnd() (Out, error) {
	h.done = true
	return h.base.HandleEnd()
}

func (h *interruptedHandler[In, Out, I]) HandleError(err error) (Out, bool, error) {
	h.done = true
	return h.base.HandleError(err)
}

func (h *interruptedHandler[In, Out, I]) Finished() bool { return h.done }

// BeforeContext interrupts the base parser at the first context push the
// matcher accepts, so the base only ever sees events from before that
// context opened. The triggering push is not forwarded to the base.
func BeforeContext[In, S, C, Out any](strat Stackable[In, S], matcher ContextMatcher[S, C], base Parser[In, Out]) Parser[In, Out] {
	return InterruptedBy(base, contextFoundParser[In, S, C]{strat: strat, matcher: matcher})
}

type contextFoundParser[In, S, C any] struct {
	strat   Stackable[In, S]
	matcher ContextMatcher[S, C]
}

func (p contextFoundParser[In, S, C]) Name() string {
	return "ContextFound(" + p.matcher.String() + ")"
}

func (p contextFoundParser[In, S, C]) NewHandler() Handler[In, C] {
	return &contextFoundHandler[In, S, C]{
		tracker: newContextTracker[In, S](p.strat),
		matcher: p.matcher,
	}
}

// contextFoundHandler watches the stack and finishes with the matched
// context value on the first push the matcher accepts. It is lenient about
// stack underflow; the parsers it interrupts report that on their own.
type contextFoundHandler[In, S, C any] struct {
	tracker *contextTracker[In, S]
	matcher ContextMatcher[S, C]
	done    bool
}

func (h *contextFoundHandler[In, S, C]) HandleInput(in In) (C, bool, error) {
	var zero C
	interp := h.tracker.interpret(in)
	switch interp.Effect {
	case StackPush:
		h.tracker.push(in, interp.Frame)
		if c, _, ok := h.matcher.MatchContext(h.tracker.stackValues()); ok {
			h.done = true
			return c, true, nil
		}
	case StackPop:
		_ = h.tracker.pop()
	}
	return zero, false, nil
}

func (h *contextFoundHandler[In, S, C]) HandleEnd() (C, error) {
	h.done = true
	var zero C
	return zero, nil
}

func (h *contextFoundHandler[In, S, C]) HandleError(err error) (C, bool, error) {
	h.done = true
	var zero C
	return zero, false, err
}

func (h *contextFoundHandler[In, S, C]) Finished() bool { return h.done }
