package stream

type followedByParser[In, S, A, B any] struct {
	strat Stackable[In, S]
	first Parser[In, A]
	then  func(A) Parser[In, B]
}

// FollowedBy sequences two parsers over one stream, with stack replay:
// while the first parser runs, the engine remembers the events whose
// pushes are still on the context stack. When the first parser finishes,
// its result picks the follow-up parser, which is first fed those
// remembered opening events in order and then the rest of the live stream.
// The follow-up therefore sees the ambient open scopes even though they
// were consumed before it existed.
func FollowedBy[In, S, A, B any](strat Stackable[In, S], first Parser[In, A], then func(A) Parser[In, B]) Parser[In, B] {
	return followedByParser[In, S, A, B]{strat: strat, first: first, then: then}
}

func (p followedByParser[In, S, A, B]) Name() string {
	return p.first.Name() + ".FollowedBy"
}

func (p followedByParser[In, S, A, B]) NewHandler() Handler[In, B] {
	return &followedByHandler[In, S, A, B]{
		tracker: newContextTracker[In, S](p.strat),
		h1:      p.first.NewHandler(),
		then:    p.then,
	}
}

type followedByHandler[In, S, A, B any] struct {
	tracker *contextTracker[In, S]
	h1      Handler[In, A]
	then    func(A) Parser[In, B]
	h2      Handler[In, B]
	done    bool
}

// begin instantiates the follow-up parser and replays the captured
// opening events into it. Returns (result, true) if the follow-up
// finished during replay.
func (h *followedByHandler[In, S, A, B]) begin(a A) (B, bool, error) {
	var zero B
	var p2 Parser[In, B]
	err := protect(func() error {
		p2 = h.then(a)
		return nil
	})
	if err != nil {
		h.done = true
		return zero, false, err
	}
	h.h2 = p2.NewHandler()
	for _, ev := range h.tracker.replayEvents() {
		out, done, err := h.h2.HandleInput(ev)
		if err != nil {
			h.done = true
			return zero, false, err
		}
		if done {
			h.done = true
			return out, true, nil
		}
	}
	return zero, false, nil
}

func (h *followedByHandler[In, S, A, B]) HandleInput(in In) (B, bool, error) {
	var zero B
	if h.h2 != nil {
		out, done, err := h.h2.HandleInput(in)
		if err != nil || done {
			h.done = true
		}
		return out, done, err
	}

	interp := h.tracker.interpret(in)
	if interp.Effect != StackNoChange && interp.BeforeInput {
		if err := h.applyChange(in, interp); err != nil {
			h.done = true
			return zero, false, err
		}
	}

	a, done, err := h.h1.HandleInput(in)
	if err != nil {
		h.done = true
		return zero, false, err
	}

	if interp.Effect != StackNoChange && !interp.BeforeInput {
		if cerr := h.applyChange(in, interp); cerr != nil {
			h.done = true
			return zero, false, cerr
		}
	}

	if !done {
		return zero, false, nil
	}
	return h.begin(a)
}

func (h *followedByHandler[In, S, A, B]) applyChange(in In, interp StackInterp[S]) error {
	if interp.Effect == StackPush {
		h.tracker.push(in, interp.Frame)
		return nil
	}
	return h.tracker.pop()
}

func (h *followedByHandler[In, S, A, B]) HandleEnd() (B, error) {
	if h.h2 == nil {
		a, err := h.h1.HandleEnd()
		if err != nil {
			h.done = true
			var zero B
			return zero, err
		}
		out, done, berr := h.begin(a)
		if berr != nil {
			var zero B
			return zero, berr
		}
		if done {
			return out, nil
		}
	}
	h.done = true
	return h.h2.HandleEnd()
}

func (h *followedByHandler[In, S, A, B]) HandleError(err error) (B, bool, error) {
	h.done = true
	if h.h2 != nil {
		return h.h2.HandleError(err)
	}
	a, ok, herr := h.h1.HandleError(err)
	if !ok {
		var zero B
		return zero, false, herr
	}
	out, done, berr := h.begin(a)
	if berr != nil {
		var zero B
		return zero, false, berr
	}
	if done {
		return out, true, nil
	}
	// The source has already failed; the follow-up will see no more
	// events, so finalize it now.
	final, eerr := h.h2.HandleEnd()
	if eerr != nil {
		var zero B
		return zero, false, eerr
	}
	return final, true, nil
}

func (h *followedByHandler[In, S, A, B]) Finished() bool { return h.done }

type followedByStreamTransformer[In, S, A, B any] struct {
	strat Stackable[In, S]
	first Parser[In, A]
	then  func(A) Transformer[In, B]
}

// FollowedByStream is FollowedBy where the follow-up is a transformer:
// once the first parser finishes, the captured opening events and then the
// live stream flow through the transformer it picked.
func FollowedByStream[In, S, A, B any](strat Stackable[In, S], first Parser[In, A], then func(A) Transformer[In, B]) Transformer[In, B] {
	return followedByStreamTransformer[In, S, A, B]{strat: strat, first: first, then: then}
}

func (t followedByStreamTransformer[In, S, A, B]) Name() string {
	return t.first.Name() + ".FollowedByStream"
}

func (t followedByStreamTransformer[In, S, A, B]) NewTransformHandler() TransformHandler[In, B] {
	return &followedByStreamHandler[In, S, A, B]{
		tracker: newContextTracker[In, S](t.strat),
		h1:      t.first.NewHandler(),
		then:    t.then,
	}
}

type followedByStreamHandler[In, S, A, B any] struct {
	tracker *contextTracker[In, S]
	h1      Handler[In, A]
	then    func(A) Transformer[In, B]
	h2      TransformHandler[In, B]
}

func (h *followedByStreamHandler[In, S, A, B]) begin(a A, out Sink[B]) (Signal, error) {
	var t2 Transformer[In, B]
	err := protect(func() error {
		t2 = h.then(a)
		return nil
	})
	if err != nil {
		return Stop, err
	}
	h.h2 = t2.NewTransformHandler()
	for _, ev := range h.tracker.replayEvents() {
		sig, perr := h.h2.Push(ev, out)
		if perr != nil {
			return Stop, perr
		}
		if sig == Stop {
			return Stop, nil
		}
	}
	return Continue, nil
}

func (h *followedByStreamHandler[In, S, A, B]) Push(in In, out Sink[B]) (Signal, error) {
	if h.h2 != nil {
		return h.h2.Push(in, out)
	}

	interp := h.tracker.interpret(in)
	if interp.Effect != StackNoChange && interp.BeforeInput {
		if err := h.applyChange(in, interp); err != nil {
			return Stop, err
		}
	}

	a, done, err := h.h1.HandleInput(in)
	if err != nil {
		return Stop, err
	}

	if interp.Effect != StackNoChange && !interp.BeforeInput {
		if cerr := h.applyChange(in, interp); cerr != nil {
			return Stop, cerr
		}
	}

	if !done {
		return Continue, nil
	}
	return h.begin(a, out)
}

func (h *followedByStreamHandler[In, S, A, B]) applyChange(in In, interp StackInterp[S]) error {
	if interp.Effect == StackPush {
		h.tracker.push(in, interp.Frame)
		return nil
	}
	return h.tracker.pop()
}

func (h *followedByStreamHandler[In, S, A, B]) End(out Sink[B]) error {
	if h.h2 == nil {
		a, err := h.h1.HandleEnd()
		if err != nil {
			return err
		}
		if _, berr := h.begin(a, out); berr != nil {
			return berr
		}
	}
	return h.h2.End(out)
}
