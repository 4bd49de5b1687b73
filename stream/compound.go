package stream

type erasedHandler[In, Out any] struct {
	h Handler[In, Out]
}

func erase[In, Out any](h Handler[In, Out]) Handler[In, any] {
	return erasedHandler[In, Out]{h: h}
}

func (e erasedHandler[In, Out]) HandleInput(in In) (any, bool, error) {
	out, done, err := e.h.HandleInput(in)
	return out, done, err
}

func (e erasedHandler[In, Out]) HandleEnd() (any, error) {
	out, err := e.h.HandleEnd()
	return out, err
}

func (e erasedHandler[In, Out]) HandleError(err error) (any, bool, error) {
	out, ok, herr := e.h.HandleError(err)
	return out, ok, herr
}

func (e erasedHandler[In, Out]) Finished() bool { return e.h.Finished() }

// compoundCore drives N branch handlers over the same stream and collects
// their results. Every branch sees every input until it finishes; the
// compound finishes when the last branch does. A branch error aborts the
// whole product, tagged with the branch position.
type compoundCore[In any] struct {
	branches  []Handler[In, any]
	results   []any
	finished  []bool
	remaining int
	cs        CallSite
}

func newCompoundCore[In any](cs CallSite, branches ...Handler[In, any]) *compoundCore[In] {
	return &compoundCore[In]{
		branches:  branches,
		results:   make([]any, len(branches)),
		finished:  make([]bool, len(branches)),
		remaining: len(branches),
		cs:        cs,
	}
}

func (c *compoundCore[In]) decorate(err error, i int) error {
	return withTraceElement(asEngineError(err), InCompound{Index: i, Count: len(c.branches), CallSite: c.cs})
}

func (c *compoundCore[In]) handleInput(in In) (bool, error) {
	for i, b := range c.branches {
		if c.finished[i] {
			continue
		}
		out, done, err := b.HandleInput(in)
		if err != nil {
			return false, c.decorate(withLeafInput(err, in), i)
		}
		if done {
			c.results[i] = out
			c.finished[i] = true
			c.remaining--
		}
	}
	return c.remaining == 0, nil
}

func (c *compoundCore[In]) handleEnd() error {
	for i, b := range c.branches {
		if c.finished[i] {
			continue
		}
		out, err := b.HandleEnd()
		if err != nil {
			return c.decorate(err, i)
		}
		c.results[i] = out
		c.finished[i] = true
		c.remaining--
	}
	return nil
}

func (c *compoundCore[In]) handleError(err error) error {
	for i, b := range c.branches {
		if c.finished[i] {
			continue
		}
		out, ok, herr := b.HandleError(err)
		if !ok {
			return c.decorate(herr, i)
		}
		c.results[i] = out
		c.finished[i] = true
		c.remaining--
	}
	return nil
}

type tuple2Parser[In, A, B any] struct {
	pa Parser[In, A]
	pb Parser[In, B]
	cs CallSite
}

// Tuple2 runs both parsers on the same stream and finishes, once both
// have, with the pair of their results.
func Tuple2[In, A, B any](pa Parser[In, A], pb Parser[In, B]) Parser[In, Pair[A, B]] {
	return tuple2Parser[In, A, B]{pa: pa, pb: pb, cs: captureCallSite(1)}
}

func (p tuple2Parser[In, A, B]) Name() string {
	return "Tuple2(" + p.pa.Name() + ", " + p.pb.Name() + ")"
}

func (p tuple2Parser[In, A, B]) NewHandler() Handler[In, Pair[A, B]] {
	core := newCompoundCore(p.cs, erase(p.pa.NewHandler()), erase(p.pb.NewHandler()))
	return &compoundHandler[In, Pair[A, B]]{
		core: core,
		assemble: func(rs []any) Pair[A, B] {
			return Pair[A, B]{First: rs[0].(A), Second: rs[1].(B)}
		},
	}
}

type tuple3Parser[In, A, B, C any] struct {
	pa Parser[In, A]
	pb Parser[In, B]
	pc Parser[In, C]
	cs CallSite
}

// Tuple3 is the three-parser product.
func Tuple3[In, A, B, C any](pa Parser[In, A], pb Parser[In, B], pc Parser[In, C]) Parser[In, Triple[A, B, C]] {
	return tuple3Parser[In, A, B, C]{pa: pa, pb: pb, pc: pc, cs: captureCallSite(1)}
}

func (p tuple3Parser[In, A, B, C]) Name() string {
	return "Tuple3(" + p.pa.Name() + ", " + p.pb.Name() + ", " + p.pc.Name() + ")"
}

func (p tuple3Parser[In, A, B, C]) NewHandler() Handler[In, Triple[A, B, C]] {
	core := newCompoundCore(p.cs, erase(p.pa.NewHandler()), erase(p.pb.NewHandler()), erase(p.pc.NewHandler()))
	return &compoundHandler[In, Triple[A, B, C]]{
		core: core,
		assemble: func(rs []any) Triple[A, B, C] {
			return Triple[A, B, C]{First: rs[0].(A), Second: rs[1].(B), Third: rs[2].(C)}
		},
	}
}

type tuple4Parser[In, A, B, C, D any] struct {
	pa Parser[In, A]
	pb Parser[In, B]
	pc Parser[In, C]
	pd Parser[In, D]
	cs CallSite
}

// Tuple4 is the four-parser product.
func Tuple4[In, A, B, C, D any](pa Parser[In, A], pb Parser[In, B], pc Parser[In, C], pd Parser[In, D]) Parser[In, Quad[A, B, C, D]] {
	return tuple4Parser[In, A, B, C, D]{pa: pa, pb: pb, pc: pc, pd: pd, cs: captureCallSite(1)}
}

func (p tuple4Parser[In, A, B, C, D]) Name() string {
	return "Tuple4(" + p.pa.Name() + ", " + p.pb.Name() + ", " + p.pc.Name() + ", " + p.pd.Name() + ")"
}

func (p tuple4Parser[In, A, B, C, D]) NewHandler() Handler[In, Quad[A, B, C, D]] {
	core := newCompoundCore(p.cs,
		erase(p.pa.NewHandler()), erase(p.pb.NewHandler()),
		erase(p.pc.NewHandler()), erase(p.pd.NewHandler()))
	return &compoundHandler[In, Quad[A, B, C, D]]{
		core: core,
		assemble: func(rs []any) Quad[A, B, C, D] {
			return Quad[A, B, C, D]{First: rs[0].(A), Second: rs[1].(B), Third: rs[2].(C), Fourth: rs[3].(D)}
		},
	}
}

type compoundHandler[In, Out any] struct {
	core     *compoundCore[In]
	assemble func([]any) Out
	done     bool
}

func (h *compoundHandler[In, Out]) HandleInput(in In) (Out, bool, error) {
	var zero Out
	done, err := h.core.handleInput(in)
	if err != nil {
		h.done = true
		return zero, false, err
	}
	if !done {
		return zero, false, nil
	}
	h.done = true
	return h.assemble(h.core.results), true, nil
}

func (h *compoundHandler[In, Out]) HandleEnd() (Out, error) {
	h.done = true
	if err := h.core.handleEnd(); err != nil {
		var zero Out
		return zero, err
	}
	return h.assemble(h.core.results), nil
}

func (h *compoundHandler[In, Out]) HandleError(err error) (Out, bool, error) {
	h.done = true
	if herr := h.core.handleError(err); herr != nil {
		var zero Out
		return zero, false, herr
	}
	return h.assemble(h.core.results), true, nil
}

func (h *compoundHandler[In, Out]) Finished() bool { return h.done }
