package stream

type mappedParser[In, A, B any] struct {
	base Parser[In, A]
	f    func(A) B
}

// Map transforms a parser's result. The function runs at the moment the
// base parser finishes, never earlier; a panic in f fails the parse at
// that point.
func Map[In, A, B any](base Parser[In, A], f func(A) B) Parser[In, B] {
	return mappedParser[In, A, B]{base: base, f: f}
}

func (p mappedParser[In, A, B]) Name() string {
	return "Map(" + p.base.Name() + ")"
}

func (p mappedParser[In, A, B]) NewHandler() Handler[In, B] {
	return &mappedHandler[In, A, B]{base: p.base.NewHandler(), f: p.f}
}

type mappedHandler[In, A, B any] struct {
	base Handler[In, A]
	f    func(A) B
	done bool
}

func (h *mappedHandler[In, A, B]) apply(a A) (B, error) {
	var out B
	err := protect(func() error {
		out = h.f(a)
		return nil
	})
	if err != nil {
		var zero B
		return zero, err
	}
	return out, nil
}

func (h *mappedHandler[In, A, B]) HandleInput(in In) (B, bool, error) {
	var zero B
	a, done, err := h.base.HandleInput(in)
	if err != nil {
		h.done = true
		return zero, false, err
	}
	if !done {
		return zero, false, nil
	}
	h.done = true
	out, err := h.apply(a)
	return out, err == nil, err
}

func (h *mappedHandler[In, A, B]) HandleEnd() (B, error) {
	h.done = true
	a, err := h.base.HandleEnd()
	if err != nil {
		var zero B
		return zero, err
	}
	return h.apply(a)
}

func (h *mappedHandler[In, A, B]) HandleError(err error) (B, bool, error) {
	h.done = true
	a, ok, herr := h.base.HandleError(err)
	if !ok {
		var zero B
		return zero, false, herr
	}
	out, ferr := h.apply(a)
	if ferr != nil {
		var zero B
		return zero, false, ferr
	}
	return out, true, nil
}

func (h *mappedHandler[In, A, B]) Finished() bool { return h.done }

type fallbackParser[In, Out any] struct {
	branches []Parser[In, Out]
}

// OrElse runs every branch on the same stream and finishes with the first
// branch to succeed; branches that fail along the way are discarded. The
// chain is self-flattening: OrElse(OrElse(a, b), c) has three branches,
// not two. If every branch fails the parse raises a FallbackChainError
// whose Underlying list is ordered by when each branch failed.
//
// While inputs are flowing, ties go to the earlier branch. At end of
// input the branches are finalized last-to-first, so a later branch that
// succeeds at the end wins over an earlier one.
func OrElse[In, Out any](parsers ...Parser[In, Out]) Parser[In, Out] {
	branches := make([]Parser[In, Out], 0, len(parsers))
	for _, p := range parsers {
		if fp, ok := p.(fallbackParser[In, Out]); ok {
			branches = append(branches, fp.branches...)
			continue
		}
		branches = append(branches, p)
	}
	return fallbackParser[In, Out]{branches: branches}
}

func (p fallbackParser[In, Out]) Name() string {
	name := "OrElse("
	for i, b := range p.branches {
		if i > 0 {
			name += ", "
		}
		name += b.Name()
	}
	return name + ")"
}

func (p fallbackParser[In, Out]) NewHandler() Handler[In, Out] {
	hs := make([]Handler[In, Out], len(p.branches))
	for i, b := range p.branches {
		hs[i] = b.NewHandler()
	}
	return &fallbackHandler[In, Out]{branches: hs, dead: make([]bool, len(hs))}
}

type fallbackHandler[In, Out any] struct {
	branches []Handler[In, Out]
	dead     []bool
	failures []error
	done     bool
}

func (h *fallbackHandler[In, Out]) HandleInput(in In) (Out, bool, error) {
	var zero Out
	live := 0
	for i, b := range h.branches {
		if h.dead[i] {
			continue
		}
		out, done, err := b.HandleInput(in)
		if err != nil {
			h.dead[i] = true
			h.failures = append(h.failures, err)
			continue
		}
		if done {
			h.done = true
			return out, true, nil
		}
		live++
	}
	if live == 0 {
		h.done = true
		return zero, false, &FallbackChainError{Underlying: h.failures}
	}
	return zero, false, nil
}

func (h *fallbackHandler[In, Out]) HandleEnd() (Out, error) {
	h.done = true
	for i := len(h.branches) - 1; i >= 0; i-- {
		if h.dead[i] {
			continue
		}
		out, err := h.branches[i].HandleEnd()
		if err != nil {
			h.dead[i] = true
			h.failures = append(h.failures, err)
			continue
		}
		return out, nil
	}
	var zero Out
	return zero, &FallbackChainError{Underlying: h.failures}
}

func (h *fallbackHandler[In, Out]) HandleError(err error) (Out, bool, error) {
	h.done = true
	for i, b := range h.branches {
		if h.dead[i] {
			continue
		}
		out, ok, berr := b.HandleError(err)
		if ok {
			return out, true, nil
		}
		h.dead[i] = true
		h.failures = append(h.failures, berr)
	}
	var zero Out
	return zero, false, &FallbackChainError{Underlying: h.failures}
}

func (h *fallbackHandler[In, Out]) Finished() bool { return h.done }

type attemptParser[In, Out any] struct {
	base Parser[In, Out]
}

// Attempt lifts the base parser's failure out of the error channel: the
// resulting parser always succeeds, with a Result holding either the value
// or the error that would have been raised.
func Attempt[In, Out any](base Parser[In, Out]) Parser[In, Result[Out]] {
	return attemptParser[In, Out]{base: base}
}

func (p attemptParser[In, Out]) Name() string {
	return "Attempt(" + p.base.Name() + ")"
}

func (p attemptParser[In, Out]) NewHandler() Handler[In, Result[Out]] {
	return &attemptHandler[In, Out]{base: p.base.NewHandler()}
}

type attemptHandler[In, Out any] struct {
	base Handler[In, Out]
	done bool
}

func (h *attemptHandler[In, Out]) HandleInput(in In) (Result[Out], bool, error) {
	out, done, err := h.base.HandleInput(in)
	if err != nil {
		h.done = true
		return Failure[Out](err), true, nil
	}
	if done {
		h.done = true
		return Ok(out), true, nil
	}
	return Result[Out]{}, false, nil
}

func (h *attemptHandler[In, Out]) HandleEnd() (Result[Out], error) {
	h.done = true
	out, err := h.base.HandleEnd()
	if err != nil {
		return Failure[Out](err), nil
	}
	return Ok(out), nil
}

func (h *attemptHandler[In, Out]) HandleError(err error) (Result[Out], bool, error) {
	h.done = true
	out, ok, herr := h.base.HandleError(err)
	if ok {
		return Ok(out), true, nil
	}
	return Failure[Out](herr), true, nil
}

func (h *attemptHandler[In, Out]) Finished() bool { return h.done }

type rethrowParser[In, Out any] struct {
	base Parser[In, Result[Out]]
}

// Rethrow is the inverse of Attempt: a success carrying an error becomes a
// failure again. Attempt followed by Rethrow is observationally the base
// parser.
func Rethrow[In, Out any](base Parser[In, Result[Out]]) Parser[In, Out] {
	return rethrowParser[In, Out]{base: base}
}

func (p rethrowParser[In, Out]) Name() string {
	return "Rethrow(" + p.base.Name() + ")"
}

func (p rethrowParser[In, Out]) NewHandler() Handler[In, Out] {
	return &rethrowHandler[In, Out]{base: p.base.NewHandler()}
}

type rethrowHandler[In, Out any] struct {
	base Handler[In, Result[Out]]
	done bool
}

func (h *rethrowHandler[In, Out]) unwrap(r Result[Out]) (Out, error) {
	if r.Err != nil {
		var zero Out
		return zero, asEngineError(r.Err)
	}
	return r.Value, nil
}

func (h *rethrowHandler[In, Out]) HandleInput(in In) (Out, bool, error) {
	var zero Out
	r, done, err := h.base.HandleInput(in)
	if err != nil {
		h.done = true
		return zero, false, err
	}
	if !done {
		return zero, false, nil
	}
	h.done = true
	out, uerr := h.unwrap(r)
	return out, uerr == nil, uerr
}

func (h *rethrowHandler[In, Out]) HandleEnd() (Out, error) {
	h.done = true
	r, err := h.base.HandleEnd()
	if err != nil {
		var zero Out
		return zero, err
	}
	return h.unwrap(r)
}

func (h *rethrowHandler[In, Out]) HandleError(err error) (Out, bool, error) {
	h.done = true
	r, ok, herr := h.base.HandleError(err)
	if !ok {
		var zero Out
		return zero, false, herr
	}
	out, uerr := h.unwrap(r)
	if uerr != nil {
		var zero Out
		return zero, false, uerr
	}
	return out, true, nil
}

func (h *rethrowHandler[In, Out]) Finished() bool { return h.done }

// Expectation is one step of an ExpectInputs guard: the next input must
// satisfy Pred, and Label names it in failures.
type Expectation[In any] struct {
	Label string
	Pred  func(In) bool
}

type expectInputsParser[In, Out any] struct {
	base Parser[In, Out]
	exps []Expectation[In]
}

// ExpectInputs checks the leading inputs of the stream against an ordered
// list of expectations before forwarding them to the base parser. A
// mismatch raises UnexpectedInputError; end of input with expectations
// remaining raises UnfulfilledInputsError.
func ExpectInputs[In, Out any](base Parser[In, Out], exps []Expectation[In]) Parser[In, Out] {
	return expectInputsParser[In, Out]{base: base, exps: exps}
}

func (p expectInputsParser[In, Out]) Name() string {
	return "ExpectInputs(" + p.base.Name() + ")"
}

func (p expectInputsParser[In, Out]) NewHandler() Handler[In, Out] {
	return &expectInputsHandler[In, Out]{base: p.base.NewHandler(), exps: p.exps}
}

type expectInputsHandler[In, Out any] struct {
	base Handler[In, Out]
	exps []Expectation[In]
	pos  int
	done bool
}

func (h *expectInputsHandler[In, Out]) remainingLabels() []string {
	labels := make([]string, 0, len(h.exps)-h.pos)
	for _, e := range h.exps[h.pos:] {
		labels = append(labels, e.Label)
	}
	return labels
}

func (h *expectInputsHandler[In, Out]) HandleInput(in In) (Out, bool, error) {
	var zero Out
	if h.pos < len(h.exps) {
		pass := false
		err := protect(func() error {
			pass = h.exps[h.pos].Pred(in)
			return nil
		})
		if err != nil {
			h.done = true
			return zero, false, err
		}
		if !pass {
			h.done = true
			return zero, false, &UnexpectedInputError{Input: in, Expectations: h.remainingLabels()}
		}
		h.pos++
	}
	out, done, err := h.base.HandleInput(in)
	if err != nil || done {
		h.done = true
	}
	return out, done, err
}

func (h *expectInputsHandler[In, Out]) HandleEnd() (Out, error) {
	h.done = true
	if h.pos < len(h.exps) {
		var zero Out
		return zero, &UnfulfilledInputsError{Expectations: h.remainingLabels()}
	}
	return h.base.HandleEnd()
}

func (h *expectInputsHandler[In, Out]) HandleError(err error) (Out, bool, error) {
	h.done = true
	return h.base.HandleError(err)
}

func (h *expectInputsHandler[In, Out]) Finished() bool { return h.done }

type deferredParser[In, Out any] struct {
	f func() Parser[In, Out]
}

// Deferred delays parser construction until a handler is needed, which is
// how recursive grammars tie the knot: the closure can refer to a parser
// variable that is still being defined.
func Deferred[In, Out any](f func() Parser[In, Out]) Parser[In, Out] {
	return deferredParser[In, Out]{f: f}
}

func (deferredParser[In, Out]) Name() string { return "Deferred" }

func (p deferredParser[In, Out]) NewHandler() Handler[In, Out] {
	return p.f().NewHandler()
}
