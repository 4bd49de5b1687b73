package stream

type firstParser[In any] struct{}

// First finishes with the first input it sees. End of input before that is
// a MissingFirstError.
func First[In any]() Parser[In, In] {
	return firstParser[In]{}
}

func (firstParser[In]) Name() string { return "First" }

func (firstParser[In]) NewHandler() Handler[In, In] {
	return &firstHandler[In]{}
}

type firstHandler[In any] struct {
	done bool
}

func (h *firstHandler[In]) HandleInput(in In) (In, bool, error) {
	h.done = true
	return in, true, nil
}

func (h *firstHandler[In]) HandleEnd() (In, error) {
	h.done = true
	var zero In
	return zero, &MissingFirstError{}
}

func (h *firstHandler[In]) HandleError(err error) (In, bool, error) {
	h.done = true
	var zero In
	return zero, false, err
}

func (h *firstHandler[In]) Finished() bool { return h.done }

type firstOptionParser[In any] struct{}

// FirstOption is First without the failure: end of input yields None.
func FirstOption[In any]() Parser[In, Option[In]] {
	return firstOptionParser[In]{}
}

func (firstOptionParser[In]) Name() string { return "FirstOption" }

func (firstOptionParser[In]) NewHandler() Handler[In, Option[In]] {
	return &firstOptionHandler[In]{}
}

type firstOptionHandler[In any] struct {
	done bool
}

func (h *firstOptionHandler[In]) HandleInput(in In) (Option[In], bool, error) {
	h.done = true
	return Some(in), true, nil
}

func (h *firstOptionHandler[In]) HandleEnd() (Option[In], error) {
	h.done = true
	return None[In](), nil
}

func (h *firstOptionHandler[In]) HandleError(err error) (Option[In], bool, error) {
	h.done = true
	return None[In](), false, err
}

func (h *firstOptionHandler[In]) Finished() bool { return h.done }

type toListParser[In any] struct{}

// ToList buffers every input and yields the buffer at end of input.
func ToList[In any]() Parser[In, []In] {
	return toListParser[In]{}
}

func (toListParser[In]) Name() string { return "ToList" }

func (toListParser[In]) NewHandler() Handler[In, []In] {
	return &toListHandler[In]{}
}

type toListHandler[In any] struct {
	buf  []In
	done bool
}

func (h *toListHandler[In]) HandleInput(in In) ([]In, bool, error) {
	h.buf = append(h.buf, in)
	return nil, false, nil
}

func (h *toListHandler[In]) HandleEnd() ([]In, error) {
	h.done = true
	return h.buf, nil
}

func (h *toListHandler[In]) HandleError(err error) ([]In, bool, error) {
	h.done = true
	return nil, false, err
}

func (h *toListHandler[In]) Finished() bool { return h.done }

type foldParser[In, Acc any] struct {
	init Acc
	f    func(Acc, In) Acc
}

// Fold threads an accumulator through every input and yields it at end of
// input. A panic in f fails the parse with a CaughtError.
func Fold[In, Acc any](init Acc, f func(Acc, In) Acc) Parser[In, Acc] {
	return foldParser[In, Acc]{init: init, f: f}
}

func (foldParser[In, Acc]) Name() string { return "Fold" }

func (p foldParser[In, Acc]) NewHandler() Handler[In, Acc] {
	return &foldHandler[In, Acc]{acc: p.init, f: p.f}
}

type foldHandler[In, Acc any] struct {
	acc  Acc
	f    func(Acc, In) Acc
	done bool
}

func (h *foldHandler[In, Acc]) HandleInput(in In) (Acc, bool, error) {
	var zero Acc
	err := protect(func() error {
		h.acc = h.f(h.acc, in)
		return nil
	})
	if err != nil {
		h.done = true
		return zero, false, err
	}
	return zero, false, nil
}

func (h *foldHandler[In, Acc]) HandleEnd() (Acc, error) {
	h.done = true
	return h.acc, nil
}

func (h *foldHandler[In, Acc]) HandleError(err error) (Acc, bool, error) {
	h.done = true
	var zero Acc
	return zero, false, err
}

func (h *foldHandler[In, Acc]) Finished() bool { return h.done }

type foldErrParser[In, Acc any] struct {
	init Acc
	f    func(Acc, In) (Acc, error)
}

// FoldErr is Fold for stepping functions that can fail.
func FoldErr[In, Acc any](init Acc, f func(Acc, In) (Acc, error)) Parser[In, Acc] {
	return foldErrParser[In, Acc]{init: init, f: f}
}

func (foldErrParser[In, Acc]) Name() string { return "FoldErr" }

func (p foldErrParser[In, Acc]) NewHandler() Handler[In, Acc] {
	return &foldErrHandler[In, Acc]{acc: p.init, f: p.f}
}

type foldErrHandler[In, Acc any] struct {
	acc  Acc
	f    func(Acc, In) (Acc, error)
	done bool
}

func (h *foldErrHandler[In, Acc]) HandleInput(in In) (Acc, bool, error) {
	var zero Acc
	err := protect(func() error {
		next, ferr := h.f(h.acc, in)
		if ferr != nil {
			return ferr
		}
		h.acc = next
		return nil
	})
	if err != nil {
		h.done = true
		return zero, false, asEngineError(err)
	}
	return zero, false, nil
}

func (h *foldErrHandler[In, Acc]) HandleEnd() (Acc, error) {
	h.done = true
	return h.acc, nil
}

func (h *foldErrHandler[In, Acc]) HandleError(err error) (Acc, bool, error) {
	h.done = true
	var zero Acc
	return zero, false, err
}

func (h *foldErrHandler[In, Acc]) Finished() bool { return h.done }

type pureParser[In, Out any] struct {
	value Out
}

// Pure finishes immediately with a fixed value, consuming nothing useful
// from the stream.
func Pure[In, Out any](v Out) Parser[In, Out] {
	return pureParser[In, Out]{value: v}
}

func (pureParser[In, Out]) Name() string { return "Pure" }

func (p pureParser[In, Out]) NewHandler() Handler[In, Out] {
	return &pureHandler[In, Out]{value: p.value}
}

type pureHandler[In, Out any] struct {
	value Out
	done  bool
}

func (h *pureHandler[In, Out]) HandleInput(In) (Out, bool, error) {
	h.done = true
	return h.value, true, nil
}

func (h *pureHandler[In, Out]) HandleEnd() (Out, error) {
	h.done = true
	return h.value, nil
}

func (h *pureHandler[In, Out]) HandleError(err error) (Out, bool, error) {
	h.done = true
	var zero Out
	return zero, false, err
}

func (h *pureHandler[In, Out]) Finished() bool { return h.done }

type evalParser[In, Out any] struct {
	f func() (Out, error)
}

// Eval finishes immediately with the value (or failure) of the deferred
// computation. The computation runs once, at the moment the handler would
// finish.
func Eval[In, Out any](f func() (Out, error)) Parser[In, Out] {
	return evalParser[In, Out]{f: f}
}

func (evalParser[In, Out]) Name() string { return "Eval" }

func (p evalParser[In, Out]) NewHandler() Handler[In, Out] {
	return &evalHandler[In, Out]{f: p.f}
}

type evalHandler[In, Out any] struct {
	f    func() (Out, error)
	done bool
}

func (h *evalHandler[In, Out]) eval() (Out, error) {
	h.done = true
	var out Out
	err := protect(func() error {
		v, ferr := h.f()
		if ferr != nil {
			return ferr
		}
		out = v
		return nil
	})
	if err != nil {
		var zero Out
		return zero, asEngineError(err)
	}
	return out, nil
}

func (h *evalHandler[In, Out]) HandleInput(In) (Out, bool, error) {
	out, err := h.eval()
	return out, err == nil, err
}

func (h *evalHandler[In, Out]) HandleEnd() (Out, error) {
	return h.eval()
}

func (h *evalHandler[In, Out]) HandleError(err error) (Out, bool, error) {
	h.done = true
	var zero Out
	return zero, false, err
}

func (h *evalHandler[In, Out]) Finished() bool { return h.done }
