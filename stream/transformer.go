package stream

import (
	"errors"
	"io"
)

// Transformer is a stateless factory for handlers that turn a stream of In
// into a stream of Out. Transform handlers push their outputs into a Sink
// and return Stop when they will produce nothing further.
type Transformer[In, Out any] interface {
	NewTransformHandler() TransformHandler[In, Out]
	Name() string
}

// TransformHandler is the runtime node a Transformer compiles to. Push
// handles one input, emitting zero or more outputs; End flushes whatever
// the node held back.
type TransformHandler[In, Out any] interface {
	Push(in In, out Sink[Out]) (Signal, error)
	End(out Sink[Out]) error
}

type funcTransformer[In, Out any] struct {
	name string
	mk   func() TransformHandler[In, Out]
}

func (t funcTransformer[In, Out]) Name() string { return t.name }

func (t funcTransformer[In, Out]) NewTransformHandler() TransformHandler[In, Out] {
	return t.mk()
}

type statelessTransformHandler[In, Out any] func(in In, out Sink[Out]) (Signal, error)

func (f statelessTransformHandler[In, Out]) Push(in In, out Sink[Out]) (Signal, error) {
	return f(in, out)
}

func (statelessTransformHandler[In, Out]) End(Sink[Out]) error { return nil }

// MapEach emits f(in) for every input.
func MapEach[In, Out any](f func(In) Out) Transformer[In, Out] {
	return funcTransformer[In, Out]{name: "MapEach", mk: func() TransformHandler[In, Out] {
		return statelessTransformHandler[In, Out](func(in In, out Sink[Out]) (Signal, error) {
			var v Out
			if err := protect(func() error { v = f(in); return nil }); err != nil {
				return Stop, err
			}
			return out.Push(v)
		})
	}}
}

// MapFlatten emits every element of f(in), preserving order.
func MapFlatten[In, Out any](f func(In) []Out) Transformer[In, Out] {
	return funcTransformer[In, Out]{name: "MapFlatten", mk: func() TransformHandler[In, Out] {
		return statelessTransformHandler[In, Out](func(in In, out Sink[Out]) (Signal, error) {
			var vs []Out
			if err := protect(func() error { vs = f(in); return nil }); err != nil {
				return Stop, err
			}
			for _, v := range vs {
				sig, err := out.Push(v)
				if err != nil || sig == Stop {
					return sig, err
				}
			}
			return Continue, nil
		})
	}}
}

// Filter passes through the inputs that satisfy pred.
func Filter[In any](pred func(In) bool) Transformer[In, In] {
	return funcTransformer[In, In]{name: "Filter", mk: func() TransformHandler[In, In] {
		return statelessTransformHandler[In, In](func(in In, out Sink[In]) (Signal, error) {
			pass := false
			if err := protect(func() error { pass = pred(in); return nil }); err != nil {
				return Stop, err
			}
			if !pass {
				return Continue, nil
			}
			return out.Push(in)
		})
	}}
}

// Collect is Filter and MapEach in one step: f returns the mapped value
// and whether to emit it.
func Collect[In, Out any](f func(In) (Out, bool)) Transformer[In, Out] {
	return funcTransformer[In, Out]{name: "Collect", mk: func() TransformHandler[In, Out] {
		return statelessTransformHandler[In, Out](func(in In, out Sink[Out]) (Signal, error) {
			var v Out
			keep := false
			if err := protect(func() error { v, keep = f(in); return nil }); err != nil {
				return Stop, err
			}
			if !keep {
				return Continue, nil
			}
			return out.Push(v)
		})
	}}
}

// Tap runs a side effect on every input and passes it through unchanged.
func Tap[In any](f func(In)) Transformer[In, In] {
	return funcTransformer[In, In]{name: "Tap", mk: func() TransformHandler[In, In] {
		return statelessTransformHandler[In, In](func(in In, out Sink[In]) (Signal, error) {
			if err := protect(func() error { f(in); return nil }); err != nil {
				return Stop, err
			}
			return out.Push(in)
		})
	}}
}

type takeHandler[In any] struct {
	remaining int
}

func (h *takeHandler[In]) Push(in In, out Sink[In]) (Signal, error) {
	if h.remaining <= 0 {
		return Stop, nil
	}
	sig, err := out.Push(in)
	if err != nil {
		return Stop, err
	}
	h.remaining--
	if h.remaining <= 0 {
		return Stop, nil
	}
	return sig, nil
}

func (h *takeHandler[In]) End(Sink[In]) error { return nil }

// Take passes through the first n inputs, then stops the stream.
func Take[In any](n int) Transformer[In, In] {
	return funcTransformer[In, In]{name: "Take", mk: func() TransformHandler[In, In] {
		return &takeHandler[In]{remaining: n}
	}}
}

type dropHandler[In any] struct {
	remaining int
}

func (h *dropHandler[In]) Push(in In, out Sink[In]) (Signal, error) {
	if h.remaining > 0 {
		h.remaining--
		return Continue, nil
	}
	return out.Push(in)
}

func (h *dropHandler[In]) End(Sink[In]) error { return nil }

// Drop discards the first n inputs.
func Drop[In any](n int) Transformer[In, In] {
	return funcTransformer[In, In]{name: "Drop", mk: func() TransformHandler[In, In] {
		return &dropHandler[In]{remaining: n}
	}}
}

type takeWhileHandler[In any] struct {
	pred    func(In) bool
	stopped bool
}

func (h *takeWhileHandler[In]) Push(in In, out Sink[In]) (Signal, error) {
	if h.stopped {
		return Stop, nil
	}
	pass := false
	if err := protect(func() error { pass = h.pred(in); return nil }); err != nil {
		return Stop, err
	}
	if !pass {
		h.stopped = true
		return Stop, nil
	}
	return out.Push(in)
}

func (h *takeWhileHandler[In]) End(Sink[In]) error { return nil }

// TakeWhile passes inputs through until the first one that fails pred,
// which is discarded and stops the stream.
func TakeWhile[In any](pred func(In) bool) Transformer[In, In] {
	return funcTransformer[In, In]{name: "TakeWhile", mk: func() TransformHandler[In, In] {
		return &takeWhileHandler[In]{pred: pred}
	}}
}

type dropWhileHandler[In any] struct {
	pred     func(In) bool
	dropping bool
}

func (h *dropWhileHandler[In]) Push(in In, out Sink[In]) (Signal, error) {
	if h.dropping {
		pass := false
		if err := protect(func() error { pass = h.pred(in); return nil }); err != nil {
			return Stop, err
		}
		if pass {
			return Continue, nil
		}
		h.dropping = false
	}
	return out.Push(in)
}

func (h *dropWhileHandler[In]) End(Sink[In]) error { return nil }

// DropWhile discards inputs until the first one that fails pred, which is
// passed through along with everything after it.
func DropWhile[In any](pred func(In) bool) Transformer[In, In] {
	return funcTransformer[In, In]{name: "DropWhile", mk: func() TransformHandler[In, In] {
		return &dropWhileHandler[In]{pred: pred, dropping: true}
	}}
}

type scanHandler[In, Acc any] struct {
	acc Acc
	f   func(Acc, In) Acc
}

func (h *scanHandler[In, Acc]) Push(in In, out Sink[Acc]) (Signal, error) {
	if err := protect(func() error { h.acc = h.f(h.acc, in); return nil }); err != nil {
		return Stop, err
	}
	return out.Push(h.acc)
}

func (h *scanHandler[In, Acc]) End(Sink[Acc]) error { return nil }

// Scan emits the running accumulator after each input.
func Scan[In, Acc any](init Acc, f func(Acc, In) Acc) Transformer[In, Acc] {
	return funcTransformer[In, Acc]{name: "Scan", mk: func() TransformHandler[In, Acc] {
		return &scanHandler[In, Acc]{acc: init, f: f}
	}}
}

type chainedTransformer[In, A, B any] struct {
	t1 Transformer[In, A]
	t2 Transformer[A, B]
}

// Through pipes the outputs of one transformer into another.
func Through[In, A, B any](t1 Transformer[In, A], t2 Transformer[A, B]) Transformer[In, B] {
	return chainedTransformer[In, A, B]{t1: t1, t2: t2}
}

func (t chainedTransformer[In, A, B]) Name() string {
	return t.t1.Name() + " >> " + t.t2.Name()
}

func (t chainedTransformer[In, A, B]) NewTransformHandler() TransformHandler[In, B] {
	return &chainedTransformHandler[In, A, B]{h1: t.t1.NewTransformHandler(), h2: t.t2.NewTransformHandler()}
}

type chainSink[A, B any] struct {
	h   TransformHandler[A, B]
	out Sink[B]
}

func (c chainSink[A, B]) Push(a A) (Signal, error) {
	return c.h.Push(a, c.out)
}

type chainedTransformHandler[In, A, B any] struct {
	h1 TransformHandler[In, A]
	h2 TransformHandler[A, B]
}

func (h *chainedTransformHandler[In, A, B]) Push(in In, out Sink[B]) (Signal, error) {
	return h.h1.Push(in, chainSink[A, B]{h: h.h2, out: out})
}

func (h *chainedTransformHandler[In, A, B]) End(out Sink[B]) error {
	if err := h.h1.End(chainSink[A, B]{h: h.h2, out: out}); err != nil {
		return err
	}
	return h.h2.End(out)
}

type intoParser[In, A, Out any] struct {
	t Transformer[In, A]
	p Parser[A, Out]
}

// Into feeds a transformer's outputs to a parser, yielding a parser over
// the transformer's input type. The parse finishes as soon as the inner
// parser does, or when the transformer stops the stream.
func Into[In, A, Out any](t Transformer[In, A], p Parser[A, Out]) Parser[In, Out] {
	return intoParser[In, A, Out]{t: t, p: p}
}

// IntoList collects every output of a transformer into a slice.
func IntoList[In, A any](t Transformer[In, A]) Parser[In, []A] {
	return Into(t, ToList[A]())
}

func (p intoParser[In, A, Out]) Name() string {
	return p.t.Name() + " into " + p.p.Name()
}

func (p intoParser[In, A, Out]) NewHandler() Handler[In, Out] {
	return &intoHandler[In, A, Out]{th: p.t.NewTransformHandler(), ph: p.p.NewHandler()}
}

type intoHandler[In, A, Out any] struct {
	th   TransformHandler[In, A]
	ph   Handler[A, Out]
	res  Out
	have bool
	done bool
}

// Push makes the handler its own sink for the transformer's outputs.
func (h *intoHandler[In, A, Out]) Push(a A) (Signal, error) {
	if h.have {
		return Stop, nil
	}
	out, done, err := h.ph.HandleInput(a)
	if err != nil {
		return Stop, err
	}
	if done {
		h.res = out
		h.have = true
		return Stop, nil
	}
	return Continue, nil
}

func (h *intoHandler[In, A, Out]) HandleInput(in In) (Out, bool, error) {
	var zero Out
	sig, err := h.th.Push(in, h)
	if err != nil {
		h.done = true
		return zero, false, err
	}
	if h.have {
		h.done = true
		return h.res, true, nil
	}
	if sig == Stop {
		// The transformer will emit nothing further, so the inner
		// parser sees its end of stream now.
		h.done = true
		out, eerr := h.ph.HandleEnd()
		if eerr != nil {
			return zero, false, eerr
		}
		return out, true, nil
	}
	return zero, false, nil
}

func (h *intoHandler[In, A, Out]) HandleEnd() (Out, error) {
	h.done = true
	if err := h.th.End(h); err != nil {
		var zero Out
		return zero, err
	}
	if h.have {
		return h.res, nil
	}
	return h.ph.HandleEnd()
}

func (h *intoHandler[In, A, Out]) HandleError(err error) (Out, bool, error) {
	h.done = true
	return h.ph.HandleError(err)
}

func (h *intoHandler[In, A, Out]) Finished() bool { return h.done }

// TransformSlice runs a transformer over an in-memory sequence and
// collects its outputs.
func TransformSlice[In, Out any](t Transformer[In, Out], inputs []In) ([]Out, error) {
	th := t.NewTransformHandler()
	var results []Out
	sink := SinkFunc[Out](func(v Out) (Signal, error) {
		results = append(results, v)
		return Continue, nil
	})
	for _, in := range inputs {
		sig, err := th.Push(in, sink)
		if err != nil {
			return nil, withLeafInput(err, in)
		}
		if sig == Stop {
			return results, nil
		}
	}
	if err := th.End(sink); err != nil {
		return nil, asEngineError(err)
	}
	return results, nil
}

type transformedSource[In, Out any] struct {
	th    TransformHandler[In, Out]
	src   Source[In]
	queue []Out
	ended bool
	err   error
}

// TransformSource lazily applies a transformer to a source, producing a
// new source that pulls from the original on demand.
func TransformSource[In, Out any](t Transformer[In, Out], src Source[In]) Source[Out] {
	return &transformedSource[In, Out]{th: t.NewTransformHandler(), src: src}
}

func (s *transformedSource[In, Out]) Push(v Out) (Signal, error) {
	s.queue = append(s.queue, v)
	return Continue, nil
}

func (s *transformedSource[In, Out]) Next() (Out, error) {
	var zero Out
	for len(s.queue) == 0 {
		if s.err != nil {
			return zero, s.err
		}
		if s.ended {
			return zero, io.EOF
		}
		in, err := s.src.Next()
		if errors.Is(err, io.EOF) {
			s.ended = true
			if terr := s.th.End(s); terr != nil {
				s.err = asEngineError(terr)
			}
			continue
		}
		if err != nil {
			s.err = err
			return zero, err
		}
		sig, perr := s.th.Push(in, s)
		if perr != nil {
			s.err = withLeafInput(perr, in)
			return zero, s.err
		}
		if sig == Stop {
			s.ended = true
		}
	}
	v := s.queue[0]
	s.queue = s.queue[1:]
	return v, nil
}
