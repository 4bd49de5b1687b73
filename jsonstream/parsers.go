package jsonstream

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/dylemma/xml-stream/stream"
)

// ErrValueMismatch reports a scalar of the wrong kind where a typed value
// parser was pointed.
type ErrValueMismatch struct {
	Want string
	Got  Event
}

func (e ErrValueMismatch) Error() string {
	return fmt.Sprintf("expected %s value, found %v", e.Want, e.Got)
}

type scalarParser[T any] struct {
	want    string
	extract func(Event) (T, bool)
}

func (p scalarParser[T]) Name() string { return p.want + "Value" }

func (p scalarParser[T]) NewHandler() stream.Handler[Event, T] {
	return &scalarHandler[T]{want: p.want, extract: p.extract}
}

// scalarHandler skips framing events and finishes on the first scalar,
// failing if it is not the kind the parser wants.
type scalarHandler[T any] struct {
	want    string
	extract func(Event) (T, bool)
	done    bool
}

func isScalar(in Event) bool {
	switch in.(type) {
	case Str, Num, Bool, Null:
		return true
	}
	return false
}

func (h *scalarHandler[T]) HandleInput(in Event) (T, bool, error) {
	var zero T
	if !isScalar(in) {
		return zero, false, nil
	}
	h.done = true
	v, ok := h.extract(in)
	if !ok {
		return zero, false, ErrValueMismatch{Want: h.want, Got: in}
	}
	return v, true, nil
}

func (h *scalarHandler[T]) HandleEnd() (T, error) {
	h.done = true
	var zero T
	return zero, &stream.MissingFirstError{}
}

func (h *scalarHandler[T]) HandleError(err error) (T, bool, error) {
	h.done = true
	var zero T
	return zero, false, err
}

func (h *scalarHandler[T]) Finished() bool { return h.done }

// StringValue yields the first scalar in the sub-stream, which must be a
// string.
func StringValue() stream.Parser[Event, string] {
	return scalarParser[string]{want: "string", extract: func(in Event) (string, bool) {
		s, ok := in.(Str)
		return s.Value, ok
	}}
}

// NumberValue yields the first scalar in the sub-stream, which must be a
// number.
func NumberValue() stream.Parser[Event, json.Number] {
	return scalarParser[json.Number]{want: "number", extract: func(in Event) (json.Number, bool) {
		n, ok := in.(Num)
		return n.Value, ok
	}}
}

// Float64Value is NumberValue converted to float64.
func Float64Value() stream.Parser[Event, float64] {
	return stream.Rethrow(stream.Map(NumberValue(), func(n json.Number) stream.Result[float64] {
		f, err := n.Float64()
		if err != nil {
			return stream.Failure[float64](err)
		}
		return stream.Ok(f)
	}))
}

// BoolValue yields the first scalar in the sub-stream, which must be a
// boolean.
func BoolValue() stream.Parser[Event, bool] {
	return scalarParser[bool]{want: "bool", extract: func(in Event) (bool, bool) {
		b, ok := in.(Bool)
		return b.Value, ok
	}}
}

// NullValue succeeds on a null scalar.
func NullValue() stream.Parser[Event, struct{}] {
	return scalarParser[struct{}]{want: "null", extract: func(in Event) (struct{}, bool) {
		_, ok := in.(Null)
		return struct{}{}, ok
	}}
}
