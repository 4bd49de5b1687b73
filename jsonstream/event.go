// Package jsonstream instantiates the streaming combinator engine for
// JSON. The token source wraps a goccy/go-json decoder and adds framing
// events around object fields and array elements, so that the context
// stack can address values by path the way the XML side addresses
// elements.
package jsonstream

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/dylemma/xml-stream/stream"
)

// Event is one JSON token, framing events included. Concrete types:
// ObjectStart/ObjectEnd, ArrayStart/ArrayEnd, FieldStart/FieldEnd,
// IndexStart/IndexEnd, and the scalars Str, Num, Bool and Null.
type Event interface {
	stream.Located
	jsonEvent()
}

type ObjectStart struct{ Loc stream.Location }

func (ObjectStart) jsonEvent() {}

func (e ObjectStart) Location() stream.Location { return e.Loc }

func (ObjectStart) String() string { return "{" }

type ObjectEnd struct{ Loc stream.Location }

func (ObjectEnd) jsonEvent() {}

func (e ObjectEnd) Location() stream.Location { return e.Loc }

func (ObjectEnd) String() string { return "}" }

type ArrayStart struct{ Loc stream.Location }

func (ArrayStart) jsonEvent() {}

func (e ArrayStart) Location() stream.Location { return e.Loc }

func (ArrayStart) String() string { return "[" }

type ArrayEnd struct{ Loc stream.Location }

func (ArrayEnd) jsonEvent() {}

func (e ArrayEnd) Location() stream.Location { return e.Loc }

func (ArrayEnd) String() string { return "]" }

// FieldStart opens an object field; every event up to the matching
// FieldEnd belongs to that field's value.
type FieldStart struct {
	Name string
	Loc  stream.Location
}

func (FieldStart) jsonEvent() {}

func (e FieldStart) Location() stream.Location { return e.Loc }

func (e FieldStart) String() string { return "field " + strconv.Quote(e.Name) }

type FieldEnd struct{ Loc stream.Location }

func (FieldEnd) jsonEvent() {}

func (e FieldEnd) Location() stream.Location { return e.Loc }

func (FieldEnd) String() string { return "end field" }

// IndexStart opens the i-th element of an array.
type IndexStart struct {
	Index int
	Loc   stream.Location
}

func (IndexStart) jsonEvent() {}

func (e IndexStart) Location() stream.Location { return e.Loc }

func (e IndexStart) String() string { return fmt.Sprintf("index %d", e.Index) }

type IndexEnd struct {
	Index int
	Loc   stream.Location
}

func (IndexEnd) jsonEvent() {}

func (e IndexEnd) Location() stream.Location { return e.Loc }

func (e IndexEnd) String() string { return fmt.Sprintf("end index %d", e.Index) }

type Str struct {
	Value string
	Loc   stream.Location
}

func (Str) jsonEvent() {}

func (e Str) Location() stream.Location { return e.Loc }

func (e Str) String() string { return strconv.Quote(e.Value) }

type Num struct {
	Value json.Number
	Loc   stream.Location
}

func (Num) jsonEvent() {}

func (e Num) Location() stream.Location { return e.Loc }

func (e Num) String() string { return e.Value.String() }

type Bool struct {
	Value bool
	Loc   stream.Location
}

func (Bool) jsonEvent() {}

func (e Bool) Location() stream.Location { return e.Loc }

func (e Bool) String() string { return strconv.FormatBool(e.Value) }

type Null struct{ Loc stream.Location }

func (Null) jsonEvent() {}

func (e Null) Location() stream.Location { return e.Loc }

func (Null) String() string { return "null" }

// FrameKind discriminates context-stack frames.
type FrameKind int

const (
	InObjectFrame FrameKind = iota
	InArrayFrame
	InFieldFrame
	InIndexFrame
)

// Frame is one open scope on the JSON context stack: an object, an array,
// a named field, or an array index.
type Frame struct {
	Kind  FrameKind
	Field string
	Index int
}

func (f Frame) String() string {
	switch f.Kind {
	case InObjectFrame:
		return "{}"
	case InArrayFrame:
		return "[]"
	case InFieldFrame:
		return strconv.Quote(f.Field)
	default:
		return "[" + strconv.Itoa(f.Index) + "]"
	}
}

// Stackable is the JSON stack strategy: the four Start events push their
// frame before the event is delivered, the four End events pop after it.
func Stackable() stream.Stackable[Event, Frame] {
	return stream.StackableFunc[Event, Frame](func(in Event) stream.StackInterp[Frame] {
		switch e := in.(type) {
		case ObjectStart:
			return stream.PushBeforeInput(Frame{Kind: InObjectFrame})
		case ArrayStart:
			return stream.PushBeforeInput(Frame{Kind: InArrayFrame})
		case FieldStart:
			return stream.PushBeforeInput(Frame{Kind: InFieldFrame, Field: e.Name})
		case IndexStart:
			return stream.PushBeforeInput(Frame{Kind: InIndexFrame, Index: e.Index})
		case ObjectEnd, ArrayEnd, FieldEnd, IndexEnd:
			return stream.PopAfterInput[Frame]()
		default:
			return stream.NoStackChange[Frame]()
		}
	})
}
