package jsonstream

import (
	"strconv"

	"github.com/dylemma/xml-stream/stream"
)

// InObject matches the anonymous object frame itself.
func InObject() stream.ContextMatcher[Frame, Frame] {
	return stream.MatchPred("{}", func(f Frame) bool {
		return f.Kind == InObjectFrame
	})
}

// InArray matches the anonymous array frame itself.
func InArray() stream.ContextMatcher[Frame, Frame] {
	return stream.MatchPred("[]", func(f Frame) bool {
		return f.Kind == InArrayFrame
	})
}

// Field matches an open object field by name.
func Field(name string) stream.ContextMatcher[Frame, Frame] {
	return stream.MatchPred(strconv.Quote(name), func(f Frame) bool {
		return f.Kind == InFieldFrame && f.Field == name
	})
}

// AnyField matches any open object field, yielding its name.
func AnyField() stream.ContextMatcher[Frame, string] {
	return stream.MatchOne("anyField", func(f Frame) (string, bool) {
		return f.Field, f.Kind == InFieldFrame
	})
}

// Index matches the i-th open array element.
func Index(i int) stream.ContextMatcher[Frame, Frame] {
	return stream.MatchPred("["+strconv.Itoa(i)+"]", func(f Frame) bool {
		return f.Kind == InIndexFrame && f.Index == i
	})
}

// AnyIndex matches any open array element, yielding its index.
func AnyIndex() stream.ContextMatcher[Frame, int] {
	return stream.MatchOne("anyIndex", func(f Frame) (int, bool) {
		return f.Index, f.Kind == InIndexFrame
	})
}

// Path matches nested object fields by name, descending through the
// object frames that carry them: Path("a", "b") matches inside the value
// at {"a": {"b": ...}}.
func Path(fields ...string) stream.ContextMatcher[Frame, Frame] {
	if len(fields) == 0 {
		return InObject()
	}
	m := fieldInObject(fields[0])
	for _, f := range fields[1:] {
		m = stream.SeqWith(m, fieldInObject(f), keepRight[Frame, Frame])
	}
	return m
}

// fieldInObject consumes an object frame and then the named field frame.
func fieldInObject(name string) stream.ContextMatcher[Frame, Frame] {
	return stream.SeqWith(InObject(), Field(name), keepRight[Frame, Frame])
}

func keepRight[A, B any](_ A, b B) B { return b }

// Split builds a splitter over nested field names.
func Split(fields ...string) *stream.ContextSplitter[Event, Frame, Frame] {
	return stream.NewSplitter[Event](Stackable(), Path(fields...))
}

// SplitMatcher builds a splitter from an arbitrary matcher over JSON
// context frames.
func SplitMatcher[C any](m stream.ContextMatcher[Frame, C]) *stream.ContextSplitter[Event, Frame, C] {
	return stream.NewSplitter[Event](Stackable(), m)
}
