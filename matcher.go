package xmlstream

import (
	"strconv"

	"github.com/dylemma/xml-stream/stream"
)

// Tag matches one open element by local name, yielding its start event.
func Tag(local string) stream.ContextMatcher[StartElement, StartElement] {
	return stream.MatchPred(strconv.Quote(local), func(e StartElement) bool {
		return e.Name.Local == local
	})
}

// TagName matches one open element by qualified name.
func TagName(n Name) stream.ContextMatcher[StartElement, StartElement] {
	return stream.MatchPred(strconv.Quote(n.String()), func(e StartElement) bool {
		return e.Name == n
	})
}

// AnyElem matches any single open element, yielding its start event.
func AnyElem() stream.ContextMatcher[StartElement, StartElement] {
	return stream.MatchAny[StartElement]()
}

// Root matches the document's root element, yielding its start event.
// Matchers consume the stack bottom-first, so the frame Root consumes is
// the one pushed at depth zero; it only makes sense at the head of a
// sequence.
func Root() stream.ContextMatcher[StartElement, StartElement] {
	return stream.MatchPred("root", func(StartElement) bool { return true })
}

// AttrValue matches one open element that carries the named attribute,
// yielding the attribute's value as the context.
func AttrValue(local string) stream.ContextMatcher[StartElement, string] {
	return stream.MatchOne("attr("+local+")", func(e StartElement) (string, bool) {
		return e.Attr(local)
	})
}

// Path matches a chain of nested elements by local name, yielding the
// innermost start event. Path("library", "book") is the DSL spelling of
// "library" \ "book".
func Path(locals ...string) stream.ContextMatcher[StartElement, StartElement] {
	if len(locals) == 0 {
		return AnyElem()
	}
	m := Tag(locals[0])
	for _, l := range locals[1:] {
		m = stream.SeqWith(m, Tag(l), keepRight[StartElement, StartElement])
	}
	return m
}

// PathAttr is Path with an attribute extraction on the innermost element:
// the matched context is the attribute's value.
func PathAttr(attr string, locals ...string) stream.ContextMatcher[StartElement, string] {
	if len(locals) == 0 {
		return AttrValue(attr)
	}
	last := tagWithAttr(locals[len(locals)-1], attr)
	if len(locals) == 1 {
		return last
	}
	return stream.SeqWith(Path(locals[:len(locals)-1]...), last, keepRight[StartElement, string])
}

// tagWithAttr matches one open element by local name, requiring and
// yielding the named attribute.
func tagWithAttr(local, attr string) stream.ContextMatcher[StartElement, string] {
	return stream.MatchOne(strconv.Quote(local)+"[@"+attr+"]", func(e StartElement) (string, bool) {
		if e.Name.Local != local {
			return "", false
		}
		return e.Attr(attr)
	})
}

func keepRight[A, B any](_ A, b B) B { return b }

// Split builds a splitter over the given element path. Each time the path
// is newly satisfied, a fresh sub-parser consumes the events of that
// element.
func Split(locals ...string) *stream.ContextSplitter[Event, StartElement, StartElement] {
	return stream.NewSplitter[Event](Stackable(), Path(locals...))
}

// SplitMatcher builds a splitter from an arbitrary matcher over open
// elements.
func SplitMatcher[C any](m stream.ContextMatcher[StartElement, C]) *stream.ContextSplitter[Event, StartElement, C] {
	return stream.NewSplitter[Event](Stackable(), m)
}
