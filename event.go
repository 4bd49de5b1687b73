// Package xmlstream instantiates the streaming combinator engine for XML:
// an event model produced by a pull tokenizer, a stack strategy that turns
// element nesting into a context stack, and a matcher DSL for describing
// paths like "library" \ "book".
package xmlstream

import (
	"fmt"
	"strings"

	"github.com/dylemma/xml-stream/stream"
)

// Name is an XML qualified name, split at the colon. Prefix is empty for
// unprefixed names.
type Name struct {
	Prefix string
	Local  string
}

func (n Name) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

func splitName(raw string) Name {
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		return Name{Prefix: raw[:i], Local: raw[i+1:]}
	}
	return Name{Local: raw}
}

// Attr is one attribute of a start-element event.
type Attr struct {
	Name  Name
	Value string
}

// Event is one XML token. The concrete types are StartElement, EndElement,
// CharData, Comment and ProcInst. Events are immutable values.
type Event interface {
	stream.Located
	xmlEvent()
}

// StartElement opens an element. It doubles as the context-stack frame
// type: matchers inspect the name and attributes of the open elements.
type StartElement struct {
	Name  Name
	Attrs []Attr
	Loc   stream.Location
}

func (StartElement) xmlEvent() {}

func (e StartElement) Location() stream.Location { return e.Loc }

// Attr returns the value of the named attribute, matching on the local
// name.
func (e StartElement) Attr(local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func (e StartElement) String() string {
	return fmt.Sprintf("<%s>", e.Name)
}

// EndElement closes an element.
type EndElement struct {
	Name Name
	Loc  stream.Location
}

func (EndElement) xmlEvent() {}

func (e EndElement) Location() stream.Location { return e.Loc }

func (e EndElement) String() string {
	return fmt.Sprintf("</%s>", e.Name)
}

// CharData is a run of character data. Whitespace marks runs that contain
// nothing but blanks, which text parsers may want to skip.
type CharData struct {
	Value      string
	Whitespace bool
	Loc        stream.Location
}

func (CharData) xmlEvent() {}

func (e CharData) Location() stream.Location { return e.Loc }

func (e CharData) String() string {
	v := e.Value
	if len(v) > 30 {
		v = v[:30] + "..."
	}
	return fmt.Sprintf("text %q", v)
}

// Comment is an XML comment. It never affects the context stack.
type Comment struct {
	Value string
	Loc   stream.Location
}

func (Comment) xmlEvent() {}

func (e Comment) Location() stream.Location { return e.Loc }

func (e Comment) String() string { return "<!--...-->" }

// ProcInst is a processing instruction. It never affects the context
// stack.
type ProcInst struct {
	Target string
	Data   string
	Loc    stream.Location
}

func (ProcInst) xmlEvent() {}

func (e ProcInst) Location() stream.Location { return e.Loc }

func (e ProcInst) String() string { return "<?" + e.Target + "?>" }

// Stackable is the XML stack strategy: a start tag pushes its element
// before the event is delivered (so the opening tag belongs to the child
// sub-stream), an end tag pops after the event (so the closing tag still
// belongs to the sub-stream it closes).
func Stackable() stream.Stackable[Event, StartElement] {
	return stream.StackableFunc[Event, StartElement](func(in Event) stream.StackInterp[StartElement] {
		switch e := in.(type) {
		case StartElement:
			return stream.PushBeforeInput(e)
		case EndElement:
			return stream.PopAfterInput[StartElement]()
		default:
			return stream.NoStackChange[StartElement]()
		}
	})
}
