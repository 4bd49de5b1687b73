package xmlstream

import (
	"strings"

	"github.com/dylemma/xml-stream/stream"
)

// ErrAttrNotFound reports a mandatory attribute missing from the element
// an attribute parser was pointed at.
type ErrAttrNotFound struct {
	Name string
}

func (e ErrAttrNotFound) Error() string {
	return "attribute '" + e.Name + "' not found"
}

type textParser struct{}

// Text concatenates every run of character data in the sub-stream,
// including whitespace-only runs between elements.
func Text() stream.Parser[Event, string] {
	return textParser{}
}

func (textParser) Name() string { return "Text" }

func (textParser) NewHandler() stream.Handler[Event, string] {
	return &textHandler{}
}

type textHandler struct {
	sb   strings.Builder
	done bool
}

func (h *textHandler) HandleInput(in Event) (string, bool, error) {
	if cd, ok := in.(CharData); ok {
		h.sb.WriteString(cd.Value)
	}
	return "", false, nil
}

func (h *textHandler) HandleEnd() (string, error) {
	h.done = true
	return h.sb.String(), nil
}

func (h *textHandler) HandleError(err error) (string, bool, error) {
	h.done = true
	return "", false, err
}

func (h *textHandler) Finished() bool { return h.done }

// TrimmedText is Text with surrounding whitespace removed.
func TrimmedText() stream.Parser[Event, string] {
	return stream.Map(Text(), strings.TrimSpace)
}

type attrParser struct {
	name string
}

// AttrParser yields the named attribute of the first start element in the
// sub-stream. The attribute being absent fails the parse; an empty
// sub-stream is a MissingFirstError.
func AttrParser(name string) stream.Parser[Event, string] {
	return attrParser{name: name}
}

func (p attrParser) Name() string { return "Attr(" + p.name + ")" }

func (p attrParser) NewHandler() stream.Handler[Event, string] {
	return &attrHandler{name: p.name}
}

type attrHandler struct {
	name string
	done bool
}

func (h *attrHandler) HandleInput(in Event) (string, bool, error) {
	se, ok := in.(StartElement)
	if !ok {
		return "", false, nil
	}
	h.done = true
	v, found := se.Attr(h.name)
	if !found {
		return "", false, ErrAttrNotFound{Name: h.name}
	}
	return v, true, nil
}

func (h *attrHandler) HandleEnd() (string, error) {
	h.done = true
	return "", &stream.MissingFirstError{}
}

func (h *attrHandler) HandleError(err error) (string, bool, error) {
	h.done = true
	return "", false, err
}

func (h *attrHandler) Finished() bool { return h.done }

// SplitText is the common "text at a path" shape: one trimmed-text result
// per element matched by the path.
func SplitText(locals ...string) stream.Transformer[Event, string] {
	return stream.JoinParser(Split(locals...), TrimmedText())
}
