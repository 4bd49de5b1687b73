package jsonstream

import (
	"bytes"
	"context"
	"io"

	"github.com/goccy/go-json"

	"github.com/dylemma/xml-stream/stream"
)

type tframe struct {
	kind      FrameKind
	idx       int
	fieldOpen bool
}

// Tokenizer turns a JSON document into the event stream, synthesizing the
// FieldStart/FieldEnd and IndexStart/IndexEnd framing events the context
// stack is built from. Numbers are preserved verbatim as json.Number.
type Tokenizer struct {
	dec    *json.Decoder
	queue  []Event
	frames []tframe
}

// NewTokenizer scans the JSON document read from r.
func NewTokenizer(r io.Reader) *Tokenizer {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Tokenizer{dec: dec}
}

func (tk *Tokenizer) loc() stream.Location {
	return stream.Location{Offset: int(tk.dec.InputOffset())}
}

func (tk *Tokenizer) top() *tframe {
	if len(tk.frames) == 0 {
		return nil
	}
	return &tk.frames[len(tk.frames)-1]
}

// beginValue queues the IndexStart framing event if a value is about to
// appear in array position.
func (tk *Tokenizer) beginValue(loc stream.Location) {
	if t := tk.top(); t != nil && t.kind == InArrayFrame {
		tk.queue = append(tk.queue, IndexStart{Index: t.idx, Loc: loc})
	}
}

// endValue closes the framing around a completed value: FieldEnd in
// object position, IndexEnd in array position.
func (tk *Tokenizer) endValue(loc stream.Location) {
	t := tk.top()
	if t == nil {
		return
	}
	switch {
	case t.kind == InArrayFrame:
		tk.queue = append(tk.queue, IndexEnd{Index: t.idx, Loc: loc})
		t.idx++
	case t.kind == InObjectFrame && t.fieldOpen:
		tk.queue = append(tk.queue, FieldEnd{Loc: loc})
		t.fieldOpen = false
	}
}

// Next returns the next event, or io.EOF once the document is exhausted.
func (tk *Tokenizer) Next() (Event, error) {
	for len(tk.queue) == 0 {
		tok, err := tk.dec.Token()
		if err != nil {
			return nil, err
		}
		loc := tk.loc()

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{':
				tk.beginValue(loc)
				tk.queue = append(tk.queue, ObjectStart{Loc: loc})
				tk.frames = append(tk.frames, tframe{kind: InObjectFrame})
			case '[':
				tk.beginValue(loc)
				tk.queue = append(tk.queue, ArrayStart{Loc: loc})
				tk.frames = append(tk.frames, tframe{kind: InArrayFrame})
			case '}':
				tk.queue = append(tk.queue, ObjectEnd{Loc: loc})
				tk.frames = tk.frames[:len(tk.frames)-1]
				tk.endValue(loc)
			case ']':
				tk.queue = append(tk.queue, ArrayEnd{Loc: loc})
				tk.frames = tk.frames[:len(tk.frames)-1]
				tk.endValue(loc)
			}
		case string:
			if f := tk.top(); f != nil && f.kind == InObjectFrame && !f.fieldOpen {
				f.fieldOpen = true
				tk.queue = append(tk.queue, FieldStart{Name: t, Loc: loc})
				break
			}
			tk.beginValue(loc)
			tk.queue = append(tk.queue, Str{Value: t, Loc: loc})
			tk.endValue(loc)
		case json.Number:
			tk.beginValue(loc)
			tk.queue = append(tk.queue, Num{Value: t, Loc: loc})
			tk.endValue(loc)
		case bool:
			tk.beginValue(loc)
			tk.queue = append(tk.queue, Bool{Value: t, Loc: loc})
			tk.endValue(loc)
		case nil:
			tk.beginValue(loc)
			tk.queue = append(tk.queue, Null{Loc: loc})
			tk.endValue(loc)
		}
	}

	ev := tk.queue[0]
	tk.queue = tk.queue[1:]
	return ev, nil
}

// NewSource turns JSON bytes into an event source for the stream drivers.
func NewSource(doc []byte) stream.Source[Event] {
	return NewTokenizer(bytes.NewReader(doc))
}

// NewReaderSource scans the JSON document read from r.
func NewReaderSource(r io.Reader) stream.Source[Event] {
	return NewTokenizer(r)
}

// Parse runs a parser over a JSON document.
func Parse[Out any](ctx context.Context, p stream.Parser[Event, Out], doc []byte) (Out, error) {
	return stream.Parse(ctx, p, NewSource(doc))
}

// ParseReader runs a parser over a JSON document read from r.
func ParseReader[Out any](ctx context.Context, p stream.Parser[Event, Out], r io.Reader) (Out, error) {
	return stream.Parse(ctx, p, NewTokenizer(r))
}
