package xmlstream

import (
	"context"
	"io"

	"github.com/dylemma/xml-stream/encoding"
	"github.com/dylemma/xml-stream/stream"
)

// SourceOption adjusts how a document is turned into an event stream.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	keepBlanks bool
	encoding   string
}

// WithoutBlanks drops whitespace-only character data from the stream.
func WithoutBlanks() SourceOption {
	return func(c *sourceConfig) { c.keepBlanks = false }
}

// WithEncoding decodes the input from the named charset before scanning,
// overriding whatever the XML declaration says.
func WithEncoding(name string) SourceOption {
	return func(c *sourceConfig) { c.encoding = name }
}

// NewSource turns document bytes into an event source for the stream
// drivers.
func NewSource(doc []byte, opts ...SourceOption) (stream.Source[Event], error) {
	cfg := sourceConfig{keepBlanks: true}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.encoding != "" {
		enc := encoding.Load(cfg.encoding)
		if enc == nil {
			return nil, ErrInvalidEncoding
		}
		decoded, err := enc.NewDecoder().Bytes(doc)
		if err != nil {
			return nil, err
		}
		doc = decoded
	}

	tk := NewTokenizer(doc)
	tk.keepBlanks = cfg.keepBlanks
	return tk, nil
}

// NewReaderSource reads the document fully and scans it. The engine is
// streaming over events, not bytes; the scanner wants the whole buffer
// for cursoring.
func NewReaderSource(r io.Reader, opts ...SourceOption) (stream.Source[Event], error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewSource(b, opts...)
}

// Parse runs a parser over an XML document.
func Parse[Out any](ctx context.Context, p stream.Parser[Event, Out], doc []byte, opts ...SourceOption) (Out, error) {
	src, err := NewSource(doc, opts...)
	if err != nil {
		var zero Out
		return zero, err
	}
	return stream.Parse(ctx, p, src)
}

// ParseString runs a parser over an XML document held in a string.
func ParseString[Out any](ctx context.Context, p stream.Parser[Event, Out], doc string, opts ...SourceOption) (Out, error) {
	return Parse(ctx, p, []byte(doc), opts...)
}

// ParseReader runs a parser over an XML document read from r.
func ParseReader[Out any](ctx context.Context, p stream.Parser[Event, Out], r io.Reader, opts ...SourceOption) (Out, error) {
	src, err := NewReaderSource(r, opts...)
	if err != nil {
		var zero Out
		return zero, err
	}
	return stream.Parse(ctx, p, src)
}
