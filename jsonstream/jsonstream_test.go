package jsonstream_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dylemma/xml-stream/jsonstream"
	"github.com/dylemma/xml-stream/stream"
)

func collectEvents(t *testing.T, doc string) []jsonstream.Event {
	t.Helper()
	src := jsonstream.NewSource([]byte(doc))
	var evs []jsonstream.Event
	for {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			return evs
		}
		require.NoError(t, err, "tokenizer should accept the document")
		evs = append(evs, stripLoc(ev))
	}
}

func stripLoc(ev jsonstream.Event) jsonstream.Event {
	switch e := ev.(type) {
	case jsonstream.ObjectStart:
		return jsonstream.ObjectStart{}
	case jsonstream.ObjectEnd:
		return jsonstream.ObjectEnd{}
	case jsonstream.ArrayStart:
		return jsonstream.ArrayStart{}
	case jsonstream.ArrayEnd:
		return jsonstream.ArrayEnd{}
	case jsonstream.FieldStart:
		return jsonstream.FieldStart{Name: e.Name}
	case jsonstream.FieldEnd:
		return jsonstream.FieldEnd{}
	case jsonstream.IndexStart:
		return jsonstream.IndexStart{Index: e.Index}
	case jsonstream.IndexEnd:
		return jsonstream.IndexEnd{Index: e.Index}
	case jsonstream.Str:
		return jsonstream.Str{Value: e.Value}
	case jsonstream.Num:
		return jsonstream.Num{Value: e.Value}
	case jsonstream.Bool:
		return jsonstream.Bool{Value: e.Value}
	case jsonstream.Null:
		return jsonstream.Null{}
	}
	return ev
}

func TestTokenizerFraming(t *testing.T) {
	got := collectEvents(t, `{"a": [1, "x"], "b": true}`)
	want := []jsonstream.Event{
		jsonstream.ObjectStart{},
		jsonstream.FieldStart{Name: "a"},
		jsonstream.ArrayStart{},
		jsonstream.IndexStart{Index: 0},
		jsonstream.Num{Value: json.Number("1")},
		jsonstream.IndexEnd{Index: 0},
		jsonstream.IndexStart{Index: 1},
		jsonstream.Str{Value: "x"},
		jsonstream.IndexEnd{Index: 1},
		jsonstream.ArrayEnd{},
		jsonstream.FieldEnd{},
		jsonstream.FieldStart{Name: "b"},
		jsonstream.Bool{Value: true},
		jsonstream.FieldEnd{},
		jsonstream.ObjectEnd{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event stream mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizerNestedContainers(t *testing.T) {
	got := collectEvents(t, `[{"k": null}]`)
	want := []jsonstream.Event{
		jsonstream.ArrayStart{},
		jsonstream.IndexStart{Index: 0},
		jsonstream.ObjectStart{},
		jsonstream.FieldStart{Name: "k"},
		jsonstream.Null{},
		jsonstream.FieldEnd{},
		jsonstream.ObjectEnd{},
		jsonstream.IndexEnd{Index: 0},
		jsonstream.ArrayEnd{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("event stream mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldSplit(t *testing.T) {
	titles := stream.IntoList(stream.JoinParser(
		jsonstream.Split("blog", "title"),
		jsonstream.StringValue(),
	))
	v, err := jsonstream.Parse(context.Background(), titles,
		[]byte(`{"blog": {"title": "Hello", "author": {"name": "Bob"}}}`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"Hello"}, v)
}

func TestArrayElements(t *testing.T) {
	m := stream.SeqWith(jsonstream.InArray(), jsonstream.AnyIndex(),
		func(jsonstream.Frame, int) int { return 0 })
	elems := stream.IntoList(stream.JoinParser(
		jsonstream.SplitMatcher(m),
		jsonstream.StringValue(),
	))
	v, err := jsonstream.Parse(context.Background(), elems, []byte(`["x", "y", "z"]`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"x", "y", "z"}, v)
}

func TestFieldOfArrayObjects(t *testing.T) {
	// the "name" field of each object element of the "users" array
	m := stream.SeqWith(
		stream.SeqWith(jsonstream.Path("users"), jsonstream.InArray(),
			func(f jsonstream.Frame, _ jsonstream.Frame) jsonstream.Frame { return f }),
		stream.SeqWith(jsonstream.AnyIndex(), jsonstream.Path("name"),
			func(_ int, f jsonstream.Frame) jsonstream.Frame { return f }),
		func(_ jsonstream.Frame, f jsonstream.Frame) jsonstream.Frame { return f },
	)
	names := stream.IntoList(stream.JoinParser(
		jsonstream.SplitMatcher(m),
		jsonstream.StringValue(),
	))
	v, err := jsonstream.Parse(context.Background(), names,
		[]byte(`{"users": [{"name": "alice", "age": 1}, {"name": "bob"}]}`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"alice", "bob"}, v)
}

func TestTypedValues(t *testing.T) {
	n, err := jsonstream.Parse(context.Background(),
		stream.Into(stream.Filter(func(jsonstream.Event) bool { return true }), jsonstream.NumberValue()),
		[]byte(`42.5`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, json.Number("42.5"), n)

	f, err := jsonstream.Parse(context.Background(), jsonstream.Float64Value(), []byte(`42.5`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 42.5, f)

	b, err := jsonstream.Parse(context.Background(), jsonstream.BoolValue(), []byte(`true`))
	if !assert.NoError(t, err) {
		return
	}
	assert.True(t, b)
}

func TestValueMismatch(t *testing.T) {
	_, err := jsonstream.Parse(context.Background(), jsonstream.StringValue(), []byte(`42`))
	if !assert.Error(t, err, "a number is not a string") {
		return
	}
	var vm jsonstream.ErrValueMismatch
	assert.True(t, errors.As(err, &vm), "expected ErrValueMismatch, got %T: %v", err, err)
	assert.Equal(t, "string", vm.Want)
}

func TestAnyFieldYieldsNames(t *testing.T) {
	m := stream.SeqWith(jsonstream.InObject(), jsonstream.AnyField(),
		func(_ jsonstream.Frame, name string) string { return name })
	pairs := stream.IntoList(stream.Join(jsonstream.SplitMatcher(m),
		func(name string) stream.Parser[jsonstream.Event, string] {
			return stream.Map(jsonstream.StringValue(), func(v string) string {
				return name + "=" + v
			})
		}))
	v, err := jsonstream.Parse(context.Background(), pairs, []byte(`{"a": "1", "b": "2"}`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"a=1", "b=2"}, v)
}
