package xmlstream_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	xmlstream "github.com/dylemma/xml-stream"
	"github.com/dylemma/xml-stream/stream"
)

func TestBooklist(t *testing.T) {
	titles := stream.IntoList(stream.JoinParser(
		xmlstream.Split("library", "book"),
		xmlstream.Text(),
	))
	v, err := xmlstream.ParseString(context.Background(), titles,
		`<library><book>A</book><book>B</book></library>`)
	if !assert.NoError(t, err, "parse should succeed") {
		return
	}
	assert.Equal(t, []string{"A", "B"}, v)
}

func TestBooklistWithWhitespace(t *testing.T) {
	titles := stream.IntoList(stream.JoinParser(
		xmlstream.Split("library", "book"),
		xmlstream.TrimmedText(),
	))
	v, err := xmlstream.ParseString(context.Background(), titles, `
		<library>
			<book> A </book>
			<book>B</book>
		</library>`)
	if !assert.NoError(t, err, "parse should succeed") {
		return
	}
	assert.Equal(t, []string{"A", "B"}, v)
}

func TestAttrExtraction(t *testing.T) {
	ids := stream.IntoList(stream.JoinParser(
		xmlstream.Split("library", "book"),
		xmlstream.AttrParser("id"),
	))
	v, err := xmlstream.ParseString(context.Background(), ids,
		`<library><book id="b1">A</book><book id="b2">B</book></library>`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"b1", "b2"}, v)
}

func TestAttrMissingFails(t *testing.T) {
	ids := stream.IntoList(stream.JoinParser(
		xmlstream.Split("library", "book"),
		xmlstream.AttrParser("id"),
	))
	_, err := xmlstream.ParseString(context.Background(), ids,
		`<library><book>A</book></library>`)
	if !assert.Error(t, err, "a missing mandatory attribute should fail the parse") {
		return
	}
	var nf xmlstream.ErrAttrNotFound
	assert.True(t, errors.As(err, &nf), "expected ErrAttrNotFound, got %T: %v", err, err)
	assert.Equal(t, "id", nf.Name)
}

func TestAttrValueAsContext(t *testing.T) {
	// the matched context carries the attribute, and the joiner tags
	// each book's text with its id
	m := xmlstream.PathAttr("id", "library", "book")
	tagged := stream.IntoList(stream.Join(xmlstream.SplitMatcher(m), func(id string) stream.Parser[xmlstream.Event, string] {
		return stream.Map(xmlstream.TrimmedText(), func(text string) string {
			return id + "=" + text
		})
	}))
	v, err := xmlstream.ParseString(context.Background(), tagged,
		`<library><book id="b1">A</book><book id="b2">B</book></library>`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"b1=A", "b2=B"}, v)
}

func TestDeepPathIgnoresSiblings(t *testing.T) {
	names := stream.IntoList(stream.JoinParser(
		xmlstream.Split("blog", "post", "author"),
		xmlstream.TrimmedText(),
	))
	v, err := xmlstream.ParseString(context.Background(), names, `
		<blog>
			<title>not this</title>
			<post><author>alice</author><body>hi</body></post>
			<post><author>bob</author></post>
		</blog>`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"alice", "bob"}, v)
}

func TestNestedSameNameElements(t *testing.T) {
	// only the outer "item" matches "list" \ "item"; the nested item is
	// part of the outer sub-stream
	items := stream.IntoList(stream.JoinParser(
		xmlstream.Split("list", "item"),
		xmlstream.Text(),
	))
	v, err := xmlstream.ParseString(context.Background(), items,
		`<list><item>a<item>b</item>c</item></list>`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"abc"}, v)
}

func TestTupleOverSameStream(t *testing.T) {
	book := stream.Tuple2(xmlstream.AttrParser("id"), xmlstream.TrimmedText())
	p := stream.IntoList(stream.JoinParser(xmlstream.Split("library", "book"), book))
	v, err := xmlstream.ParseString(context.Background(), p,
		`<library><book id="b1">A</book></library>`)
	if !assert.NoError(t, err) {
		return
	}
	if !assert.Len(t, v, 1) {
		return
	}
	assert.Equal(t, "b1", v[0].First)
	assert.Equal(t, "A", v[0].Second)
}

func TestBeforeContextOverXML(t *testing.T) {
	// collect the preamble text that appears before the first chapter
	preamble := stream.BeforeContext(
		xmlstream.Stackable(),
		xmlstream.Path("book", "chapter"),
		stream.Into(stream.Collect(func(in xmlstream.Event) (string, bool) {
			cd, ok := in.(xmlstream.CharData)
			if !ok || cd.Whitespace {
				return "", false
			}
			return cd.Value, ok
		}), stream.ToList[string]()),
	)
	v, err := xmlstream.ParseString(context.Background(), preamble,
		`<book>intro<chapter>one</chapter></book>`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"intro"}, v)
}

func TestRootMatcher(t *testing.T) {
	whole := stream.IntoList(stream.JoinParser(
		xmlstream.SplitMatcher(xmlstream.Root()),
		xmlstream.TrimmedText(),
	))
	v, err := xmlstream.ParseString(context.Background(), whole, `<doc>hello</doc>`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"hello"}, v, "the root element is one sub-stream")

	// Root at the head of a sequence anchors the path explicitly
	m := stream.SeqWith(xmlstream.Root(), xmlstream.Tag("book"),
		func(_ xmlstream.StartElement, b xmlstream.StartElement) xmlstream.StartElement { return b })
	titles := stream.IntoList(stream.JoinParser(xmlstream.SplitMatcher(m), xmlstream.Text()))
	v, err = xmlstream.ParseString(context.Background(), titles,
		`<library><book>A</book><book>B</book></library>`)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"A", "B"}, v)
}

func TestMatcherDescriptions(t *testing.T) {
	m := xmlstream.Path("library", "book")
	assert.Equal(t, `"library" \ "book"`, m.String())

	sp := xmlstream.Split("library", "book")
	assert.Equal(t, `Splitter("library" \ "book")`, sp.Name())
}

func TestFailureCarriesInputContext(t *testing.T) {
	ids := stream.IntoList(stream.JoinParser(
		xmlstream.Split("library", "book"),
		xmlstream.AttrParser("id"),
	))
	_, err := xmlstream.ParseString(context.Background(), ids,
		"<library>\n  <book>A</book>\n</library>")
	if !assert.Error(t, err) {
		return
	}

	var traced stream.Traced
	if !assert.True(t, errors.As(err, &traced)) {
		return
	}
	elems := traced.TraceElements()
	leaf, ok := elems[len(elems)-1].(stream.InInputContext)
	if !assert.True(t, ok, "XML events carry locations, so the leaf is an InInputContext, got %T", elems[len(elems)-1]) {
		return
	}
	assert.Equal(t, 2, leaf.Loc.Line, "the failing <book> sits on line two")
}
