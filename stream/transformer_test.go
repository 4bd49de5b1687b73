package stream_test

import (
	"context"
	"io"
	"testing"

	"github.com/dylemma/xml-stream/stream"
	"github.com/stretchr/testify/assert"
)

func TestMapEachAndFilter(t *testing.T) {
	tr := stream.Through(
		stream.Filter(func(in int) bool { return in%2 == 0 }),
		stream.MapEach(func(in int) int { return in * 10 }),
	)
	v, err := stream.TransformSlice(tr, []int{1, 2, 3, 4})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []int{20, 40}, v)
}

func TestMapFlatten(t *testing.T) {
	tr := stream.MapFlatten(func(in int) []int { return []int{in, in} })
	v, err := stream.TransformSlice(tr, []int{1, 2})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []int{1, 1, 2, 2}, v)
}

func TestCollect(t *testing.T) {
	tr := stream.Collect(func(in int) (string, bool) {
		if in < 0 {
			return "", false
		}
		return string(rune('a' + in)), true
	})
	v, err := stream.TransformSlice(tr, []int{0, -1, 2})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []string{"a", "c"}, v)
}

func TestTakeStopsUpstream(t *testing.T) {
	pulls := 0
	tr := stream.Through(
		stream.Tap(func(int) { pulls++ }),
		stream.Take[int](2),
	)
	src := stream.TransformSource(tr, stream.SliceSource([]int{1, 2, 3, 4, 5}))

	var got []int
	for {
		v, err := src.Next()
		if err == io.EOF {
			break
		}
		if !assert.NoError(t, err) {
			return
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 2, pulls, "upstream stops being consulted once Take is satisfied")
}

func TestDropAndWhiles(t *testing.T) {
	v, err := stream.TransformSlice(stream.Drop[int](2), []int{1, 2, 3, 4})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []int{3, 4}, v)

	v, err = stream.TransformSlice(stream.TakeWhile(func(in int) bool { return in < 3 }), []int{1, 2, 3, 1})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []int{1, 2}, v, "the failing input is discarded and the stream stops")

	v, err = stream.TransformSlice(stream.DropWhile(func(in int) bool { return in < 3 }), []int{1, 2, 3, 1})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []int{3, 1}, v, "the failing input and everything after passes through")
}

func TestScan(t *testing.T) {
	v, err := stream.TransformSlice(stream.Scan(0, func(acc, in int) int { return acc + in }), []int{1, 2, 3})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []int{1, 3, 6}, v)
}

func TestIntoFinishesWithParser(t *testing.T) {
	p := stream.Into(stream.Filter(func(in int) bool { return in > 10 }), stream.First[int]())
	v, err := stream.ParseSeq(context.Background(), p, []int{1, 20, 3})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 20, v)
}

func TestIntoFinishesWhenTransformerStops(t *testing.T) {
	p := stream.Into(stream.Take[int](2), stream.ToList[int]())
	v, err := stream.ParseSeq(context.Background(), p, []int{1, 2, 3, 4})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []int{1, 2}, v, "a stopped transformer ends the inner parser's stream")
}

func TestTransformerPreservesOrder(t *testing.T) {
	tr := stream.MapEach(func(in int) int { return in })
	v, err := stream.TransformSlice(tr, []int{3, 1, 2})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []int{3, 1, 2}, v)
}
