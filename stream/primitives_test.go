package stream_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dylemma/xml-stream/stream"
	"github.com/stretchr/testify/assert"
)

func TestFirst(t *testing.T) {
	v, err := stream.ParseSeq(context.Background(), stream.First[int](), []int{5, 6, 7})
	if !assert.NoError(t, err, "ParseSeq should succeed") {
		return
	}
	assert.Equal(t, 5, v, "First yields the first input")
}

func TestFirstEmpty(t *testing.T) {
	_, err := stream.ParseSeq(context.Background(), stream.First[int](), nil)
	if !assert.Error(t, err, "First on empty input should fail") {
		return
	}

	var mfe *stream.MissingFirstError
	assert.True(t, errors.As(err, &mfe), "error should be a MissingFirstError, got %T", err)
}

func TestFirstOption(t *testing.T) {
	v, err := stream.ParseSeq(context.Background(), stream.FirstOption[string](), []string{"a"})
	if !assert.NoError(t, err, "ParseSeq should succeed") {
		return
	}
	got, ok := v.Get()
	assert.True(t, ok, "option should be defined")
	assert.Equal(t, "a", got)

	v, err = stream.ParseSeq(context.Background(), stream.FirstOption[string](), nil)
	if !assert.NoError(t, err, "FirstOption tolerates empty input") {
		return
	}
	assert.False(t, v.IsDefined(), "option should be empty")
}

func TestToList(t *testing.T) {
	v, err := stream.ParseSeq(context.Background(), stream.ToList[int](), []int{1, 2, 3})
	if !assert.NoError(t, err, "ParseSeq should succeed") {
		return
	}
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestFold(t *testing.T) {
	sum := stream.Fold(0, func(acc, in int) int { return acc + in })
	v, err := stream.ParseSeq(context.Background(), sum, []int{1, 2, 3, 4})
	if !assert.NoError(t, err, "ParseSeq should succeed") {
		return
	}
	assert.Equal(t, 10, v)
}

func TestFoldPanicBecomesCaughtError(t *testing.T) {
	boom := stream.Fold(0, func(acc, in int) int {
		if in == 2 {
			panic("boom")
		}
		return acc + in
	})
	_, err := stream.ParseSeq(context.Background(), boom, []int{1, 2, 3})
	if !assert.Error(t, err, "panicking fold should fail the parse") {
		return
	}

	var ce *stream.CaughtError
	if !assert.True(t, errors.As(err, &ce), "error should be a CaughtError, got %T", err) {
		return
	}
	assert.Contains(t, ce.Cause.Error(), "boom")
}

func TestFoldErr(t *testing.T) {
	limited := stream.FoldErr(0, func(acc, in int) (int, error) {
		if acc+in > 5 {
			return 0, errors.New("too big")
		}
		return acc + in, nil
	})

	v, err := stream.ParseSeq(context.Background(), limited, []int{1, 2})
	if !assert.NoError(t, err, "small sums should succeed") {
		return
	}
	assert.Equal(t, 3, v)

	_, err = stream.ParseSeq(context.Background(), limited, []int{4, 4})
	assert.Error(t, err, "overflowing sums should fail")
}

func TestPureAndEval(t *testing.T) {
	v, err := stream.ParseSeq(context.Background(), stream.Pure[int]("hi"), []int{1, 2})
	if !assert.NoError(t, err, "Pure should succeed") {
		return
	}
	assert.Equal(t, "hi", v)

	v, err = stream.ParseSeq(context.Background(), stream.Pure[int]("hi"), nil)
	if !assert.NoError(t, err, "Pure should succeed on empty input too") {
		return
	}
	assert.Equal(t, "hi", v)

	calls := 0
	ev := stream.Eval[int](func() (string, error) {
		calls++
		return "there", nil
	})
	v, err = stream.ParseSeq(context.Background(), ev, nil)
	if !assert.NoError(t, err, "Eval should succeed") {
		return
	}
	assert.Equal(t, "there", v)
	assert.Equal(t, 1, calls, "the effect runs exactly once")

	evErr := stream.Eval[int](func() (string, error) {
		return "", errors.New("nope")
	})
	_, err = stream.ParseSeq(context.Background(), evErr, nil)
	assert.Error(t, err, "a failing effect fails the parse")
}

func TestParserReuse(t *testing.T) {
	p := stream.ToList[int]()
	v1, err1 := stream.ParseSeq(context.Background(), p, []int{1})
	v2, err2 := stream.ParseSeq(context.Background(), p, []int{2, 3})
	if !assert.NoError(t, err1) || !assert.NoError(t, err2) {
		return
	}
	assert.Equal(t, []int{1}, v1, "first parse unaffected by reuse")
	assert.Equal(t, []int{2, 3}, v2, "second parse gets a fresh handler")
}
