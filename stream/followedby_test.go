package stream_test

import (
	"context"
	"testing"

	"github.com/dylemma/xml-stream/stream"
	"github.com/stretchr/testify/assert"
)

// tensStackable pushes on positive multiples of ten and pops on
// negatives.
func tensStackable() stream.Stackable[int, int] {
	return stream.StackableFunc[int, int](func(in int) stream.StackInterp[int] {
		switch {
		case in > 0 && in%10 == 0:
			return stream.PushBeforeInput(in)
		case in < 0:
			return stream.PopAfterInput[int]()
		default:
			return stream.NoStackChange[int]()
		}
	})
}

func TestFollowedByReplaysOpenStack(t *testing.T) {
	p := stream.FollowedBy(tensStackable(), finishOn(42), func(int) stream.Parser[int, []int] {
		return stream.ToList[int]()
	})

	in := []int{10, 20, -20, -10, 10, 11, 20, 21, 30, 31, 40, -40, 42, 1, 2, 3}
	v, err := stream.ParseSeq(context.Background(), p, in)
	if !assert.NoError(t, err, "ParseSeq should succeed") {
		return
	}
	// the follow-up sees the events whose pushes were still live when
	// the first parser finished (10, 20, 30), then the live remainder
	assert.Equal(t, []int{10, 20, 30, 1, 2, 3}, v)
}

func TestFollowedByResultPicksFollowUp(t *testing.T) {
	p := stream.FollowedBy(tensStackable(), stream.First[int](), func(first int) stream.Parser[int, int] {
		return stream.Map(stream.ToList[int](), func(rest []int) int {
			return first + len(rest)
		})
	})
	v, err := stream.ParseSeq(context.Background(), p, []int{5, 1, 2, 3})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 8, v, "the first result parameterizes the follow-up")
}

func TestFollowedByFirstFinishesAtEnd(t *testing.T) {
	// the first parser only finishes at end of input, with an empty
	// stack: the follow-up is finalized immediately
	p := stream.FollowedBy(tensStackable(), stream.ToList[int](), func(all []int) stream.Parser[int, int] {
		return stream.Map(stream.ToList[int](), func(rest []int) int {
			return len(all)*100 + len(rest)
		})
	})
	v, err := stream.ParseSeq(context.Background(), p, []int{1, 2, 3})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 300, v, "the follow-up saw three replayed-nothing and an immediate end")
}

func TestFollowedByFollowUpFinishesDuringReplay(t *testing.T) {
	p := stream.FollowedBy(tensStackable(), finishOn(42), func(int) stream.Parser[int, int] {
		return stream.First[int]()
	})
	v, err := stream.ParseSeq(context.Background(), p, []int{10, 42, 1, 2})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 10, v, "the replayed opening event satisfies the follow-up; the live stream is discarded")
}

func TestFollowedByStream(t *testing.T) {
	tr := stream.FollowedByStream(tensStackable(), finishOn(42), func(int) stream.Transformer[int, int] {
		return stream.MapEach(func(in int) int { return in * 2 })
	})
	v, err := stream.TransformSlice(tr, []int{10, 42, 1, 2})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, []int{20, 2, 4}, v, "replayed events and live events both flow through the transformer")
}
