package stream

import "strings"

// ContextMatcher is a pure predicate over the context stack. MatchContext
// receives the live stack bottom-first and, on success, returns the matched
// context value together with how many frames it consumed from the bottom.
//
// Matchers must be monotone: a match at some stack state keeps matching
// while every consumed frame stays on the stack, no matter what is pushed
// above, and stops matching only when a consumed frame is popped. The
// sequence and single-frame matchers below satisfy this by construction.
type ContextMatcher[S, C any] interface {
	MatchContext(stack []S) (C, int, bool)
	String() string
}

type singleMatcher[S, C any] struct {
	desc string
	f    func(S) (C, bool)
}

// MatchOne matches exactly one frame, yielding whatever f extracts from it.
func MatchOne[S, C any](desc string, f func(S) (C, bool)) ContextMatcher[S, C] {
	return singleMatcher[S, C]{desc: desc, f: f}
}

func (m singleMatcher[S, C]) MatchContext(stack []S) (C, int, bool) {
	if len(stack) == 0 {
		var zero C
		return zero, 0, false
	}
	c, ok := m.f(stack[0])
	return c, 1, ok
}

func (m singleMatcher[S, C]) String() string {
	return m.desc
}

// MatchPred matches one frame by predicate, yielding the frame itself.
func MatchPred[S any](desc string, pred func(S) bool) ContextMatcher[S, S] {
	return MatchOne(desc, func(s S) (S, bool) {
		return s, pred(s)
	})
}

// MatchAny matches any single frame, yielding it. The DSL spelling is `*`.
func MatchAny[S any]() ContextMatcher[S, S] {
	return MatchPred("*", func(S) bool { return true })
}

type seqMatcher[S, A, B, C any] struct {
	first   ContextMatcher[S, A]
	second  ContextMatcher[S, B]
	combine func(A, B) C
}

// SeqWith composes two matchers in sequence: the second consumes the frames
// the first left over. The combined value is combine(a, b).
func SeqWith[S, A, B, C any](first ContextMatcher[S, A], second ContextMatcher[S, B], combine func(A, B) C) ContextMatcher[S, C] {
	return seqMatcher[S, A, B, C]{first: first, second: second, combine: combine}
}

// Seq composes two matchers in sequence, pairing their values.
func Seq[S, A, B any](first ContextMatcher[S, A], second ContextMatcher[S, B]) ContextMatcher[S, Pair[A, B]] {
	return SeqWith(first, second, func(a A, b B) Pair[A, B] {
		return Pair[A, B]{First: a, Second: b}
	})
}

func (m seqMatcher[S, A, B, C]) MatchContext(stack []S) (C, int, bool) {
	var zero C
	a, an, ok := m.first.MatchContext(stack)
	if !ok {
		return zero, 0, false
	}
	b, bn, ok := m.second.MatchContext(stack[an:])
	if !ok {
		return zero, 0, false
	}
	return m.combine(a, b), an + bn, true
}

func (m seqMatcher[S, A, B, C]) String() string {
	return m.first.String() + ` \ ` + m.second.String()
}

type orMatcher[S, C any] struct {
	options []ContextMatcher[S, C]
}

// MatcherOr tries each matcher in order and takes the first match.
func MatcherOr[S, C any](options ...ContextMatcher[S, C]) ContextMatcher[S, C] {
	flat := make([]ContextMatcher[S, C], 0, len(options))
	for _, o := range options {
		if om, ok := o.(orMatcher[S, C]); ok {
			flat = append(flat, om.options...)
			continue
		}
		flat = append(flat, o)
	}
	return orMatcher[S, C]{options: flat}
}

func (m orMatcher[S, C]) MatchContext(stack []S) (C, int, bool) {
	for _, o := range m.options {
		if c, n, ok := o.MatchContext(stack); ok {
			return c, n, true
		}
	}
	var zero C
	return zero, 0, false
}

func (m orMatcher[S, C]) String() string {
	descs := make([]string, len(m.options))
	for i, o := range m.options {
		descs[i] = o.String()
	}
	return "(" + strings.Join(descs, " | ") + ")"
}

type mappedMatcher[S, A, B any] struct {
	base ContextMatcher[S, A]
	f    func(A) B
}

// MapMatcher transforms the context value a matcher yields.
func MapMatcher[S, A, B any](base ContextMatcher[S, A], f func(A) B) ContextMatcher[S, B] {
	return mappedMatcher[S, A, B]{base: base, f: f}
}

func (m mappedMatcher[S, A, B]) MatchContext(stack []S) (B, int, bool) {
	a, n, ok := m.base.MatchContext(stack)
	if !ok {
		var zero B
		return zero, 0, false
	}
	return m.f(a), n, true
}

func (m mappedMatcher[S, A, B]) String() string {
	return m.base.String()
}
