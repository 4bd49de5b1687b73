package stream

import (
	"fmt"

	"github.com/dylemma/xml-stream/internal/stack"
)

// Location is an optional source position attached to events. The zero
// value means unknown. Locations only ever feed diagnostics; they never
// affect the outcome of a parse.
type Location struct {
	Line   int
	Column int
	Offset int
}

func (l Location) IsKnown() bool {
	return l != Location{}
}

func (l Location) String() string {
	switch {
	case l.Line > 0 && l.Column > 0:
		return fmt.Sprintf("line %d, column %d", l.Line, l.Column)
	case l.Line > 0:
		return fmt.Sprintf("line %d", l.Line)
	case l.Offset > 0:
		return fmt.Sprintf("offset %d", l.Offset)
	default:
		return "unknown position"
	}
}

// Located is implemented by event types that carry a source location.
type Located interface {
	Location() Location
}

func locationOf(in any) (Location, bool) {
	l, ok := in.(Located)
	if !ok {
		return Location{}, false
	}
	loc := l.Location()
	return loc, loc.IsKnown()
}

// ContextTrace is the ordered list of locations of the pushes enclosing a
// stack frame, outermost first.
type ContextTrace struct {
	Locations []Location
}

// StackEffect says what an event does to the context stack.
type StackEffect int

const (
	StackNoChange StackEffect = iota
	StackPush
	StackPop
)

// StackInterp is the interpretation of one event against the context
// stack. BeforeInput decides whether the stack change applies before the
// event is delivered (the event belongs to the child sub-stream) or after
// it (the event still belongs to the current sub-stream).
type StackInterp[S any] struct {
	Effect      StackEffect
	Frame       S
	BeforeInput bool
}

func NoStackChange[S any]() StackInterp[S] {
	return StackInterp[S]{}
}

func PushBeforeInput[S any](frame S) StackInterp[S] {
	return StackInterp[S]{Effect: StackPush, Frame: frame, BeforeInput: true}
}

func PushAfterInput[S any](frame S) StackInterp[S] {
	return StackInterp[S]{Effect: StackPush, Frame: frame}
}

func PopBeforeInput[S any]() StackInterp[S] {
	return StackInterp[S]{Effect: StackPop, BeforeInput: true}
}

func PopAfterInput[S any]() StackInterp[S] {
	return StackInterp[S]{Effect: StackPop}
}

// Stackable translates events of a given type into stack effects. It must
// be pure: the engine may consult it from several nodes watching the same
// stream.
type Stackable[In, S any] interface {
	InterpretEvent(in In) StackInterp[S]
}

// StackableFunc adapts a function to the Stackable interface.
type StackableFunc[In, S any] func(in In) StackInterp[S]

func (f StackableFunc[In, S]) InterpretEvent(in In) StackInterp[S] {
	return f(in)
}

type contextFrame[In, S any] struct {
	value S
	event In
	loc   Location
}

// contextTracker reconstructs the context stack from the event stream,
// remembering for each live frame the event that pushed it (for replay)
// and where it was pushed (for diagnostics).
type contextTracker[In, S any] struct {
	strat  Stackable[In, S]
	frames stack.Stack[contextFrame[In, S]]
	values []S
}

func newContextTracker[In, S any](strat Stackable[In, S]) *contextTracker[In, S] {
	return &contextTracker[In, S]{strat: strat}
}

func (t *contextTracker[In, S]) interpret(in In) StackInterp[S] {
	return t.strat.InterpretEvent(in)
}

func (t *contextTracker[In, S]) push(in In, frame S) {
	loc, _ := locationOf(in)
	t.frames.Push(contextFrame[In, S]{value: frame, event: in, loc: loc})
	t.values = append(t.values, frame)
}

func (t *contextTracker[In, S]) pop() error {
	if t.frames.Len() == 0 {
		return ErrStackUnderflow
	}
	t.frames.Pop()
	t.values = t.values[:len(t.values)-1]
	return nil
}

func (t *contextTracker[In, S]) depth() int {
	return t.frames.Len()
}

// stackValues is the live stack bottom-first, as matchers see it.
func (t *contextTracker[In, S]) stackValues() []S {
	return t.values
}

// replayEvents returns the events that pushed the live frames, in original
// order.
func (t *contextTracker[In, S]) replayEvents() []In {
	evs := make([]In, t.frames.Len())
	for i, f := range t.frames {
		evs[i] = f.event
	}
	return evs
}

func (t *contextTracker[In, S]) trace() ContextTrace {
	locs := make([]Location, t.frames.Len())
	for i, f := range t.frames {
		locs[i] = f.loc
	}
	return ContextTrace{Locations: locs}
}
