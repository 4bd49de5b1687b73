package stream

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrStackUnderflow reports a pop requested against an empty context stack,
// which means the stackable strategy and the event stream disagree.
var ErrStackUnderflow = errors.New("context stack pop on empty stack")

// CallSite is the file and line at which a combinator was constructed.
type CallSite struct {
	File string
	Line int
}

func captureCallSite(skip int) CallSite {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return CallSite{}
	}
	return CallSite{File: filepath.Base(file), Line: line}
}

func (c CallSite) String() string {
	if c.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", c.File, c.Line)
}

// TraceElement is one entry of the diagnostic trail attached to engine
// failures. Elements are prepended as the error unwinds, so the first
// element names the outermost boundary the error crossed and the last
// names the point closest to the failure.
type TraceElement interface {
	fmt.Stringer
	traceElement()
}

// InInput names the event that witnessed the failure.
type InInput struct {
	Input any
}

func (InInput) traceElement() {}

func (e InInput) String() string {
	return fmt.Sprintf("input %v", e.Input)
}

// InInputContext is InInput plus the source location of the event.
type InInputContext struct {
	Input any
	Loc   Location
}

func (InInputContext) traceElement() {}

func (e InInputContext) String() string {
	return fmt.Sprintf("input %v (%s)", e.Input, e.Loc)
}

// InSplitter records that the error crossed a splitter boundary.
type InSplitter struct {
	Matcher  string
	CallSite CallSite
}

func (InSplitter) traceElement() {}

func (e InSplitter) String() string {
	return fmt.Sprintf("splitter %s (%s)", e.Matcher, e.CallSite)
}

// InCompound records which branch of a tuple product raised.
type InCompound struct {
	Index    int
	Count    int
	CallSite CallSite
}

func (InCompound) traceElement() {}

func (e InCompound) String() string {
	return fmt.Sprintf("compound branch %d of %d (%s)", e.Index+1, e.Count, e.CallSite)
}

// InParse records the driver entry point that ran the parse.
type InParse struct {
	Parser   string
	Method   string
	CallSite CallSite
}

func (InParse) traceElement() {}

func (e InParse) String() string {
	return fmt.Sprintf("%s via %s (%s)", e.Parser, e.Method, e.CallSite)
}

// FormatTrace renders a trace one element per line, indented, in list
// order (outermost first, ending at the point closest to the failure).
func FormatTrace(elems []TraceElement) string {
	var sb strings.Builder
	for _, e := range elems {
		sb.WriteString("\n  - ")
		sb.WriteString(e.String())
	}
	return sb.String()
}

// Traced is satisfied by every engine error; TraceElements returns the
// diagnostic trail outermost first.
type Traced interface {
	error
	TraceElements() []TraceElement
}

type traceList struct {
	elements []TraceElement
}

func (t *traceList) TraceElements() []TraceElement {
	return t.elements
}

func (t *traceList) prependTrace(e TraceElement) {
	t.elements = append([]TraceElement{e}, t.elements...)
}

func (t *traceList) traceSuffix() string {
	return FormatTrace(t.elements)
}

// MissingFirstError is raised when a First-style parser sees end of input
// before any event arrived.
type MissingFirstError struct {
	traceList
}

func (e *MissingFirstError) Error() string {
	return "no input to produce a first result" + e.traceSuffix()
}

// UnexpectedInputError is raised by ExpectInputs when an event fails the
// pending expectation. Expectations holds the labels still outstanding,
// starting with the one that failed.
type UnexpectedInputError struct {
	traceList
	Input        any
	Expectations []string
}

func (e *UnexpectedInputError) Error() string {
	return fmt.Sprintf("unexpected input %v, expected %s", e.Input, strings.Join(e.Expectations, ", then ")) + e.traceSuffix()
}

// UnfulfilledInputsError is raised by ExpectInputs when the stream ends
// with expectations remaining.
type UnfulfilledInputsError struct {
	traceList
	Expectations []string
}

func (e *UnfulfilledInputsError) Error() string {
	return fmt.Sprintf("end of input, expected %s", strings.Join(e.Expectations, ", then ")) + e.traceSuffix()
}

// FallbackChainError is raised when every branch of an OrElse chain failed.
// Underlying holds each branch's failure in the order the branches failed.
type FallbackChainError struct {
	traceList
	Underlying []error
}

func (e *FallbackChainError) Error() string {
	var sb strings.Builder
	sb.WriteString("all fallback branches failed:")
	for i, u := range e.Underlying {
		fmt.Fprintf(&sb, "\n  %d) %s", i+1, u)
	}
	sb.WriteString(e.traceSuffix())
	return sb.String()
}

// CaughtError wraps an error thrown from user-supplied code (or any
// non-engine error crossing a trace boundary).
type CaughtError struct {
	traceList
	Cause error
}

func (e *CaughtError) Error() string {
	return e.Cause.Error() + e.traceSuffix()
}

func (e *CaughtError) Unwrap() error {
	return e.Cause
}

type traceable interface {
	error
	prependTrace(TraceElement)
	TraceElements() []TraceElement
}

// withTraceElement prepends elem to the error's trace, wrapping non-engine
// errors in CaughtError first.
func withTraceElement(err error, elem TraceElement) error {
	t, ok := err.(traceable)
	if !ok {
		t = &CaughtError{Cause: err}
	}
	t.prependTrace(elem)
	return t
}

// withLeafInput ensures the trace bottoms out in the input that witnessed
// the failure. A trace that already has elements keeps its leaf.
func withLeafInput(err error, in any) error {
	if t, ok := err.(traceable); ok && len(t.TraceElements()) > 0 {
		return t
	}
	if loc, ok := locationOf(in); ok {
		return withTraceElement(err, InInputContext{Input: in, Loc: loc})
	}
	return withTraceElement(err, InInput{Input: in})
}

// asEngineError wraps user-code errors so they carry a trace; engine errors
// pass through untouched.
func asEngineError(err error) error {
	if _, ok := err.(traceable); ok {
		return err
	}
	return &CaughtError{Cause: err}
}

// protect runs a user-supplied function, converting a panic into a
// CaughtError so it surfaces through the error channel with a trace.
func protect(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()
	return f()
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return &CaughtError{Cause: err}
	}
	return &CaughtError{Cause: fmt.Errorf("panic: %v", r)}
}
