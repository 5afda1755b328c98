// Package verifyerrors defines the user-visible error kinds surfaced by the
// verifier front end, following the shape of Orizon's internal/errors
// package (category + code + message + context) but keying the category
// off the fixed set of error kinds the deductive verifier can produce and
// carrying a source position.Span instead of a free-form context map.
package verifyerrors

import (
	"fmt"

	"github.com/orizon-lang/orizon-verify/internal/position"
)

// Kind enumerates the error kinds a definition can fail with.
type Kind string

const (
	KindDuplicateName         Kind = "DuplicateName"
	KindUnknownName           Kind = "UnknownName"
	KindTypeMismatch          Kind = "TypeMismatch"
	KindMissingReturn         Kind = "MissingReturn"
	KindReturnInVoid          Kind = "ReturnInVoid"
	KindReturnMissingValue    Kind = "ReturnMissingValue"
	KindInconsistentRankings  Kind = "InconsistentRankings"
	KindAmbiguousResult       Kind = "AmbiguousResult"
	KindIllegalAnnotationForm Kind = "IllegalAnnotationForm"
	KindInternalInvariant     Kind = "InternalInvariant"
)

// Error is a single user-visible diagnostic. It always carries a source
// span so callers never need to recover position information after the
// fact, matching spec.md §6's "errors carry a source location" contract.
type Error struct {
	Span    position.Span
	Kind    Kind
	Message string
	// Def is the top-level definition (function/struct/predicate name)
	// this error was discovered in, for the §7 "discard the partially
	// built definition" recovery policy.
	Def string
}

func (e *Error) Error() string {
	if e.Span.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs an Error. Constructors below cover the common shapes so
// call sites read as `verifyerrors.UnknownName(span, "x")` rather than
// spelling out a literal each time.
func New(kind Kind, span position.Span, format string, args ...interface{}) *Error {
	return &Error{Span: span, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func DuplicateName(span position.Span, name string) *Error {
	return New(KindDuplicateName, span, "%q is already declared in this scope", name)
}

func UnknownName(span position.Span, name string) *Error {
	return New(KindUnknownName, span, "undeclared identifier %q", name)
}

func TypeMismatch(span position.Span, expected, got string) *Error {
	return New(KindTypeMismatch, span, "expected type %s, got %s", expected, got)
}

func MissingReturn(span position.Span, fn string) *Error {
	return New(KindMissingReturn, span, "function %q has a reachable path that does not return a value", fn)
}

func ReturnInVoid(span position.Span) *Error {
	return New(KindReturnInVoid, span, "return with a value is not allowed in a void function")
}

func ReturnMissingValue(span position.Span) *Error {
	return New(KindReturnMissingValue, span, "return is missing a value in a non-void function")
}

func InconsistentRankings(span position.Span, fn string, want, got int) *Error {
	return New(KindInconsistentRankings, span,
		"function %q: cut point has %d ranking function(s), expected %d (must be uniform across all cut points)",
		fn, got, want)
}

func AmbiguousResult(span position.Span) *Error {
	return New(KindAmbiguousResult, span, "\\result of a struct-returning function must be accessed via a member selector")
}

func IllegalAnnotationForm(span position.Span, reason string) *Error {
	return New(KindIllegalAnnotationForm, span, "%s", reason)
}

func InternalInvariant(span position.Span, reason string) *Error {
	return New(KindInternalInvariant, span, "internal invariant violated: %s", reason)
}

// List accumulates errors across a whole program, matching the teacher's
// continue-on-error-per-definition policy (spec.md §7): a definition's
// errors are appended here and its partial IR discarded, but the pass
// moves on to the next top-level definition.
type List struct {
	errs []*Error
}

func (l *List) Add(e *Error) {
	if e != nil {
		l.errs = append(l.errs, e)
	}
}

func (l *List) Errs() []*Error { return l.errs }
func (l *List) HasErrors() bool { return len(l.errs) > 0 }

func (l *List) Error() string {
	if len(l.errs) == 0 {
		return ""
	}
	msg := l.errs[0].Error()
	if len(l.errs) > 1 {
		msg += fmt.Sprintf(" (and %d more error(s))", len(l.errs)-1)
	}
	return msg
}
