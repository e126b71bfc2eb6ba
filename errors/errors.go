package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies engine failures.
type Kind string

const (
	// KindUnsatisfiable indicates a witness was requested for a predicate with no model.
	KindUnsatisfiable Kind = "unsatisfiable"
	// KindTimeout indicates the decision procedure or the search exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindUnsupportedConstruct indicates a construct outside an operation's contract.
	KindUnsupportedConstruct Kind = "unsupported-construct"
	// KindMalformedAutomaton indicates a broken automaton invariant.
	KindMalformedAutomaton Kind = "malformed-automaton"
	// KindSyntax indicates a pattern that does not parse.
	KindSyntax Kind = "pattern-syntax-error"
)

var (
	// ErrUnsatisfiable matches any error of kind KindUnsatisfiable.
	ErrUnsatisfiable = &Error{Kind: KindUnsatisfiable}
	// ErrTimeout matches any error of kind KindTimeout.
	ErrTimeout = &Error{Kind: KindTimeout}
	// ErrUnsupportedConstruct matches any error of kind KindUnsupportedConstruct.
	ErrUnsupportedConstruct = &Error{Kind: KindUnsupportedConstruct}
	// ErrMalformedAutomaton matches any error of kind KindMalformedAutomaton.
	ErrMalformedAutomaton = &Error{Kind: KindMalformedAutomaton}
	// ErrSyntax matches any error of kind KindSyntax.
	ErrSyntax = &Error{Kind: KindSyntax}
)

// Error describes an engine failure with its kind, the operation that
// raised it, and an optional cause.
type Error struct {
	Err     error
	Kind    Kind
	Op      string
	Message string
}

// Error formats the error as "[kind] op: message: cause".
func (e *Error) Error() string {
	if e == nil {
		return "afa error <nil>"
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Kind))
	b.WriteString("]")
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	if e.Message != "" {
		if e.Op != "" {
			b.WriteString(":")
		}
		b.WriteString(" ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an Error with a kind, operation, and message.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Message: msg}
}

// Newf formats a message and builds an Error.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return New(kind, op, fmt.Sprintf(format, args...))
}

// Wrap builds an Error of the given kind around cause.
func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Timeout converts a finished context into a KindTimeout error.
// It returns nil while ctx is still live.
func Timeout(ctx context.Context, op string) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return Wrap(KindTimeout, op, err)
	}
	return nil
}

// KindOf extracts the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	if err == nil {
		return "", false
	}
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Kind, true
	}
	return "", false
}
