package lisp

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies the failures the interpreter can report.
type ErrorKind int

const (
	ReadError ErrorKind = iota
	SyntaxError
	UnboundError
	OverrideError
	IndexError
	NotSymbolError
	TypeError
	DepthError
)

var kindNames = map[ErrorKind]string{
	ReadError:      "READ error",
	SyntaxError:    "Syntax error",
	UnboundError:   "Unbound variable",
	OverrideError:  "Builtin override",
	IndexError:     "Index error",
	NotSymbolError: "Not a symbol",
	TypeError:      "Type error",
	DepthError:     "Depth error",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error represents a failure in reading, parsing or evaluation.
type Error struct {
	Kind    ErrorKind
	Message string
	// AtEnd is set when the input ran out inside a form or literal.
	AtEnd   bool
}

// err.Error() returns a textual representation of err.
func (err *Error) Error() string {
	return err.Kind.String() + ": " + err.Message
}

// newError constructs an *Error with a formatted message.
func newError(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func atEndError(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), AtEnd: true}
}

func typeError(format string, args ...interface{}) error {
	return newError(TypeError, format, args...)
}

// IsKind reports whether err, or any error it wraps, is an *Error of the given
// kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsIncomplete reports whether err is a read or syntax error caused by the
// input ending too early, i.e. more text could complete it.
func IsIncomplete(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.AtEnd && (e.Kind == ReadError || e.Kind == SyntaxError)
}
