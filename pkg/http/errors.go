package http

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to classify an error returned by this package.
var (
	// ErrInvalidInput reports a caller-supplied value that violates a
	// documented contract.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidURI reports a URI string that fails to parse, or a URI
	// component outside its grammar.
	ErrInvalidURI = errors.New("invalid uri")

	// ErrState reports an operation invoked against a resource in a state
	// that forbids it (closed or detached stream, moved upload).
	ErrState = errors.New("invalid state")

	// ErrResource reports an underlying resource that cannot be opened,
	// created, read or written.
	ErrResource = errors.New("resource error")
)

// Error is the error type returned by this package.
type Error struct {
	Kind    error  // one of ErrInvalidInput, ErrInvalidURI, ErrState, ErrResource
	Op      string // operation that failed, e.g. "WithStatus"
	Message string // human-readable error message
	Err     error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("http: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("http: %s", msg)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func invalidInput(op, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidInput, Op: op, Message: fmt.Sprintf(format, args...)}
}

func invalidURI(op string, cause error, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidURI, Op: op, Message: fmt.Sprintf(format, args...), Err: cause}
}

func stateError(op, msg string) *Error {
	return &Error{Kind: ErrState, Op: op, Message: msg}
}

func resourceError(op string, cause error, format string, args ...any) *Error {
	return &Error{Kind: ErrResource, Op: op, Message: fmt.Sprintf(format, args...), Err: cause}
}
