package dbt

import "errors"

// Error kinds reported by the result pipeline. Match them with errors.Is.
var (
	ErrNotFound          = errors.New("no results found")
	ErrExecutionFailed   = errors.New("function execution failed")
	ErrNameMismatch      = errors.New("name mismatch")
	ErrPathParse         = errors.New("path parsing failed")
	ErrTimingParse       = errors.New("timings parsing failed")
	ErrFetch             = errors.New("data fetching failed")
	ErrMaterialization   = errors.New("dataitem materialization failed")
	ErrInvalidOutputSpec = errors.New("outputs must be a list of exactly one dataitem")
)

// Error is a pipeline failure of a given kind. Cause, when set, is the
// underlying error.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func newError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}
