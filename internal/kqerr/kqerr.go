// Package kqerr implements the error taxonomy of spec.md §7: a small
// set of error kinds (not identifiers) the host can test for with
// errors.As, independent of the message text.
package kqerr

import "fmt"

// Kind names one of the four error categories of spec.md §7.
type Kind int

const (
	// Argument is caller misuse, e.g. calling play before validate.
	// Surfaced immediately; no engine state changes.
	Argument Kind = iota
	// Format is a malformed or semantically invalid input tree, caught
	// during validate().
	Format
	// Memory is an allocation failure.
	Memory
	// Resource is a failure rooted in loader-provided data, e.g. a
	// truncated sample, reported by validate() only.
	Resource
)

func (k Kind) String() string {
	switch k {
	case Argument:
		return "ArgumentError"
	case Format:
		return "FormatError"
	case Memory:
		return "MemoryError"
	case Resource:
		return "ResourceError"
	default:
		return "UnknownError"
	}
}

// Error is a kqerr-kinded error with an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(k Kind, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Argumentf builds an ArgumentError.
func Argumentf(format string, args ...any) error { return newf(Argument, format, args...) }

// Formatf builds a FormatError. Callers should phrase format so the
// rendered message names the offending concept (e.g. "song", "pattern",
// "control") per spec.md §7.
func Formatf(format string, args ...any) error { return newf(Format, format, args...) }

// Memoryf builds a MemoryError.
func Memoryf(format string, args ...any) error { return newf(Memory, format, args...) }

// Resourcef builds a ResourceError.
func Resourcef(format string, args ...any) error { return newf(Resource, format, args...) }

// Wrap builds a kqerr.Error of the given kind, wrapping cause so
// errors.Is/errors.Unwrap still reach it.
func Wrap(k Kind, cause error, format string, args ...any) error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Is reports whether err is a kqerr.Error of the given kind, anywhere
// in its wrap chain.
func Is(err error, k Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == k {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
