package kunquat

import "github.com/cbegin/kunquat-go/internal/kqerr"

// ErrorKind names one of the four error categories of spec.md §7. The
// host tests for a kind with errors.As against *Error, or the
// IsArgumentError/IsFormatError/IsMemoryError/IsResourceError helpers
// below, rather than matching on message text.
type ErrorKind = kqerr.Kind

const (
	// ErrArgument is caller misuse, e.g. calling Play before Validate.
	// Surfaced immediately; no engine state changes.
	ErrArgument = kqerr.Argument
	// ErrFormat is a malformed or semantically invalid Module, caught
	// during Validate.
	ErrFormat = kqerr.Format
	// ErrMemory is an allocation failure building the render graph.
	ErrMemory = kqerr.Memory
	// ErrResource is a failure rooted in loader-provided data (e.g. a
	// truncated sample), reported by Validate only.
	ErrResource = kqerr.Resource
)

// Error is the engine's kinded error type; unwrap it with errors.As to
// recover the ErrorKind.
type Error = kqerr.Error

// IsArgumentError reports whether err is (or wraps) an ErrArgument.
func IsArgumentError(err error) bool { return kqerr.Is(err, ErrArgument) }

// IsFormatError reports whether err is (or wraps) an ErrFormat.
func IsFormatError(err error) bool { return kqerr.Is(err, ErrFormat) }

// IsMemoryError reports whether err is (or wraps) an ErrMemory.
func IsMemoryError(err error) bool { return kqerr.Is(err, ErrMemory) }

// IsResourceError reports whether err is (or wraps) an ErrResource.
func IsResourceError(err error) bool { return kqerr.Is(err, ErrResource) }
