package errors

import (
	"fmt"
	"strings"
	"syscall"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseValidate Phase = "validate" // local argument validation
	PhaseMarshal  Phase = "marshal"  // linear-memory encoding/decoding
	PhaseCall     Phase = "call"     // foreign primitive invocation
	PhaseHost     Phase = "host"     // host-side primitive implementation
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindPlatform        Kind = "platform"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindAllocation      Kind = "allocation"
	KindClosed          Kind = "closed"
)

// Error is the structured error type used throughout the shim
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Op     string
	Detail string
	Errno  syscall.Errno
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Op != "" {
		b.WriteString(" in ")
		b.WriteString(e.Op)
	}

	if e.Errno != 0 {
		fmt.Fprintf(&b, ": errno %d (%s)", int(e.Errno), e.Errno.Error())
	}

	if e.Detail != "" {
		if e.Errno != 0 {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error. Platform errors unwrap to their
// syscall.Errno so errors.Is(err, syscall.ECONNREFUSED) works.
func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	if e.Errno != 0 {
		return e.Errno
	}
	return nil
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// InvalidArgument creates a local validation error. It is raised before any
// foreign primitive is invoked.
func InvalidArgument(op, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindInvalidArgument,
		Op:     op,
		Detail: detail,
	}
}

// Platform creates an error carrying a nonzero status code reported by a
// foreign primitive. The code is preserved verbatim.
func Platform(op string, code int32) *Error {
	return &Error{
		Phase: PhaseCall,
		Kind:  KindPlatform,
		Op:    op,
		Errno: syscall.Errno(code),
	}
}

// OutOfBounds creates a marshalling bounds error
func OutOfBounds(op, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindOutOfBounds,
		Op:     op,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(op string, size uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindAllocation,
		Op:     op,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
	}
}

// MemoryAccess creates a linear-memory access error
func MemoryAccess(op string, cause error) *Error {
	return &Error{
		Phase: PhaseMarshal,
		Kind:  KindOutOfBounds,
		Op:    op,
		Cause: cause,
	}
}

// Closed creates an error for operations on a closed or invalid handle
func Closed(op string) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindClosed,
		Op:     op,
		Detail: "handle is not open",
	}
}

// PlatformCode extracts the platform status code from err, if it carries one.
func PlatformCode(err error) (int32, bool) {
	e, ok := err.(*Error)
	if !ok || e.Errno == 0 {
		return 0, false
	}
	return int32(e.Errno), true
}

// IsInvalidArgument reports whether err is a local validation error.
func IsInvalidArgument(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindInvalidArgument
}

// IsPlatform reports whether err carries a foreign status code.
func IsPlatform(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == KindPlatform
}
