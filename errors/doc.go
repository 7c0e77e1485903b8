// Package errors provides structured error types for the socket shim.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Exactly two kinds cross the caller boundary in normal operation:
//
//   - invalid_argument: raised locally before any foreign primitive is
//     invoked (mismatched address length, non-positive receive capacity).
//   - platform: a foreign primitive returned a nonzero status code. The code
//     is preserved verbatim as a syscall.Errno and reachable through
//     errors.Is/As and PlatformCode.
//
// Use the convenience constructors:
//
//	err := errors.InvalidArgument("connect", "address must be 4 bytes for INET")
//	err := errors.Platform("sock_recv", code)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
