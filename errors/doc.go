// Package errors provides structured error types for the binlayout library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, offending value, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("header", "version").
//		Detail("cannot coerce string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfRange(path, 256, 1, false)
//	err := errors.Truncated(path, 4, 1)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
