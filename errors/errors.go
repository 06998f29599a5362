package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSchema Phase = "schema" // layout construction and validation
	PhaseEncode Phase = "encode" // value to bytes
	PhaseDecode Phase = "decode" // bytes to value
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfRange     Kind = "out_of_range"
	KindLengthMismatch Kind = "length_mismatch"
	KindUnknownVariant Kind = "unknown_variant"
	KindTruncated      Kind = "truncated"
	KindConversion     Kind = "conversion"
	KindTypeMismatch   Kind = "type_mismatch"
	KindFieldMissing   Kind = "field_missing"
	KindDuplicateField Kind = "duplicate_field"
	KindBadRemainder   Kind = "bad_remainder"
	KindInvalidSchema  Kind = "invalid_schema"
	KindInvalidValue   Kind = "invalid_value"
	KindNotProper      Kind = "not_proper"
	KindUnsupported    Kind = "unsupported"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// OutOfRange reports a numeric value outside the representable range of
// its declared width.
func OutOfRange(path []string, value any, width int, signed bool) *Error {
	sign := "unsigned"
	if signed {
		sign = "signed"
	}
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindOutOfRange,
		Path:   path,
		Detail: fmt.Sprintf("value %v does not fit %s %d-byte integer", value, sign, width),
		Value:  value,
	}
}

// Truncated reports a read past the end of the input
func Truncated(path []string, need, have int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTruncated,
		Path:   path,
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have),
	}
}

// UnknownVariant reports a switch identifier that matches no variant
func UnknownVariant(phase Phase, path []string, tag any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownVariant,
		Path:   path,
		Detail: fmt.Sprintf("identifier %v matches no variant", tag),
		Value:  tag,
	}
}

// LengthMismatch reports a fixed-length item given content of the wrong size
func LengthMismatch(phase Phase, path []string, want, got int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLengthMismatch,
		Path:   path,
		Detail: fmt.Sprintf("expected length %d, got %d", want, got),
	}
}

// TypeMismatch reports a value of the wrong Go type for an item
func TypeMismatch(phase Phase, path []string, goType, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("Go type %s, want %s", goType, want),
	}
}

// FieldMissing reports a record value lacking a required field
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// DuplicateField reports a layout declaring the same field name twice
func DuplicateField(path []string, fieldName string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindDuplicateField,
		Path:   path,
		Detail: fmt.Sprintf("duplicate field %q", fieldName),
	}
}

// BadRemainder reports a remainder-length item in a non-final position
func BadRemainder(path []string, fieldName string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindBadRemainder,
		Path:   path,
		Detail: fmt.Sprintf("remainder item %q must be the final item in its layout", fieldName),
	}
}

// InvalidSchema reports a malformed layout construction
func InvalidSchema(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindInvalidSchema,
		Path:   path,
		Detail: detail,
	}
}

// ConversionFailed wraps an error raised by a user-supplied conversion
func ConversionFailed(phase Phase, path []string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindConversion,
		Path:   path,
		Detail: "conversion failed",
		Cause:  cause,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidValue creates an invalid value error
func InvalidValue(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidValue,
		Path:   path,
		Detail: detail,
	}
}

// NotProper reports an operation that requires a proper (named-field) layout
func NotProper(detail string) *Error {
	return &Error{
		Phase:  PhaseSchema,
		Kind:   KindNotProper,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
