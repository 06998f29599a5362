// Package layout implements a schema-driven bidirectional binary codec.
//
// A Layout is a declarative schema tree describing how raw bytes map to
// structured values. Serialize and Deserialize interpret the same tree
// in opposite directions:
//
//	┌────────────────────────────────────────────────────────┐
//	│ Go Value ←→ [Serialize / Deserialize] ←→ Byte Slice   │
//	└────────────────────────────────────────────────────────┘
//
// # Item Kinds
//
// Every schema node is one of four kinds:
//
//	Kind      Encodes                       Decoded shape
//	────────────────────────────────────────────────────────
//	Numeric   fixed-width integer           uint64/int64, *big.Int > 8 bytes
//	Bytes     raw block or sub-record       []byte or map[string]any
//	Array     repeated element layout       []any
//	Switch    tagged union                  map[string]any (tag + variant)
//
// Bytes and Array determine their length one of three ways: a fixed
// manual size, an integer length prefix, or the remainder of the
// current slice (final item only).
//
// # Conversions
//
// Any item or whole layout can carry a Conversion mapping between its
// raw encoded form and a domain value:
//
//	Fixed   - a constant; synthesized on encode, never caller-supplied
//	Custom  - a user function pair (Decode raw->domain, Encode domain->raw)
//
// # Key Operations
//
//	Serialize / Deserialize  - the recursive codec core
//	SizeOf / StaticSize      - encoded length without encoding
//	FixedItems / DynamicItems / AddFixedValues - fixed/dynamic partition
//	Transform / Spread / Nest / UnwrapSingleton - schema combinators
//	WithByteOrder            - propagate a default byte order
//
// # Byte Order
//
// Numeric items, switch identifiers, and length prefixes default to the
// process-wide byte order (big-endian unless SetDefaultByteOrder says
// otherwise). WithByteOrder fills in an explicit order across a whole
// tree, leaving explicitly ordered items untouched.
//
// # Thread Safety
//
// Layouts are immutable after construction and safe for concurrent use.
// Serialize and Deserialize keep all state in call-local buffers and
// cursors.
//
// # Error Handling
//
// Errors use the structured types from the errors package:
//
//	[encode] out_of_range at header.version: value 256 does not fit unsigned 1-byte integer
//	[decode] truncated at body: need 13 bytes, have 4
//
// Schema errors are reported at construction by Struct and Single,
// before any encode or decode call.
package layout
