package layout

import (
	"sync/atomic"

	"github.com/wippyai/binlayout/layout/internal/kind"
)

type Kind = kind.Kind

const (
	KindNumeric = kind.KindNumeric
	KindBytes   = kind.KindBytes
	KindArray   = kind.KindArray
	KindSwitch  = kind.KindSwitch
)

// ByteOrder selects how multi-byte integers are laid out. The zero
// value defers to the process-wide default (see SetDefaultByteOrder).
type ByteOrder uint8

const (
	OrderUnset ByteOrder = iota
	LittleEndian
	BigEndian
)

var orderNames = [...]string{
	OrderUnset:   "unset",
	LittleEndian: "little",
	BigEndian:    "big",
}

func (o ByteOrder) String() string {
	if int(o) < len(orderNames) {
		return orderNames[o]
	}
	return "unknown"
}

var defaultOrder atomic.Uint32

func init() {
	defaultOrder.Store(uint32(BigEndian))
}

// SetDefaultByteOrder sets the process-wide order used by items whose
// order is left unset. The initial default is big-endian.
func SetDefaultByteOrder(o ByteOrder) {
	if o == OrderUnset {
		o = BigEndian
	}
	defaultOrder.Store(uint32(o))
}

// DefaultByteOrder returns the process-wide default order.
func DefaultByteOrder() ByteOrder {
	return ByteOrder(defaultOrder.Load())
}

func (o ByteOrder) resolve() ByteOrder {
	if o == OrderUnset {
		return DefaultByteOrder()
	}
	return o
}

func (o ByteOrder) little() bool {
	return o.resolve() == LittleEndian
}

// LenKind selects one of the three length-determination strategies for
// Bytes and Array items.
type LenKind uint8

const (
	LenFixed     LenKind = iota // manual byte/element count
	LenPrefix                   // count written as an integer prefix
	LenRemainder                // consume everything left in the slice
)

// LenSpec describes how a Bytes or Array item determines its length.
type LenSpec struct {
	Kind        LenKind
	N           int       // LenFixed: byte count (Bytes) or element count (Array)
	PrefixWidth int       // LenPrefix: width of the count integer
	PrefixOrder ByteOrder // LenPrefix: order of the count integer
}

// FixedLen fixes the length at n.
func FixedLen(n int) LenSpec {
	return LenSpec{Kind: LenFixed, N: n}
}

// PrefixLen writes the length as an unsigned integer of the given width
// immediately before the content.
func PrefixLen(width int, order ByteOrder) LenSpec {
	return LenSpec{Kind: LenPrefix, PrefixWidth: width, PrefixOrder: order}
}

// Remainder consumes all bytes left in the current slice. Valid only
// for the final item of its enclosing layout.
func Remainder() LenSpec {
	return LenSpec{Kind: LenRemainder}
}

// Conversion maps between an item's raw encoded form and its decoded
// value. Exactly two implementations exist: Fixed and Custom.
type Conversion interface {
	isConversion()
}

// Fixed pins an item to a constant. Raw is written on encode without
// consulting the caller's value, and Decoded is produced on decode.
type Fixed struct {
	Decoded any
	Raw     any
}

func (Fixed) isConversion() {}

// Custom is a user-supplied bidirectional mapping. Decode transforms
// the raw value produced by the engine into the domain value; Encode is
// its inverse. Both must satisfy Decode(Encode(v)) == v for well-formed
// inputs.
type Custom struct {
	Decode func(raw any) (any, error)
	Encode func(value any) (any, error)
}

func (Custom) isConversion() {}

// Const builds a Fixed conversion whose decoded and raw values are the
// same constant, the common case for magic numbers and discriminators.
func Const(v any) Fixed {
	return Fixed{Decoded: v, Raw: v}
}

// Item is one schema node. Kind selects which of the other fields are
// meaningful; constructors populate them consistently and Struct/Single
// validate the result.
type Item struct {
	Conversion Conversion
	Nested     *Layout   // Bytes: optional sub-layout over the block
	Elem       *Layout   // Array: element layout
	Variants   []Variant // Switch: variant layouts by identifier
	TagName    string    // Switch: decoded name of the identifier field
	Len        LenSpec   // Bytes/Array: length strategy
	Size       int       // Numeric: byte width; Switch: identifier width
	Order      ByteOrder // Numeric/Switch identifier byte order
	Kind       Kind
	Signed     bool
	Omit       bool
}

// Variant is one case of a Switch: an author-supplied identifier value,
// an optional label exposed in place of the raw number, and the proper
// layout of the variant's fields.
type Variant struct {
	Layout *Layout
	Label  string
	Tag    uint64
}

// Case builds a labeled switch variant. An empty label exposes the raw
// identifier value in decoded records.
func Case(tag uint64, label string, l *Layout) Variant {
	return Variant{Tag: tag, Label: label, Layout: l}
}

// Uint declares an unsigned integer of the given byte width. Widths
// above 8 decode to *big.Int.
func Uint(width int) Item {
	return Item{Kind: KindNumeric, Size: width}
}

// Int declares a signed two's complement integer of the given width.
func Int(width int) Item {
	return Item{Kind: KindNumeric, Size: width, Signed: true}
}

// Blob declares a raw byte sequence with the given length strategy.
func Blob(len LenSpec) Item {
	return Item{Kind: KindBytes, Len: len}
}

// Block declares a byte region interpreted as a nested sub-record.
func Block(l *Layout, len LenSpec) Item {
	return Item{Kind: KindBytes, Len: len, Nested: l}
}

// ArrayOf declares a repeated element layout with the given length
// strategy. For LenFixed the count is the element count, not bytes.
func ArrayOf(elem *Layout, len LenSpec) Item {
	return Item{Kind: KindArray, Len: len, Elem: elem}
}

// SwitchOn declares a tagged union: an unsigned identifier of tagWidth
// bytes followed by the fields of the matching variant. The identifier
// appears in decoded records under tagName ("tag" when empty).
func SwitchOn(tagWidth int, tagName string, variants ...Variant) Item {
	return Item{Kind: KindSwitch, Size: tagWidth, TagName: tagName, Variants: variants}
}

// WithOrder returns a copy of the item with an explicit byte order.
func (it Item) WithOrder(o ByteOrder) Item {
	it.Order = o
	return it
}

// WithConversion returns a copy of the item carrying the conversion.
func (it Item) WithConversion(c Conversion) Item {
	it.Conversion = c
	return it
}

// WithConst returns a copy pinned to a Fixed conversion where decoded
// and raw values are both v.
func (it Item) WithConst(v any) Item {
	it.Conversion = Const(v)
	return it
}

// Omitted returns a copy whose decoded value is suppressed. The item
// still consumes and produces bytes; on encode its content comes from a
// Fixed conversion, or zero bytes when none is set.
func (it Item) Omitted() Item {
	it.Omit = true
	return it
}

// tagName returns the decoded field name of a switch identifier.
func (it Item) tagName() string {
	if it.TagName != "" {
		return it.TagName
	}
	return "tag"
}

// fixedConv returns the item's Fixed conversion, if any.
func (it Item) fixedConv() (Fixed, bool) {
	f, ok := it.Conversion.(Fixed)
	return f, ok
}

// customConv returns the item's Custom conversion, if any.
func (it Item) customConv() (Custom, bool) {
	c, ok := it.Conversion.(Custom)
	return c, ok
}

func (it Item) clone() Item {
	out := it
	if it.Nested != nil {
		out.Nested = it.Nested.clone()
	}
	if it.Elem != nil {
		out.Elem = it.Elem.clone()
	}
	if it.Variants != nil {
		out.Variants = make([]Variant, len(it.Variants))
		for i, v := range it.Variants {
			out.Variants[i] = Variant{Tag: v.Tag, Label: v.Label, Layout: v.Layout.clone()}
		}
	}
	return out
}
