package binlayout

import (
	"github.com/wippyai/binlayout/layout"
)

// Re-exports of the core engine surface, so small consumers can depend
// on the root package alone.

type Layout = layout.Layout
type Item = layout.Item
type Field = layout.Field
type Variant = layout.Variant
type Conversion = layout.Conversion
type Fixed = layout.Fixed
type Custom = layout.Custom
type ByteOrder = layout.ByteOrder
type LenSpec = layout.LenSpec

const (
	OrderUnset   = layout.OrderUnset
	LittleEndian = layout.LittleEndian
	BigEndian    = layout.BigEndian
)

var (
	Serialize   = layout.Serialize
	Deserialize = layout.Deserialize
	SizeOf      = layout.SizeOf
	StaticSize  = layout.StaticSize
)
