// Package layoutyaml compiles declarative YAML schema documents into
// layouts, giving tools and configuration a text form for the binary
// schemas the engine interprets.
//
// # Schema Documents
//
// A document declares either a proper layout or a single item:
//
//	layout:
//	  - name: magic
//	    type: u32
//	    const: 0xCAFEF00D
//	  - name: version
//	    type: u8
//	  - name: name
//	    type: string
//	    length: {prefix: 1}
//	  - name: payload
//	    type: bytes
//	    length: remainder
//
// # Types
//
//	u8..u128, s8..s128   integers; optional le/be suffix (u32le) or
//	                     an "order: le|be" key
//	bytes                raw bytes with a "length"
//	string               UTF-8 validated bytes with a "length"
//	block                a byte region with a nested "layout"
//	array                repeated "of" element schema with a "length"
//	switch               tagged union: "tag", "width", "variants"
//
// Lengths are an integer (fixed), the string "remainder", or a
// {prefix: width, order: le|be} mapping. Any item may carry
// "const" (a pinned constant) and "omit: true".
//
// ParseValue decodes YAML value documents into the generic record,
// sequence, integer, string, and !!binary shapes the engine encodes.
// The package describes schemas only; encoded data stays binary.
package layoutyaml
