// Package binlayout is a schema-driven binary layout engine: a
// declarative, bidirectional codec between raw byte sequences and
// structured in-memory values.
//
// The core lives in the layout package; errors carries the structured
// error types shared by every phase; layoutyaml parses declarative YAML
// schema definitions into layouts for tooling and configuration.
//
// A minimal round trip:
//
//	l := layout.MustStruct(
//		layout.F("version", layout.Uint(1)),
//		layout.F("body", layout.Blob(layout.PrefixLen(2, layout.BigEndian))),
//	)
//	data, err := layout.Serialize(l, map[string]any{
//		"version": 1,
//		"body":    []byte("payload"),
//	})
//	v, err := layout.Deserialize(l, data)
package binlayout
