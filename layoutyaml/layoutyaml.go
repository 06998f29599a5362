package layoutyaml

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/layout"
)

// schemaDoc is the document root: either a field list under "layout"
// for a proper layout, or a single item definition under "item".
type schemaDoc struct {
	Layout []fieldDef `yaml:"layout"`
	Item   *itemDef   `yaml:"item"`
}

type fieldDef struct {
	Name    string `yaml:"name"`
	itemDef `yaml:",inline"`
}

type itemDef struct {
	Type     string       `yaml:"type"`
	Length   *lengthDef   `yaml:"length"`
	Order    string       `yaml:"order"`
	Const    yaml.Node    `yaml:"const"`
	Omit     bool         `yaml:"omit"`
	Of       *elemDef     `yaml:"of"`
	Layout   []fieldDef   `yaml:"layout"`
	Tag      string       `yaml:"tag"`
	Width    int          `yaml:"width"`
	Variants []variantDef `yaml:"variants"`
}

type variantDef struct {
	Tag    uint64     `yaml:"tag"`
	Label  string     `yaml:"label"`
	Layout []fieldDef `yaml:"layout"`
}

// elemDef is an array element schema: a mapping parses as one item, a
// sequence as a proper layout of named fields.
type elemDef struct {
	item   *itemDef
	fields []fieldDef
}

func (e *elemDef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var it itemDef
		if err := node.Decode(&it); err != nil {
			return err
		}
		e.item = &it
		return nil
	case yaml.SequenceNode:
		return node.Decode(&e.fields)
	}
	return fmt.Errorf("array element must be a mapping or a field sequence")
}

// lengthDef is a length strategy: an integer for a fixed length, the
// string "remainder", or a {prefix, order} mapping.
type lengthDef struct {
	kind        layout.LenKind
	n           int
	prefixWidth int
	prefixOrder layout.ByteOrder
}

func (l *lengthDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Tag == "!!int" {
			n, err := strconv.Atoi(node.Value)
			if err != nil {
				return err
			}
			l.kind = layout.LenFixed
			l.n = n
			return nil
		}
		if node.Value == "remainder" {
			l.kind = layout.LenRemainder
			return nil
		}
		return fmt.Errorf("length %q: want an integer, \"remainder\", or a prefix mapping", node.Value)
	}

	var p struct {
		Prefix int    `yaml:"prefix"`
		Order  string `yaml:"order"`
	}
	if err := node.Decode(&p); err != nil {
		return err
	}
	order, err := parseOrder(p.Order)
	if err != nil {
		return err
	}
	l.kind = layout.LenPrefix
	l.prefixWidth = p.Prefix
	l.prefixOrder = order
	return nil
}

func (l *lengthDef) spec() layout.LenSpec {
	switch l.kind {
	case layout.LenPrefix:
		return layout.PrefixLen(l.prefixWidth, l.prefixOrder)
	case layout.LenRemainder:
		return layout.Remainder()
	}
	return layout.FixedLen(l.n)
}

// Parse compiles a YAML schema document into a layout.
func Parse(data []byte) (*layout.Layout, error) {
	var doc schemaDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseSchema, errors.KindInvalidSchema, err, "yaml parse failed")
	}

	switch {
	case doc.Item != nil && doc.Layout != nil:
		return nil, errors.InvalidSchema(nil, `document declares both "layout" and "item"`)
	case doc.Item != nil:
		it, err := buildItem(*doc.Item, nil)
		if err != nil {
			return nil, err
		}
		return layout.Single(it)
	case doc.Layout != nil:
		fields, err := buildFields(doc.Layout, nil)
		if err != nil {
			return nil, err
		}
		return layout.Struct(fields...)
	}
	return nil, errors.InvalidSchema(nil, `document must declare "layout" or "item"`)
}

func buildFields(defs []fieldDef, path []string) ([]layout.Field, error) {
	fields := make([]layout.Field, 0, len(defs))
	for _, d := range defs {
		fpath := make([]string, len(path)+1)
		copy(fpath, path)
		fpath[len(path)] = d.Name
		it, err := buildItem(d.itemDef, fpath)
		if err != nil {
			return nil, err
		}
		fields = append(fields, layout.F(d.Name, it))
	}
	return fields, nil
}

func buildItem(d itemDef, path []string) (layout.Item, error) {
	it, err := baseItem(d, path)
	if err != nil {
		return layout.Item{}, err
	}

	if d.Const.Kind != 0 {
		v, cerr := constValue(&d.Const, it, path)
		if cerr != nil {
			return layout.Item{}, cerr
		}
		it = it.WithConst(v)
	}
	if d.Omit {
		it = it.Omitted()
	}
	return it, nil
}

func baseItem(d itemDef, path []string) (layout.Item, error) {
	switch d.Type {
	case "":
		return layout.Item{}, errors.InvalidSchema(path, `item requires a "type"`)

	case "bytes":
		ls, err := itemLen(d, path)
		if err != nil {
			return layout.Item{}, err
		}
		return layout.Blob(ls), nil

	case "string":
		ls, err := itemLen(d, path)
		if err != nil {
			return layout.Item{}, err
		}
		return layout.Blob(ls).WithConversion(layout.UTF8()), nil

	case "block":
		ls, err := itemLen(d, path)
		if err != nil {
			return layout.Item{}, err
		}
		if d.Layout == nil {
			return layout.Item{}, errors.InvalidSchema(path, `block requires a nested "layout"`)
		}
		fields, err := buildFields(d.Layout, path)
		if err != nil {
			return layout.Item{}, err
		}
		sub, err := layout.Struct(fields...)
		if err != nil {
			return layout.Item{}, err
		}
		return layout.Block(sub, ls), nil

	case "array":
		ls, err := itemLen(d, path)
		if err != nil {
			return layout.Item{}, err
		}
		if d.Of == nil {
			return layout.Item{}, errors.InvalidSchema(path, `array requires an "of" element schema`)
		}
		elem, err := buildElem(*d.Of, path)
		if err != nil {
			return layout.Item{}, err
		}
		return layout.ArrayOf(elem, ls), nil

	case "switch":
		if len(d.Variants) == 0 {
			return layout.Item{}, errors.InvalidSchema(path, "switch requires variants")
		}
		width := d.Width
		if width == 0 {
			width = 1
		}
		variants := make([]layout.Variant, 0, len(d.Variants))
		for _, v := range d.Variants {
			fields, err := buildFields(v.Layout, path)
			if err != nil {
				return layout.Item{}, err
			}
			sub, err := layout.Struct(fields...)
			if err != nil {
				return layout.Item{}, err
			}
			variants = append(variants, layout.Case(v.Tag, v.Label, sub))
		}
		it := layout.SwitchOn(width, d.Tag, variants...)
		if o, set, err := explicitOrder(d, path); err != nil {
			return layout.Item{}, err
		} else if set {
			it = it.WithOrder(o)
		}
		return it, nil
	}

	it, err := numericItem(d.Type, path)
	if err != nil {
		return layout.Item{}, err
	}
	if o, set, oerr := explicitOrder(d, path); oerr != nil {
		return layout.Item{}, oerr
	} else if set {
		it = it.WithOrder(o)
	}
	return it, nil
}

func buildElem(e elemDef, path []string) (*layout.Layout, error) {
	if e.item != nil {
		it, err := buildItem(*e.item, path)
		if err != nil {
			return nil, err
		}
		return layout.Single(it)
	}
	fields, err := buildFields(e.fields, path)
	if err != nil {
		return nil, err
	}
	return layout.Struct(fields...)
}

// numericItem parses type names of the form u8/u16/.../u128 and
// s8/s16/..., with an optional le/be suffix (u32le, s64be).
func numericItem(name string, path []string) (layout.Item, error) {
	rest := name
	signed := false
	switch {
	case strings.HasPrefix(rest, "u"):
		rest = rest[1:]
	case strings.HasPrefix(rest, "s"):
		signed = true
		rest = rest[1:]
	default:
		return layout.Item{}, errors.InvalidSchema(path, fmt.Sprintf("unknown type %q", name))
	}

	order := layout.OrderUnset
	switch {
	case strings.HasSuffix(rest, "le"):
		order = layout.LittleEndian
		rest = rest[:len(rest)-2]
	case strings.HasSuffix(rest, "be"):
		order = layout.BigEndian
		rest = rest[:len(rest)-2]
	}

	bits, err := strconv.Atoi(rest)
	if err != nil || bits <= 0 || bits%8 != 0 {
		return layout.Item{}, errors.InvalidSchema(path, fmt.Sprintf("unknown type %q", name))
	}

	var it layout.Item
	if signed {
		it = layout.Int(bits / 8)
	} else {
		it = layout.Uint(bits / 8)
	}
	if order != layout.OrderUnset {
		it = it.WithOrder(order)
	}
	return it, nil
}

func itemLen(d itemDef, path []string) (layout.LenSpec, error) {
	if d.Length == nil {
		return layout.LenSpec{}, errors.InvalidSchema(path, `item requires a "length"`)
	}
	return d.Length.spec(), nil
}

// explicitOrder resolves an "order" key given on the item itself.
func explicitOrder(d itemDef, path []string) (layout.ByteOrder, bool, error) {
	if d.Order == "" {
		return layout.OrderUnset, false, nil
	}
	o, err := parseOrder(d.Order)
	if err != nil {
		return layout.OrderUnset, false, errors.InvalidSchema(path, err.Error())
	}
	return o, o != layout.OrderUnset, nil
}

func parseOrder(s string) (layout.ByteOrder, error) {
	switch s {
	case "", "default":
		return layout.OrderUnset, nil
	case "le", "little":
		return layout.LittleEndian, nil
	case "be", "big":
		return layout.BigEndian, nil
	}
	return layout.OrderUnset, fmt.Errorf("unknown byte order %q", s)
}

// constValue decodes a "const" node into the shape the item encodes:
// integers for numerics, bytes or strings for byte items.
func constValue(node *yaml.Node, it layout.Item, path []string) (any, *errors.Error) {
	switch it.Kind {
	case layout.KindNumeric:
		if it.Signed {
			var v int64
			if err := node.Decode(&v); err != nil {
				return nil, errors.InvalidSchema(path, "const: "+err.Error())
			}
			return v, nil
		}
		var v uint64
		if err := node.Decode(&v); err != nil {
			return nil, errors.InvalidSchema(path, "const: "+err.Error())
		}
		return v, nil

	case layout.KindBytes:
		var b []byte
		if err := node.Decode(&b); err == nil {
			return b, nil
		}
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, errors.InvalidSchema(path, "const: "+err.Error())
		}
		return []byte(s), nil
	}
	return nil, errors.InvalidSchema(path, "const is only valid on numeric and bytes items")
}

// ParseValue decodes a YAML value document into the generic shapes the
// engine consumes: map[string]any records, []any sequences, integers,
// strings, and !!binary byte blocks.
func ParseValue(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidValue, err, "yaml parse failed")
	}
	return v, nil
}
