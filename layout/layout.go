package layout

import (
	"github.com/wippyai/binlayout/errors"
)

// Layout is a binary schema: either a single item, or a proper layout
// of ordered, uniquely named items forming a record. Layouts are
// immutable once constructed and safe to share across goroutines; every
// transforming operation returns a new Layout.
type Layout struct {
	item   *Item
	fields []Field
	conv   *convPair
}

// convPair is a whole-layout conversion chain installed by the
// combinators. decode maps the structural value to the exposed value,
// encode is its inverse.
type convPair struct {
	decode func(any) (any, error)
	encode func(any) (any, error)
}

// Field is one named item of a proper layout.
type Field struct {
	Name string
	Item Item
}

// F is shorthand for constructing a Field.
func F(name string, it Item) Field {
	return Field{Name: name, Item: it}
}

// Single builds a layout of one unnamed item. Its decoded value is the
// item's value directly rather than a record.
func Single(it Item) (*Layout, error) {
	if err := validateItem(it, nil, true); err != nil {
		return nil, err
	}
	return &Layout{item: &it}, nil
}

// Struct builds a proper layout from ordered named fields.
func Struct(fields ...Field) (*Layout, error) {
	if len(fields) == 0 {
		return nil, errors.InvalidSchema(nil, "layout requires at least one field")
	}
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if f.Name == "" && !f.Item.Omit {
			return nil, errors.InvalidSchema(nil, "only omitted fields may be unnamed")
		}
		if f.Name != "" {
			if _, dup := seen[f.Name]; dup {
				return nil, errors.DuplicateField(nil, f.Name)
			}
			seen[f.Name] = struct{}{}
		}
		if err := validateItem(f.Item, []string{f.Name}, i == len(fields)-1); err != nil {
			return nil, err
		}
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return &Layout{fields: out}, nil
}

// MustSingle is Single for package-level schema declarations; it panics
// on a malformed item.
func MustSingle(it Item) *Layout {
	l, err := Single(it)
	if err != nil {
		panic(err)
	}
	return l
}

// MustStruct is Struct for package-level schema declarations; it panics
// on a malformed layout.
func MustStruct(fields ...Field) *Layout {
	l, err := Struct(fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// Proper reports whether the layout is a named-field record.
func (l *Layout) Proper() bool {
	return l.item == nil
}

// Fields returns a copy of the proper layout's fields, nil for a
// single-item layout.
func (l *Layout) Fields() []Field {
	if l.fields == nil {
		return nil
	}
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// Item returns the single item of a non-proper layout.
func (l *Layout) Item() (Item, bool) {
	if l.item == nil {
		return Item{}, false
	}
	return *l.item, true
}

// FieldNames returns the names that appear in the decoded record, in
// layout order. Omitted fields are excluded.
func (l *Layout) FieldNames() []string {
	var names []string
	for _, f := range l.fields {
		if !f.Item.Omit {
			names = append(names, f.Name)
		}
	}
	return names
}

func (l *Layout) clone() *Layout {
	out := &Layout{conv: l.conv}
	if l.item != nil {
		it := l.item.clone()
		out.item = &it
	}
	if l.fields != nil {
		out.fields = make([]Field, len(l.fields))
		for i, f := range l.fields {
			out.fields[i] = Field{Name: f.Name, Item: f.Item.clone()}
		}
	}
	return out
}

// eachItem visits the layout's own items in order.
func (l *Layout) eachItem(fn func(name string, it Item) bool) {
	if l.item != nil {
		fn("", *l.item)
		return
	}
	for _, f := range l.fields {
		if !fn(f.Name, f.Item) {
			return
		}
	}
}

func validateItem(it Item, path []string, last bool) *errors.Error {
	if it.Omit {
		if _, fixed := it.fixedConv(); !fixed {
			zeroFill := it.Kind == KindNumeric ||
				(it.Kind == KindBytes && it.Nested == nil && it.Len.Kind == LenFixed)
			if !zeroFill {
				return errors.InvalidSchema(path, "omitted item requires a Fixed conversion")
			}
		}
	}

	switch it.Kind {
	case KindNumeric:
		if it.Size < 1 {
			return errors.InvalidSchema(path, "numeric width must be positive")
		}

	case KindBytes:
		if err := validateLen(it.Len, path); err != nil {
			return err
		}
		if it.Len.Kind == LenRemainder && !last {
			return errors.BadRemainder(path, pathTail(path))
		}

	case KindArray:
		if it.Elem == nil {
			return errors.InvalidSchema(path, "array requires an element layout")
		}
		if err := validateLen(it.Len, path); err != nil {
			return err
		}
		if it.Len.Kind == LenRemainder && !last {
			return errors.BadRemainder(path, pathTail(path))
		}
		if layoutHasRemainder(it.Elem) {
			return errors.InvalidSchema(path, "array element layout may not contain a remainder item")
		}

	case KindSwitch:
		if it.Size < 1 || it.Size > 8 {
			return errors.InvalidSchema(path, "switch identifier width must be in [1, 8]")
		}
		if len(it.Variants) == 0 {
			return errors.InvalidSchema(path, "switch requires at least one variant")
		}
		tags := make(map[uint64]struct{}, len(it.Variants))
		labels := make(map[string]struct{}, len(it.Variants))
		for _, v := range it.Variants {
			if v.Layout == nil {
				return errors.InvalidSchema(path, "switch variant requires a layout")
			}
			if !v.Layout.Proper() {
				return errors.NotProper("switch variant layouts must be proper layouts")
			}
			if v.Layout.conv != nil {
				return errors.InvalidSchema(path, "switch variant layouts may not carry conversions")
			}
			if _, dup := tags[v.Tag]; dup {
				return errors.New(errors.PhaseSchema, errors.KindInvalidSchema).
					Path(path...).
					Detail("duplicate variant identifier %d", v.Tag).
					Build()
			}
			tags[v.Tag] = struct{}{}
			if v.Label != "" {
				if _, dup := labels[v.Label]; dup {
					return errors.New(errors.PhaseSchema, errors.KindInvalidSchema).
						Path(path...).
						Detail("duplicate variant label %q", v.Label).
						Build()
				}
				labels[v.Label] = struct{}{}
			}
			for _, fn := range v.Layout.FieldNames() {
				if fn == it.tagName() {
					return errors.New(errors.PhaseSchema, errors.KindInvalidSchema).
						Path(path...).
						Detail("variant field %q collides with identifier name", fn).
						Build()
				}
			}
			if layoutHasRemainder(v.Layout) && !last {
				return errors.BadRemainder(path, pathTail(path))
			}
		}

	default:
		return errors.InvalidSchema(path, "unknown item kind")
	}

	return nil
}

func validateLen(ls LenSpec, path []string) *errors.Error {
	switch ls.Kind {
	case LenFixed:
		if ls.N < 0 {
			return errors.InvalidSchema(path, "fixed length must be non-negative")
		}
	case LenPrefix:
		if ls.PrefixWidth < 1 || ls.PrefixWidth > 8 {
			return errors.InvalidSchema(path, "length prefix width must be in [1, 8]")
		}
	case LenRemainder:
	default:
		return errors.InvalidSchema(path, "unknown length strategy")
	}
	return nil
}

// layoutHasRemainder reports whether any item of the layout (or its
// nested variants) consumes the remainder of the input.
func layoutHasRemainder(l *Layout) bool {
	if l == nil {
		return false
	}
	found := false
	l.eachItem(func(_ string, it Item) bool {
		switch it.Kind {
		case KindBytes, KindArray:
			if it.Len.Kind == LenRemainder {
				found = true
			}
		case KindSwitch:
			for _, v := range it.Variants {
				if layoutHasRemainder(v.Layout) {
					found = true
				}
			}
		}
		return !found
	})
	return found
}

func pathTail(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}
