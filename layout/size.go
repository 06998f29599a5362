package layout

import (
	"github.com/wippyai/binlayout/errors"
)

// SizeOf computes the encoded byte length of value under the layout
// without producing any output. It mirrors the Serialize recursion and
// reports the same value errors.
func SizeOf(l *Layout, value any) (int, error) {
	return sizeLayout(l, value, nil)
}

// StaticSize determines from the schema alone whether every item has a
// value-independent size, and returns the definite total when so. Any
// length-prefixed or remainder item, and any switch, makes the size
// value-dependent.
func StaticSize(l *Layout) (int, bool) {
	if l.item != nil {
		return staticItemSize(*l.item)
	}
	total := 0
	for _, f := range l.fields {
		s, ok := staticItemSize(f.Item)
		if !ok {
			return 0, false
		}
		total += s
	}
	return total, true
}

func staticItemSize(it Item) (int, bool) {
	switch it.Kind {
	case KindNumeric:
		return it.Size, true
	case KindBytes:
		// A fixed window is static regardless of what nests inside it.
		if it.Len.Kind == LenFixed {
			return it.Len.N, true
		}
		return 0, false
	case KindArray:
		if it.Len.Kind != LenFixed {
			return 0, false
		}
		s, ok := StaticSize(it.Elem)
		if !ok {
			return 0, false
		}
		return it.Len.N * s, true
	case KindSwitch:
		// Size depends on the runtime-chosen variant.
		return 0, false
	}
	return 0, false
}

func sizeLayout(l *Layout, value any, path []string) (int, error) {
	if l.conv != nil {
		raw, err := l.conv.encode(value)
		if err != nil {
			return 0, errors.ConversionFailed(errors.PhaseEncode, path, err)
		}
		value = raw
	}

	if l.item != nil {
		return sizeItem(*l.item, value, path)
	}

	m, e := asRecord(value, errors.PhaseEncode, path)
	if e != nil {
		return 0, e
	}
	return sizeFields(l.fields, m, path)
}

func sizeFields(fields []Field, m map[string]any, path []string) (int, error) {
	total := 0
	for _, f := range fields {
		fpath := childPath(path, f.Name)

		var v any
		if !f.Item.Omit {
			if _, fixed := f.Item.fixedConv(); !fixed {
				var ok bool
				v, ok = m[f.Name]
				if !ok {
					return 0, errors.FieldMissing(errors.PhaseEncode, path, f.Name)
				}
			}
		}

		s, err := sizeItem(f.Item, v, fpath)
		if err != nil {
			return 0, err
		}
		total += s
	}
	return total, nil
}

func sizeItem(it Item, value any, path []string) (int, error) {
	if f, ok := it.fixedConv(); ok {
		value = f.Raw
	} else if c, ok := it.customConv(); ok {
		raw, err := c.Encode(value)
		if err != nil {
			return 0, errors.ConversionFailed(errors.PhaseEncode, path, err)
		}
		value = raw
	}

	switch it.Kind {
	case KindNumeric:
		return it.Size, nil

	case KindBytes:
		var n int
		if it.Nested != nil {
			s, err := sizeLayout(it.Nested, value, path)
			if err != nil {
				return 0, err
			}
			n = s
		} else if value == nil && it.Omit {
			n = it.Len.N
		} else {
			b, e := asBytes(value, errors.PhaseEncode, path)
			if e != nil {
				return 0, e
			}
			n = len(b)
		}
		if it.Len.Kind == LenFixed && n != it.Len.N {
			return 0, errors.LengthMismatch(errors.PhaseEncode, path, it.Len.N, n)
		}
		if it.Len.Kind == LenPrefix {
			return it.Len.PrefixWidth + n, nil
		}
		return n, nil

	case KindArray:
		elems, e := asSlice(value, errors.PhaseEncode, path)
		if e != nil {
			return 0, e
		}
		if it.Len.Kind == LenFixed && len(elems) != it.Len.N {
			return 0, errors.LengthMismatch(errors.PhaseEncode, path, it.Len.N, len(elems))
		}
		total := 0
		if it.Len.Kind == LenPrefix {
			total = it.Len.PrefixWidth
		}
		for i, el := range elems {
			s, err := sizeLayout(it.Elem, el, indexPath(path, i))
			if err != nil {
				return 0, err
			}
			total += s
		}
		return total, nil

	case KindSwitch:
		m, e := asRecord(value, errors.PhaseEncode, path)
		if e != nil {
			return 0, e
		}
		tagVal, ok := m[it.tagName()]
		if !ok {
			return 0, errors.FieldMissing(errors.PhaseEncode, path, it.tagName())
		}
		v, found := matchVariant(it, tagVal)
		if !found {
			return 0, errors.UnknownVariant(errors.PhaseEncode, path, tagVal)
		}
		s, err := sizeFields(v.Layout.fields, m, path)
		if err != nil {
			return 0, err
		}
		return it.Size + s, nil
	}

	return 0, errors.Unsupported(errors.PhaseEncode, "item kind: "+it.Kind.String())
}
