package layout

import (
	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/layout/internal/num"
)

// Serialize encodes value against the layout and returns the bytes.
// It either fully succeeds or fails with no partial output; the caller
// never observes a half-written buffer.
func Serialize(l *Layout, value any) ([]byte, error) {
	buf := getBuf()
	defer putBuf(buf)

	if err := encodeLayout(l, value, buf, nil); err != nil {
		return nil, err
	}

	debugf("serialize: %d bytes", len(*buf))

	// Return a copy since we're returning the buffer to pool
	out := make([]byte, len(*buf))
	copy(out, *buf)
	return out, nil
}

func encodeLayout(l *Layout, value any, buf *[]byte, path []string) error {
	if l.conv != nil {
		raw, err := l.conv.encode(value)
		if err != nil {
			return errors.ConversionFailed(errors.PhaseEncode, path, err)
		}
		value = raw
	}

	if l.item != nil {
		return encodeItem(*l.item, value, buf, path)
	}

	m, e := asRecord(value, errors.PhaseEncode, path)
	if e != nil {
		return e
	}
	return encodeFields(l.fields, m, buf, path)
}

func encodeFields(fields []Field, m map[string]any, buf *[]byte, path []string) error {
	for _, f := range fields {
		fpath := childPath(path, f.Name)

		// Omitted and Fixed-conversion fields are synthesized; the
		// caller never supplies them.
		if f.Item.Omit {
			if err := encodeItem(f.Item, nil, buf, fpath); err != nil {
				return err
			}
			continue
		}
		if _, fixed := f.Item.fixedConv(); fixed {
			if err := encodeItem(f.Item, nil, buf, fpath); err != nil {
				return err
			}
			continue
		}

		v, ok := m[f.Name]
		if !ok {
			return errors.FieldMissing(errors.PhaseEncode, path, f.Name)
		}
		if err := encodeItem(f.Item, v, buf, fpath); err != nil {
			return err
		}
	}
	return nil
}

func encodeItem(it Item, value any, buf *[]byte, path []string) error {
	if f, ok := it.fixedConv(); ok {
		value = f.Raw
	} else if c, ok := it.customConv(); ok {
		raw, err := c.Encode(value)
		if err != nil {
			return errors.ConversionFailed(errors.PhaseEncode, path, err)
		}
		value = raw
	}

	switch it.Kind {
	case KindNumeric:
		return encodeNumeric(it, value, buf, path)
	case KindBytes:
		return encodeBytes(it, value, buf, path)
	case KindArray:
		return encodeArray(it, value, buf, path)
	case KindSwitch:
		return encodeSwitch(it, value, buf, path)
	default:
		return errors.Unsupported(errors.PhaseEncode, "item kind: "+it.Kind.String())
	}
}

func encodeNumeric(it Item, value any, buf *[]byte, path []string) error {
	if value == nil && it.Omit {
		grow(buf, it.Size) // zero padding
		return nil
	}

	if it.Size <= num.NativeMax {
		if it.Signed {
			v, ok := num.CoerceToInt64(value)
			if !ok {
				return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "integer")
			}
			if !num.FitsSigned(v, it.Size) {
				return errors.OutOfRange(path, value, it.Size, true)
			}
			num.PutUint(grow(buf, it.Size), uint64(v), it.Size, it.Order.little())
			return nil
		}

		v, ok := num.CoerceToUint64(value)
		if !ok {
			// A representable negative integer is a range error, not a
			// type error.
			if _, isInt := num.CoerceToInt64(value); isInt {
				return errors.OutOfRange(path, value, it.Size, false)
			}
			return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "unsigned integer")
		}
		if !num.FitsUnsigned(v, it.Size) {
			return errors.OutOfRange(path, value, it.Size, false)
		}
		num.PutUint(grow(buf, it.Size), v, it.Size, it.Order.little())
		return nil
	}

	b, ok := num.CoerceToBig(value)
	if !ok {
		return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), "integer or *big.Int")
	}
	if it.Signed {
		if !num.FitsBigSigned(b, it.Size) {
			return errors.OutOfRange(path, value, it.Size, true)
		}
	} else {
		if !num.FitsBigUnsigned(b, it.Size) {
			return errors.OutOfRange(path, value, it.Size, false)
		}
	}
	num.PutBig(grow(buf, it.Size), b, it.Order.little())
	return nil
}

func encodeBytes(it Item, value any, buf *[]byte, path []string) error {
	var content []byte
	switch {
	case it.Nested != nil:
		sub := getBuf()
		defer putBuf(sub)
		if err := encodeLayout(it.Nested, value, sub, path); err != nil {
			return err
		}
		content = *sub
	case value == nil && it.Omit:
		content = make([]byte, it.Len.N) // zero padding
	default:
		var e *errors.Error
		content, e = asBytes(value, errors.PhaseEncode, path)
		if e != nil {
			return e
		}
	}

	switch it.Len.Kind {
	case LenFixed:
		if len(content) != it.Len.N {
			return errors.LengthMismatch(errors.PhaseEncode, path, it.Len.N, len(content))
		}
	case LenPrefix:
		if err := writePrefix(buf, len(content), it.Len, path); err != nil {
			return err
		}
	}

	*buf = append(*buf, content...)
	return nil
}

func encodeArray(it Item, value any, buf *[]byte, path []string) error {
	elems, e := asSlice(value, errors.PhaseEncode, path)
	if e != nil {
		return e
	}

	switch it.Len.Kind {
	case LenFixed:
		if len(elems) != it.Len.N {
			return errors.LengthMismatch(errors.PhaseEncode, path, it.Len.N, len(elems))
		}
	case LenPrefix:
		if err := writePrefix(buf, len(elems), it.Len, path); err != nil {
			return err
		}
	}

	// Element iteration is an explicit loop; only nesting recurses.
	for i, el := range elems {
		if err := encodeLayout(it.Elem, el, buf, indexPath(path, i)); err != nil {
			return err
		}
	}
	return nil
}

func encodeSwitch(it Item, value any, buf *[]byte, path []string) error {
	m, e := asRecord(value, errors.PhaseEncode, path)
	if e != nil {
		return e
	}

	tagVal, ok := m[it.tagName()]
	if !ok {
		return errors.FieldMissing(errors.PhaseEncode, path, it.tagName())
	}
	v, found := matchVariant(it, tagVal)
	if !found {
		return errors.UnknownVariant(errors.PhaseEncode, path, tagVal)
	}

	num.PutUint(grow(buf, it.Size), v.Tag, it.Size, it.Order.little())
	return encodeFields(v.Layout.fields, m, buf, path)
}

// matchVariant resolves a decoded identifier, either a label string or
// any numeric value, to its variant.
func matchVariant(it Item, tagVal any) (Variant, bool) {
	if s, ok := tagVal.(string); ok {
		for _, v := range it.Variants {
			if v.Label != "" && v.Label == s {
				return v, true
			}
		}
		return Variant{}, false
	}
	if u, ok := num.CoerceToUint64(tagVal); ok {
		for _, v := range it.Variants {
			if v.Tag == u {
				return v, true
			}
		}
	}
	return Variant{}, false
}

func writePrefix(buf *[]byte, n int, ls LenSpec, path []string) error {
	if !num.FitsUnsigned(uint64(n), ls.PrefixWidth) {
		return errors.OutOfRange(path, n, ls.PrefixWidth, false)
	}
	num.PutUint(grow(buf, ls.PrefixWidth), uint64(n), ls.PrefixWidth, ls.PrefixOrder.little())
	return nil
}

// grow extends buf by n zero bytes and returns the appended window.
func grow(buf *[]byte, n int) []byte {
	off := len(*buf)
	*buf = append(*buf, make([]byte, n)...)
	return (*buf)[off:]
}
