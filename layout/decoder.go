package layout

import (
	"math"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/layout/internal/num"
)

// Safety limit to prevent memory exhaustion from hostile length
// prefixes.
const MaxArrayLen = 1 << 20

// reader is the decode cursor over the input slice.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) take(n int, path []string) ([]byte, *errors.Error) {
	if n < 0 || n > r.remaining() {
		return nil, errors.Truncated(path, n, r.remaining())
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Deserialize decodes data against the layout and returns the value.
// Trailing bytes beyond what the layout consumes are ignored; use a
// Remainder item to capture them.
func Deserialize(l *Layout, data []byte) (any, error) {
	r := &reader{data: data}
	v, err := decodeLayout(l, r, nil)
	if err != nil {
		return nil, err
	}
	debugf("deserialize: consumed %d of %d bytes", r.off, len(data))
	return v, nil
}

func decodeLayout(l *Layout, r *reader, path []string) (any, error) {
	var v any

	if l.item != nil {
		iv, err := decodeItem(*l.item, r, path)
		if err != nil {
			return nil, err
		}
		if !l.item.Omit {
			v = iv
		}
	} else {
		m := make(map[string]any, len(l.fields))
		if err := decodeFields(l.fields, m, r, path); err != nil {
			return nil, err
		}
		v = m
	}

	if l.conv != nil {
		out, err := l.conv.decode(v)
		if err != nil {
			return nil, errors.ConversionFailed(errors.PhaseDecode, path, err)
		}
		return out, nil
	}
	return v, nil
}

func decodeFields(fields []Field, m map[string]any, r *reader, path []string) error {
	for _, f := range fields {
		v, err := decodeItem(f.Item, r, childPath(path, f.Name))
		if err != nil {
			return err
		}
		if !f.Item.Omit {
			m[f.Name] = v
		}
	}
	return nil
}

func decodeItem(it Item, r *reader, path []string) (any, error) {
	var raw any
	var err error

	switch it.Kind {
	case KindNumeric:
		raw, err = decodeNumeric(it, r, path)
	case KindBytes:
		raw, err = decodeBytes(it, r, path)
	case KindArray:
		raw, err = decodeArray(it, r, path)
	case KindSwitch:
		raw, err = decodeSwitch(it, r, path)
	default:
		return nil, errors.Unsupported(errors.PhaseDecode, "item kind: "+it.Kind.String())
	}
	if err != nil {
		return nil, err
	}

	if f, ok := it.fixedConv(); ok {
		// Bytes are consumed; the decoded constant replaces them.
		return f.Decoded, nil
	}
	if c, ok := it.customConv(); ok {
		v, cerr := c.Decode(raw)
		if cerr != nil {
			return nil, errors.ConversionFailed(errors.PhaseDecode, path, cerr)
		}
		return v, nil
	}
	return raw, nil
}

func decodeNumeric(it Item, r *reader, path []string) (any, error) {
	b, err := r.take(it.Size, path)
	if err != nil {
		return nil, err
	}
	if it.Size <= num.NativeMax {
		if it.Signed {
			return num.Int(b, it.Order.little()), nil
		}
		return num.Uint(b, it.Order.little()), nil
	}
	if it.Signed {
		return num.BigInt(b, it.Order.little()), nil
	}
	return num.BigUint(b, it.Order.little()), nil
}

func decodeBytes(it Item, r *reader, path []string) (any, error) {
	var n int
	switch it.Len.Kind {
	case LenFixed:
		n = it.Len.N
	case LenPrefix:
		var err error
		n, err = readPrefix(r, it.Len, path)
		if err != nil {
			return nil, err
		}
	case LenRemainder:
		n = r.remaining()
	}

	b, err := r.take(n, path)
	if err != nil {
		return nil, err
	}

	if it.Nested != nil {
		sub := &reader{data: b}
		return decodeLayout(it.Nested, sub, path)
	}

	// Copy so the decoded value does not alias the caller's input.
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func decodeArray(it Item, r *reader, path []string) (any, error) {
	elems := []any{}

	if it.Len.Kind == LenRemainder {
		for i := 0; r.remaining() > 0; i++ {
			before := r.off
			v, err := decodeLayout(it.Elem, r, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			if r.off == before {
				return nil, errors.InvalidValue(errors.PhaseDecode, path, "array element consumed no bytes")
			}
			elems = append(elems, v)
		}
		return elems, nil
	}

	var count int
	switch it.Len.Kind {
	case LenFixed:
		count = it.Len.N
	case LenPrefix:
		var err error
		count, err = readPrefix(r, it.Len, path)
		if err != nil {
			return nil, err
		}
		if count > MaxArrayLen {
			return nil, errors.InvalidValue(errors.PhaseDecode, path, "element count exceeds maximum")
		}
	}

	// Reject impossible counts before allocating when the element size
	// is statically known.
	if s, ok := StaticSize(it.Elem); ok && s > 0 && count > r.remaining()/s {
		return nil, errors.Truncated(path, count*s, r.remaining())
	}

	for i := 0; i < count; i++ {
		v, err := decodeLayout(it.Elem, r, indexPath(path, i))
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return elems, nil
}

func decodeSwitch(it Item, r *reader, path []string) (any, error) {
	b, err := r.take(it.Size, path)
	if err != nil {
		return nil, err
	}
	u := num.Uint(b, it.Order.little())

	var matched *Variant
	for i := range it.Variants {
		if it.Variants[i].Tag == u {
			matched = &it.Variants[i]
			break
		}
	}
	if matched == nil {
		return nil, errors.UnknownVariant(errors.PhaseDecode, path, u)
	}

	m := make(map[string]any, len(matched.Layout.fields)+1)
	if matched.Label != "" {
		m[it.tagName()] = matched.Label
	} else {
		m[it.tagName()] = u
	}
	if err := decodeFields(matched.Layout.fields, m, r, path); err != nil {
		return nil, err
	}
	return m, nil
}

func readPrefix(r *reader, ls LenSpec, path []string) (int, error) {
	b, err := r.take(ls.PrefixWidth, path)
	if err != nil {
		return 0, err
	}
	u := num.Uint(b, ls.PrefixOrder.little())
	if u > uint64(math.MaxInt) {
		return 0, errors.InvalidValue(errors.PhaseDecode, path, "length prefix overflows int")
	}
	return int(u), nil
}
