package layout

import (
	"fmt"

	"github.com/wippyai/binlayout/errors"
)

// Transform wraps a layout in a Custom conversion pair. The returned
// layout decodes to decode(innerValue) and encodes encode(outerValue);
// the byte layout is unchanged. Transforms compose: wrapping an already
// converted layout chains the pairs.
func Transform(l *Layout, decode, encode func(any) (any, error)) *Layout {
	out := l.clone()
	inner := l.conv
	if inner == nil {
		out.conv = &convPair{decode: decode, encode: encode}
		return out
	}
	out.conv = &convPair{
		decode: func(v any) (any, error) {
			mid, err := inner.decode(v)
			if err != nil {
				return nil, err
			}
			return decode(mid)
		},
		encode: func(v any) (any, error) {
			mid, err := encode(v)
			if err != nil {
				return nil, err
			}
			return inner.encode(mid)
		},
	}
	return out
}

// Spread flattens the named field, whose decoded value must itself be a
// record (a nested Bytes sub-record or a Switch), into the parent
// record. The byte layout is unchanged; only the decoded shape differs.
func Spread(l *Layout, name string) (*Layout, error) {
	if !l.Proper() {
		return nil, errors.NotProper("Spread requires a proper layout")
	}

	var target *Item
	for i := range l.fields {
		if l.fields[i].Name == name {
			target = &l.fields[i].Item
			break
		}
	}
	if target == nil {
		return nil, errors.FieldMissing(errors.PhaseSchema, nil, name)
	}
	if target.Omit {
		return nil, errors.InvalidSchema([]string{name}, "cannot spread an omitted field")
	}

	subNames, err := recordFieldNames(*target)
	if err != nil {
		return nil, err
	}

	for _, parent := range l.FieldNames() {
		if parent == name {
			continue
		}
		for _, sub := range subNames {
			if parent == sub {
				return nil, errors.DuplicateField([]string{name}, sub)
			}
		}
	}

	subSet := make(map[string]struct{}, len(subNames))
	for _, n := range subNames {
		subSet[n] = struct{}{}
	}

	flatten := func(v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("spread %q: value is %s, want map[string]any", name, typeName(v))
		}
		sub, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("spread %q: field missing", name)
		}
		subm, ok := sub.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("spread %q: field is %s, want map[string]any", name, typeName(sub))
		}
		out := make(map[string]any, len(m)+len(subm)-1)
		for k, val := range m {
			if k != name {
				out[k] = val
			}
		}
		for k, val := range subm {
			out[k] = val
		}
		return out, nil
	}

	nest := func(v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("spread %q: value is %s, want map[string]any", name, typeName(v))
		}
		out := make(map[string]any, len(m))
		sub := make(map[string]any)
		for k, val := range m {
			if _, isSub := subSet[k]; isSub {
				sub[k] = val
			} else {
				out[k] = val
			}
		}
		out[name] = sub
		return out, nil
	}

	return Transform(l, flatten, nest), nil
}

// Nest is the inverse of Spread: it groups the given flat field names
// of the decoded record into a nested record under fieldName.
func Nest(l *Layout, fieldName string, subNames []string) (*Layout, error) {
	if len(subNames) == 0 {
		return nil, errors.InvalidSchema([]string{fieldName}, "Nest requires at least one field name")
	}
	subSet := make(map[string]struct{}, len(subNames))
	for _, n := range subNames {
		subSet[n] = struct{}{}
	}

	group := func(v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("nest %q: value is %s, want map[string]any", fieldName, typeName(v))
		}
		out := make(map[string]any, len(m))
		sub := make(map[string]any, len(subNames))
		for k, val := range m {
			if _, isSub := subSet[k]; isSub {
				sub[k] = val
			} else {
				out[k] = val
			}
		}
		out[fieldName] = sub
		return out, nil
	}

	flatten := func(v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("nest %q: value is %s, want map[string]any", fieldName, typeName(v))
		}
		sub, ok := m[fieldName]
		if !ok {
			return nil, fmt.Errorf("nest %q: field missing", fieldName)
		}
		subm, ok := sub.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("nest %q: field is %s, want map[string]any", fieldName, typeName(sub))
		}
		out := make(map[string]any, len(m)+len(subm)-1)
		for k, val := range m {
			if k != fieldName {
				out[k] = val
			}
		}
		for k, val := range subm {
			out[k] = val
		}
		return out, nil
	}

	return Transform(l, group, flatten), nil
}

// UnwrapSingleton exposes the decoded value of a proper layout's single
// non-omitted item directly instead of wrapping it in a one-field
// record.
func UnwrapSingleton(l *Layout) (*Layout, error) {
	if !l.Proper() {
		return nil, errors.NotProper("UnwrapSingleton requires a proper layout")
	}
	names := l.FieldNames()
	if len(names) != 1 {
		return nil, errors.InvalidSchema(nil, fmt.Sprintf("layout has %d non-omitted items, want exactly 1", len(names)))
	}
	name := names[0]

	unwrap := func(v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unwrap %q: value is %s, want map[string]any", name, typeName(v))
		}
		inner, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("unwrap %q: field missing", name)
		}
		return inner, nil
	}

	wrap := func(v any) (any, error) {
		return map[string]any{name: v}, nil
	}

	return Transform(l, unwrap, wrap), nil
}

// WrapSingleton is the inverse of UnwrapSingleton: it exposes a layout
// decoding to a bare value as a one-field record under name.
func WrapSingleton(l *Layout, name string) *Layout {
	wrap := func(v any) (any, error) {
		return map[string]any{name: v}, nil
	}
	unwrap := func(v any) (any, error) {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("wrap %q: value is %s, want map[string]any", name, typeName(v))
		}
		inner, ok := m[name]
		if !ok {
			return nil, fmt.Errorf("wrap %q: field missing", name)
		}
		return inner, nil
	}
	return Transform(l, wrap, unwrap)
}

// recordFieldNames lists the decoded field names an item can expose
// when its value is a record.
func recordFieldNames(it Item) ([]string, error) {
	switch it.Kind {
	case KindBytes:
		if it.Nested == nil || !it.Nested.Proper() {
			return nil, errors.InvalidSchema(nil, "field does not decode to a record")
		}
		return it.Nested.FieldNames(), nil
	case KindSwitch:
		names := []string{it.tagName()}
		seen := map[string]struct{}{it.tagName(): {}}
		for _, v := range it.Variants {
			for _, n := range v.Layout.FieldNames() {
				if _, dup := seen[n]; !dup {
					seen[n] = struct{}{}
					names = append(names, n)
				}
			}
		}
		return names, nil
	}
	return nil, errors.InvalidSchema(nil, "field does not decode to a record")
}
