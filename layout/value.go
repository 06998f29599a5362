package layout

import (
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/wippyai/binlayout/errors"
)

// Decoded value shapes, fixed by layout structure:
//
//	Numeric  -> uint64 / int64, *big.Int above 8 bytes
//	Bytes    -> []byte, or map[string]any for nested sub-records
//	Array    -> []any
//	Switch   -> map[string]any merging the identifier and variant fields
//	Proper   -> map[string]any
//
// Conversions substitute their own decoded types at any node.

// asRecord coerces a record value. A nil value is accepted as the empty
// record so layouts made entirely of omitted items encode without input.
func asRecord(value any, phase errors.Phase, path []string) (map[string]any, *errors.Error) {
	if value == nil {
		return map[string]any{}, nil
	}
	if m, ok := value.(map[string]any); ok {
		return m, nil
	}
	return nil, errors.TypeMismatch(phase, path, typeName(value), "map[string]any")
}

// asBytes coerces a raw byte value. Strings are accepted as their UTF-8
// bytes for convenience.
func asBytes(value any, phase errors.Phase, path []string) ([]byte, *errors.Error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, errors.TypeMismatch(phase, path, typeName(value), "[]byte")
}

// asSlice normalizes any Go slice or array value into []any.
func asSlice(value any, phase errors.Phase, path []string) ([]any, *errors.Error) {
	if v, ok := value.([]any); ok {
		return v, nil
	}
	rv := reflect.ValueOf(value)
	if value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, errors.TypeMismatch(phase, path, typeName(value), "slice")
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// childPath returns path extended by one component without aliasing the
// parent's backing array.
func childPath(path []string, name string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = name
	return out
}

func indexPath(path []string, i int) []string {
	return childPath(path, fmt.Sprintf("[%d]", i))
}

// UTF8 is a Custom conversion between raw bytes and Go strings,
// validating UTF-8 in both directions.
func UTF8() Custom {
	return Custom{
		Decode: func(raw any) (any, error) {
			b, ok := raw.([]byte)
			if !ok {
				return nil, fmt.Errorf("utf8: raw value is %s, want []byte", typeName(raw))
			}
			if !utf8.Valid(b) {
				return nil, fmt.Errorf("utf8: invalid byte sequence")
			}
			return string(b), nil
		},
		Encode: func(value any) (any, error) {
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("utf8: value is %s, want string", typeName(value))
			}
			if !utf8.ValidString(s) {
				return nil, fmt.Errorf("utf8: invalid string")
			}
			return []byte(s), nil
		},
	}
}
