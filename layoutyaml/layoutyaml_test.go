package layoutyaml

import (
	"bytes"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/layout"
)

func mustParse(t *testing.T, src string) *layout.Layout {
	t.Helper()
	l, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return l
}

func TestParse_Header(t *testing.T) {
	l := mustParse(t, `
layout:
  - name: magic
    type: u32
    const: 0xCAFEF00D
  - name: version
    type: u8
  - name: name
    type: string
    length: {prefix: 1}
  - name: payload
    type: bytes
    length: remainder
`)

	value := map[string]any{
		"version": 2,
		"name":    "demo",
		"payload": []byte{1, 2, 3},
	}
	data, err := layout.Serialize(l, value)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := append([]byte{0xCA, 0xFE, 0xF0, 0x0D, 0x02, 0x04}, []byte("demo")...)
	want = append(want, 1, 2, 3)
	if !bytes.Equal(data, want) {
		t.Errorf("Serialize = % x, want % x", data, want)
	}

	v, err := layout.Deserialize(l, data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	m := v.(map[string]any)
	if m["magic"] != uint64(0xCAFEF00D) || m["name"] != "demo" {
		t.Errorf("decoded = %#v", m)
	}
}

func TestParse_NumericTypes(t *testing.T) {
	tests := []struct {
		typ   string
		value any
		want  []byte
	}{
		{"u8", 0xAB, []byte{0xAB}},
		{"u16", 0x0102, []byte{0x01, 0x02}},
		{"u16le", 0x0102, []byte{0x02, 0x01}},
		{"u32be", 1, []byte{0, 0, 0, 1}},
		{"s8", -1, []byte{0xFF}},
		{"s16le", -2, []byte{0xFE, 0xFF}},
		{"u48", uint64(0x010203040506), []byte{1, 2, 3, 4, 5, 6}},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			l := mustParse(t, "item:\n  type: "+tt.typ+"\n")
			data, err := layout.Serialize(l, tt.value)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}
			if !bytes.Equal(data, tt.want) {
				t.Errorf("Serialize = % x, want % x", data, tt.want)
			}
		})
	}
}

func TestParse_OrderKey(t *testing.T) {
	l := mustParse(t, `
layout:
  - name: v
    type: u16
    order: le
`)
	data, err := layout.Serialize(l, map[string]any{"v": 0x0102})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(data, []byte{0x02, 0x01}) {
		t.Errorf("Serialize = % x", data)
	}
}

func TestParse_ArrayAndBlock(t *testing.T) {
	l := mustParse(t, `
layout:
  - name: points
    type: array
    length: {prefix: 1}
    of:
      - name: x
        type: u16
      - name: y
        type: u16
  - name: footer
    type: block
    length: 2
    layout:
      - name: crc
        type: u16
`)

	value := map[string]any{
		"points": []any{
			map[string]any{"x": 1, "y": 2},
		},
		"footer": map[string]any{"crc": 0xBEEF},
	}
	data, err := layout.Serialize(l, value)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []byte{1, 0x00, 0x01, 0x00, 0x02, 0xBE, 0xEF}
	if !bytes.Equal(data, want) {
		t.Errorf("Serialize = % x, want % x", data, want)
	}

	v, err := layout.Deserialize(l, data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	got := v.(map[string]any)
	wantV := map[string]any{
		"points": []any{map[string]any{"x": uint64(1), "y": uint64(2)}},
		"footer": map[string]any{"crc": uint64(0xBEEF)},
	}
	if !reflect.DeepEqual(got, wantV) {
		t.Errorf("Deserialize = %#v, want %#v", got, wantV)
	}
}

func TestParse_ScalarElementArray(t *testing.T) {
	l := mustParse(t, `
item:
  type: array
  length: remainder
  of:
    type: u16le
`)
	v, err := layout.Deserialize(l, []byte{0x01, 0x00, 0x02, 0x00})
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	elems := v.([]any)
	if len(elems) != 2 || elems[0] != uint64(1) || elems[1] != uint64(2) {
		t.Errorf("elems = %v", elems)
	}
}

func TestParse_Switch(t *testing.T) {
	l := mustParse(t, `
item:
  type: switch
  tag: kind
  width: 1
  variants:
    - tag: 1
      label: ping
      layout:
        - name: seq
          type: u16
    - tag: 2
      label: bye
      layout:
        - name: code
          type: u8
`)

	data, err := layout.Serialize(l, map[string]any{"kind": "bye", "code": 7})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(data, []byte{2, 7}) {
		t.Errorf("Serialize = % x", data)
	}

	v, err := layout.Deserialize(l, []byte{1, 0x00, 0x09})
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	m := v.(map[string]any)
	if m["kind"] != "ping" || m["seq"] != uint64(9) {
		t.Errorf("decoded = %#v", m)
	}
}

func TestParse_OmitAndConst(t *testing.T) {
	l := mustParse(t, `
layout:
  - name: pad
    type: bytes
    length: 2
    omit: true
  - name: proto
    type: u8
    const: 4
  - name: n
    type: u8
`)
	data, err := layout.Serialize(l, map[string]any{"n": 1})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(data, []byte{0, 0, 4, 1}) {
		t.Errorf("Serialize = % x", data)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty document", "{}\n"},
		{"both layout and item", "layout: [{name: a, type: u8}]\nitem: {type: u8}\n"},
		{"unknown type", "item: {type: f32}\n"},
		{"bad bit width", "item: {type: u12}\n"},
		{"missing length", "item: {type: bytes}\n"},
		{"array without of", "item: {type: array, length: 2}\n"},
		{"block without layout", "item: {type: block, length: 4}\n"},
		{"switch without variants", "item: {type: switch, tag: kind}\n"},
		{"bad order", "item: {type: u16, order: middle}\n"},
		{"duplicate fields", "layout: [{name: a, type: u8}, {name: a, type: u8}]\n"},
		{"not yaml", ":\n  - [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Phase != errors.PhaseSchema {
				t.Errorf("expected schema-phase *errors.Error, got %v", err)
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue([]byte("version: 2\nname: demo\npayload: !!binary AQID\n"))
	if err != nil {
		t.Fatalf("ParseValue: %v", err)
	}
	m := v.(map[string]any)
	if m["version"] != 2 || m["name"] != "demo" {
		t.Errorf("value = %#v", m)
	}
	if !bytes.Equal(m["payload"].([]byte), []byte{1, 2, 3}) {
		t.Errorf("payload = %v", m["payload"])
	}
}
