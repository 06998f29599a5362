package layout

import (
	"bytes"
	"testing"
)

func TestWithByteOrder_Propagates(t *testing.T) {
	l := MustStruct(
		F("a", Uint(2)),
		F("b", Blob(PrefixLen(2, OrderUnset))),
		F("c", Block(MustStruct(F("inner", Uint(2))), FixedLen(2))),
		F("xs", ArrayOf(MustSingle(Uint(2)), PrefixLen(1, OrderUnset))),
	)
	le := WithByteOrder(l, LittleEndian)

	value := map[string]any{
		"a":  0x0102,
		"b":  []byte{0xAA},
		"c":  map[string]any{"inner": 0x0304},
		"xs": []any{0x0506},
	}
	data, err := Serialize(le, value)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []byte{
		0x02, 0x01, // a
		0x01, 0x00, 0xAA, // b prefix + content
		0x04, 0x03, // c.inner
		0x01, 0x06, 0x05, // xs prefix + element
	}
	if !bytes.Equal(data, want) {
		t.Errorf("Serialize = % x, want % x", data, want)
	}
}

func TestWithByteOrder_KeepsExplicitOrders(t *testing.T) {
	l := MustStruct(
		F("be", Uint(2).WithOrder(BigEndian)),
		F("free", Uint(2)),
	)
	le := WithByteOrder(l, LittleEndian)

	data, err := Serialize(le, map[string]any{"be": 0x0102, "free": 0x0304})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []byte{0x01, 0x02, 0x04, 0x03}
	if !bytes.Equal(data, want) {
		t.Errorf("Serialize = % x, want % x", data, want)
	}
}

func TestWithByteOrder_SwitchIdentifier(t *testing.T) {
	l := MustSingle(SwitchOn(2, "kind",
		Case(0x0102, "", MustStruct(F("v", Uint(2)))),
	))
	le := WithByteOrder(l, LittleEndian)

	data, err := Serialize(le, map[string]any{"kind": 0x0102, "v": 0x0304})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []byte{0x02, 0x01, 0x04, 0x03}
	if !bytes.Equal(data, want) {
		t.Errorf("Serialize = % x, want % x", data, want)
	}
}

func TestWithByteOrder_DoesNotMutateReceiver(t *testing.T) {
	l := MustSingle(Uint(2))
	_ = WithByteOrder(l, LittleEndian)

	data, err := Serialize(l, 0x0102)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(data, []byte{0x01, 0x02}) {
		t.Errorf("original layout changed: % x", data)
	}
}
