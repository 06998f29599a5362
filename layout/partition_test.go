package layout

import (
	"reflect"
	"testing"

	"github.com/wippyai/binlayout/errors"
)

func headerLayout() *Layout {
	return MustStruct(
		F("magic", Uint(4).WithConst(uint64(0x89ABCDEF))),
		F("reserved", Blob(FixedLen(2)).Omitted()),
		F("version", Uint(1)),
		F("payload", Blob(PrefixLen(2, OrderUnset))),
	)
}

func TestPartition_FixedAndDynamic(t *testing.T) {
	l := headerLayout()

	fixed := FixedItems(l)
	if fixed == nil {
		t.Fatal("FixedItems = nil")
	}
	var fixedNames []string
	for _, f := range fixed.Fields() {
		fixedNames = append(fixedNames, f.Name)
	}
	if !reflect.DeepEqual(fixedNames, []string{"magic", "reserved"}) {
		t.Errorf("fixed fields = %v", fixedNames)
	}

	dyn := DynamicItems(l)
	if dyn == nil {
		t.Fatal("DynamicItems = nil")
	}
	var dynNames []string
	for _, f := range dyn.Fields() {
		dynNames = append(dynNames, f.Name)
	}
	if !reflect.DeepEqual(dynNames, []string{"version", "payload"}) {
		t.Errorf("dynamic fields = %v", dynNames)
	}
}

func TestPartition_Disjoint(t *testing.T) {
	// Every field lands in exactly one partition.
	l := headerLayout()
	fixed := FixedItems(l)
	dyn := DynamicItems(l)

	seen := make(map[string]int)
	for _, f := range fixed.Fields() {
		seen[f.Name]++
	}
	for _, f := range dyn.Fields() {
		seen[f.Name]++
	}
	if len(seen) != len(l.Fields()) {
		t.Errorf("partition covers %d of %d fields", len(seen), len(l.Fields()))
	}
	for name, n := range seen {
		if n != 1 {
			t.Errorf("field %q appears in %d partitions", name, n)
		}
	}
}

func TestPartition_Empty(t *testing.T) {
	allDyn := MustStruct(F("a", Uint(1)), F("b", Blob(Remainder())))
	if FixedItems(allDyn) != nil {
		t.Error("FixedItems should be nil for a fully dynamic layout")
	}

	allFixed := MustStruct(
		F("magic", Uint(2).WithConst(uint64(7))),
		F("", Blob(FixedLen(1)).Omitted()),
	)
	if DynamicItems(allFixed) != nil {
		t.Error("DynamicItems should be nil for a fully fixed layout")
	}
}

func TestPartition_CustomConversionIsDynamic(t *testing.T) {
	l := MustStruct(
		F("name", Blob(PrefixLen(1, OrderUnset)).WithConversion(UTF8())),
	)
	if FixedItems(l) != nil {
		t.Error("custom-converted field must not be fixed")
	}
	dyn := DynamicItems(l)
	if dyn == nil || len(dyn.Fields()) != 1 {
		t.Fatalf("DynamicItems = %v", dyn)
	}
}

func TestPartition_NestedSplit(t *testing.T) {
	l := MustStruct(
		F("hdr", Block(MustStruct(
			F("magic", Uint(2).WithConst(uint64(1))),
			F("seq", Uint(2)),
		), FixedLen(4))),
	)

	fixed := FixedItems(l)
	if fixed == nil {
		t.Fatal("FixedItems = nil")
	}
	fhdr := fixed.Fields()[0].Item
	if fhdr.Nested == nil || len(fhdr.Nested.Fields()) != 1 || fhdr.Nested.Fields()[0].Name != "magic" {
		t.Errorf("fixed nested = %+v", fhdr.Nested)
	}

	dyn := DynamicItems(l)
	if dyn == nil {
		t.Fatal("DynamicItems = nil")
	}
	dhdr := dyn.Fields()[0].Item
	if dhdr.Nested == nil || len(dhdr.Nested.Fields()) != 1 || dhdr.Nested.Fields()[0].Name != "seq" {
		t.Errorf("dynamic nested = %+v", dhdr.Nested)
	}
}

func TestAddFixedValues(t *testing.T) {
	l := headerLayout()

	full, err := AddFixedValues(l, map[string]any{
		"version": uint64(3),
		"payload": []byte{1, 2},
	})
	if err != nil {
		t.Fatalf("AddFixedValues: %v", err)
	}
	m := full.(map[string]any)
	want := map[string]any{
		"magic":   uint64(0x89ABCDEF),
		"version": uint64(3),
		"payload": []byte{1, 2},
	}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("AddFixedValues = %#v, want %#v", m, want)
	}
}

func TestAddFixedValues_RoundTripsThroughDecode(t *testing.T) {
	// Decoding bytes and merging fixed values onto the dynamic portion
	// must agree.
	l := headerLayout()
	value := map[string]any{"version": 5, "payload": []byte("abc")}

	data, err := Serialize(l, value)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	decoded, err := Deserialize(l, data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	merged, err := AddFixedValues(l, map[string]any{
		"version": uint64(5),
		"payload": []byte("abc"),
	})
	if err != nil {
		t.Fatalf("AddFixedValues: %v", err)
	}
	if !reflect.DeepEqual(decoded, merged) {
		t.Errorf("decoded = %#v, merged = %#v", decoded, merged)
	}
}

func TestAddFixedValues_Nested(t *testing.T) {
	l := MustStruct(
		F("hdr", Block(MustStruct(
			F("magic", Uint(2).WithConst(uint64(0xFACE))),
			F("seq", Uint(2)),
		), FixedLen(4))),
		F("body", Blob(Remainder())),
	)

	full, err := AddFixedValues(l, map[string]any{
		"hdr":  map[string]any{"seq": uint64(9)},
		"body": []byte{7},
	})
	if err != nil {
		t.Fatalf("AddFixedValues: %v", err)
	}
	m := full.(map[string]any)
	hdr := m["hdr"].(map[string]any)
	if hdr["magic"] != uint64(0xFACE) || hdr["seq"] != uint64(9) {
		t.Errorf("hdr = %v", hdr)
	}
}

func TestAddFixedValues_SwitchVariant(t *testing.T) {
	l := MustStruct(
		F("msg", SwitchOn(1, "kind",
			Case(1, "hello", MustStruct(
				F("proto", Uint(1).WithConst(uint64(4))),
				F("who", Blob(PrefixLen(1, OrderUnset))),
			)),
			Case(2, "bye", MustStruct(F("code", Uint(1)))),
		)),
	)

	full, err := AddFixedValues(l, map[string]any{
		"msg": map[string]any{"kind": "hello", "who": []byte("x")},
	})
	if err != nil {
		t.Fatalf("AddFixedValues: %v", err)
	}
	msg := full.(map[string]any)["msg"].(map[string]any)
	if msg["kind"] != "hello" || msg["proto"] != uint64(4) {
		t.Errorf("msg = %v", msg)
	}
}

func TestAddFixedValues_Errors(t *testing.T) {
	l := headerLayout()

	_, err := AddFixedValues(l, map[string]any{"version": 1})
	wantErrKind(t, err, errors.PhaseEncode, errors.KindFieldMissing)

	wrapped := WrapSingleton(MustSingle(Uint(1)), "v")
	_, err = AddFixedValues(wrapped, map[string]any{"v": 1})
	wantErrKind(t, err, errors.PhaseEncode, errors.KindUnsupported)
}
