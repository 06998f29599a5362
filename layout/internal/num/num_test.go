package num

import (
	"bytes"
	"math"
	"math/big"
	"testing"
)

func TestPutUint_Uint(t *testing.T) {
	tests := []struct {
		name   string
		v      uint64
		width  int
		little bool
		want   []byte
	}{
		{"u8", 0x2A, 1, false, []byte{0x2A}},
		{"u16_be", 0x1234, 2, false, []byte{0x12, 0x34}},
		{"u16_le", 0x1234, 2, true, []byte{0x34, 0x12}},
		{"u24_be", 0x010203, 3, false, []byte{0x01, 0x02, 0x03}},
		{"u24_le", 0x010203, 3, true, []byte{0x03, 0x02, 0x01}},
		{"u64_be", 0x0102030405060708, 8, false, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"u64_le", 0x0102030405060708, 8, true, []byte{8, 7, 6, 5, 4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]byte, tt.width)
			PutUint(got, tt.v, tt.width, tt.little)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("PutUint = %x, want %x", got, tt.want)
			}
			if back := Uint(got, tt.little); back != tt.v {
				t.Errorf("Uint = %#x, want %#x", back, tt.v)
			}
		})
	}
}

func TestInt_SignExtension(t *testing.T) {
	tests := []struct {
		name   string
		src    []byte
		little bool
		want   int64
	}{
		{"minus_one_1byte", []byte{0xFF}, false, -1},
		{"minus_one_3byte", []byte{0xFF, 0xFF, 0xFF}, false, -1},
		{"min_2byte", []byte{0x80, 0x00}, false, -32768},
		{"max_2byte", []byte{0x7F, 0xFF}, false, 32767},
		{"le_negative", []byte{0xFE, 0xFF}, true, -2},
		{"positive", []byte{0x00, 0x2A}, false, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Int(tt.src, tt.little); got != tt.want {
				t.Errorf("Int = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFits(t *testing.T) {
	if !FitsUnsigned(255, 1) || FitsUnsigned(256, 1) {
		t.Error("unsigned width-1 bounds wrong")
	}
	if !FitsUnsigned(math.MaxUint64, 8) {
		t.Error("width-8 should fit all uint64")
	}
	if !FitsSigned(127, 1) || FitsSigned(128, 1) {
		t.Error("signed width-1 upper bound wrong")
	}
	if !FitsSigned(-128, 1) || FitsSigned(-129, 1) {
		t.Error("signed width-1 lower bound wrong")
	}
	for width := 1; width <= 6; width++ {
		max := uint64(1)<<(8*uint(width)) - 1
		if !FitsUnsigned(max, width) {
			t.Errorf("width %d: max should fit", width)
		}
		if FitsUnsigned(max+1, width) {
			t.Errorf("width %d: max+1 should not fit", width)
		}
	}
}

func TestBigRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		v      *big.Int
		width  int
		signed bool
		little bool
	}{
		{"u128", new(big.Int).Lsh(big.NewInt(1), 100), 16, false, false},
		{"u128_le", new(big.Int).SetUint64(math.MaxUint64), 16, false, true},
		{"s96_negative", big.NewInt(-1234567890123), 12, true, false},
		{"s96_minus_one", big.NewInt(-1), 12, true, true},
		{"zero", big.NewInt(0), 16, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.width)
			PutBig(buf, tt.v, tt.little)
			var back *big.Int
			if tt.signed {
				back = BigInt(buf, tt.little)
			} else {
				back = BigUint(buf, tt.little)
			}
			if back.Cmp(tt.v) != 0 {
				t.Errorf("round trip = %s, want %s", back, tt.v)
			}
		})
	}
}

func TestFitsBig(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 96) // 2^96 for width 12
	if !FitsBigUnsigned(new(big.Int).Sub(limit, big.NewInt(1)), 12) {
		t.Error("2^96-1 should fit unsigned width 12")
	}
	if FitsBigUnsigned(limit, 12) {
		t.Error("2^96 should not fit unsigned width 12")
	}
	half := new(big.Int).Lsh(big.NewInt(1), 95)
	if FitsBigSigned(half, 12) {
		t.Error("2^95 should not fit signed width 12")
	}
	if !FitsBigSigned(new(big.Int).Neg(half), 12) {
		t.Error("-2^95 should fit signed width 12")
	}
	if FitsBigUnsigned(big.NewInt(-1), 12) {
		t.Error("negative should not fit unsigned")
	}
}

func TestCoerce(t *testing.T) {
	if v, ok := CoerceToUint64(int(42)); !ok || v != 42 {
		t.Error("int should coerce to uint64")
	}
	if _, ok := CoerceToUint64(int(-1)); ok {
		t.Error("negative int should not coerce to uint64")
	}
	if v, ok := CoerceToInt64(uint32(7)); !ok || v != 7 {
		t.Error("uint32 should coerce to int64")
	}
	if v, ok := CoerceToUint64(float64(1000)); !ok || v != 1000 {
		t.Error("integral float should coerce")
	}
	if _, ok := CoerceToUint64(float64(1.5)); ok {
		t.Error("fractional float should not coerce")
	}
	if v, ok := CoerceToBig(int64(-9)); !ok || v.Int64() != -9 {
		t.Error("int64 should coerce to big")
	}
	orig := big.NewInt(77)
	v, ok := CoerceToBig(orig)
	if !ok || v.Int64() != 77 {
		t.Error("*big.Int should coerce")
	}
	v.SetInt64(0)
	if orig.Int64() != 77 {
		t.Error("CoerceToBig must copy, not alias")
	}
	if _, ok := CoerceToUint64("nope"); ok {
		t.Error("string should not coerce")
	}
}
