package num

import "math/big"

// NativeMax is the widest integer handled with uint64/int64 arithmetic.
// Wider items go through math/big.
const NativeMax = 8

// FitsUnsigned reports whether v fits an unsigned integer of the given
// byte width. Width must be in [1, NativeMax].
func FitsUnsigned(v uint64, width int) bool {
	if width >= NativeMax {
		return true
	}
	return v < 1<<(8*uint(width))
}

// FitsSigned reports whether v fits a two's complement integer of the
// given byte width. Width must be in [1, NativeMax].
func FitsSigned(v int64, width int) bool {
	if width >= NativeMax {
		return true
	}
	limit := int64(1) << (8*uint(width) - 1)
	return v >= -limit && v < limit
}

// PutUint writes the low `width` bytes of v into dst[:width].
func PutUint(dst []byte, v uint64, width int, little bool) {
	if little {
		for i := 0; i < width; i++ {
			dst[i] = byte(v >> (8 * uint(i)))
		}
		return
	}
	for i := 0; i < width; i++ {
		dst[width-1-i] = byte(v >> (8 * uint(i)))
	}
}

// Uint reads len(src) bytes as an unsigned integer. len(src) must be in
// [1, NativeMax].
func Uint(src []byte, little bool) uint64 {
	var v uint64
	if little {
		for i := len(src) - 1; i >= 0; i-- {
			v = v<<8 | uint64(src[i])
		}
		return v
	}
	for i := 0; i < len(src); i++ {
		v = v<<8 | uint64(src[i])
	}
	return v
}

// Int reads len(src) bytes as a two's complement signed integer,
// sign-extending to 64 bits.
func Int(src []byte, little bool) int64 {
	v := Uint(src, little)
	width := len(src)
	if width >= NativeMax {
		return int64(v)
	}
	shift := 64 - 8*uint(width)
	return int64(v<<shift) >> shift
}

// FitsBigUnsigned reports whether v fits an unsigned integer of the
// given byte width.
func FitsBigUnsigned(v *big.Int, width int) bool {
	return v.Sign() >= 0 && v.BitLen() <= 8*width
}

// FitsBigSigned reports whether v fits a two's complement integer of
// the given byte width.
func FitsBigSigned(v *big.Int, width int) bool {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(8*width-1))
	if v.Sign() >= 0 {
		return v.Cmp(limit) < 0
	}
	neg := new(big.Int).Neg(limit)
	return v.Cmp(neg) >= 0
}

// PutBig writes v into dst as a two's complement integer spanning the
// whole of dst. The caller must have range-checked v first.
func PutBig(dst []byte, v *big.Int, little bool) {
	u := v
	if v.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*len(dst)))
		u = new(big.Int).Add(mod, v)
	}
	u.FillBytes(dst)
	if little {
		reverse(dst)
	}
}

// BigUint reads len(src) bytes as an unsigned arbitrary-precision
// integer.
func BigUint(src []byte, little bool) *big.Int {
	buf := src
	if little {
		buf = make([]byte, len(src))
		copy(buf, src)
		reverse(buf)
	}
	return new(big.Int).SetBytes(buf)
}

// BigInt reads len(src) bytes as a two's complement signed
// arbitrary-precision integer.
func BigInt(src []byte, little bool) *big.Int {
	v := BigUint(src, little)
	if len(src) > 0 && v.Bit(8*len(src)-1) == 1 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*len(src)))
		v.Sub(v, mod)
	}
	return v
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
