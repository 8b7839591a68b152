package sm2ec

import (
	"math/bits"
)

const (
	limbBits = 52
	limbMask = 1<<limbBits - 1
	numLimbs = 5

	// elementLength is the byte length of every field element and scalar.
	elementLength = 32
)

// fe is a 256-bit integer held in five 52-bit limbs, least significant limb
// first. The modular routines below keep it strictly below their modulus
// and every limb below 2^52; feAdd, feSub and feMul do not reduce.
type fe [numLimbs]uint64

// feWide is a double-width product awaiting Montgomery reduction.
type feWide [2 * numLimbs]uint64

// modulus bundles an odd modulus with its Montgomery constants for
// R = 2^260.
type modulus struct {
	m   fe
	mp  uint64 // -m⁻¹ mod 2^52
	one fe     // R mod m
	rr  fe     // R² mod m
}

// fieldP is the SM2 prime p = 2^256 - 2^224 - 2^96 + 2^64 - 1.
var fieldP = &modulus{
	m:   fe{0xfffffffffffff, 0xff00000000fff, 0xfffffffffffff, 0xfffffffffffff, 0x0fffffffeffff},
	mp:  0x1,
	one: fe{0x0000000000010, 0x0ffffffff0000, 0x0000000000000, 0x0000000000000, 0x0000000100000},
	rr:  fe{0x0020000000300, 0xffffffff00000, 0x0000100000002, 0x0200000001000, 0x0000004000000},
}

// fieldN is the order n of the SM2 base point.
var fieldN = &modulus{
	m:   fe{0xbf40939d54123, 0x6b21c6052b53b, 0xfffffff7203df, 0xfffffffffffff, 0x0fffffffeffff},
	mp:  0xf9e8872350975,
	one: fe{0x0bf6c62abedd0, 0x4de39fad4ac44, 0x0000008dfc209, 0x0000000000000, 0x0000000100000},
	rr:  fe{0xc16674a517de6, 0x507a6e5f7c418, 0xfe0d44507dc1c, 0x3b620fc84c3af, 0x0b5e412c02b3d},
}

// curveB is the coefficient b in Montgomery form.
var curveB = fe{0x30632bc0dd422, 0xb09b537ab70d2, 0xa51c3c71cf379, 0x2c8527981505e, 0x040fe188da20e}

// feNorm propagates carries so every limb except the top one is below 2^52.
func feNorm(a *fe) {
	for i := 0; i < numLimbs-1; i++ {
		a[i+1] += a[i] >> limbBits
		a[i] &= limbMask
	}
}

// feAdd sets r = a + b without reduction.
func feAdd(r, a, b *fe) {
	for i := range r {
		r[i] = a[i] + b[i]
	}
	feNorm(r)
}

// feSub sets r = a - b mod 2^260 and returns an all-ones mask when the
// subtraction borrowed, zero otherwise. Inputs must be normalized.
func feSub(r, a, b *fe) uint64 {
	var borrow uint64
	for i := 0; i < numLimbs; i++ {
		d := a[i] - b[i] - borrow
		borrow = d >> 63
		r[i] = d & limbMask
	}
	return -borrow
}

// feCondAdd sets r = a + b when mask is all ones and r = a when it is
// zero. Carries out of the top limb are discarded.
func feCondAdd(r, a, b *fe, mask uint64) {
	for i := range r {
		r[i] = a[i] + (b[i] & mask)
	}
	feNorm(r)
	r[numLimbs-1] &= limbMask
}

// feCondSub sets r = a - b when mask is all ones and r = a when it is zero,
// returning the borrow mask of the subtraction.
func feCondSub(r, a, b *fe, mask uint64) uint64 {
	var t fe
	for i := range t {
		t[i] = b[i] & mask
	}
	return feSub(r, a, &t)
}

// feIsZero returns an all-ones mask if a is zero.
func feIsZero(a *fe) uint64 {
	var acc uint64
	for _, v := range a {
		acc |= v
	}
	return -((acc - 1) >> 63)
}

// feEqual returns an all-ones mask if a == b.
func feEqual(a, b *fe) uint64 {
	var acc uint64
	for i := range a {
		acc |= a[i] ^ b[i]
	}
	return -((acc - 1) >> 63)
}

// feSelect sets r = a if mask is all ones and r = b if mask is zero.
func feSelect(r, a, b *fe, mask uint64) {
	for i := range r {
		r[i] = b[i] ^ (mask & (a[i] ^ b[i]))
	}
}

// feZero wipes a.
func feZero(a *fe) {
	for i := range a {
		a[i] = 0
	}
}

// reduceOnce brings a value below 2m into [0, m).
func reduceOnce(r *fe, md *modulus) {
	feCondSub(r, r, &md.m, ^feLessThan(r, md))
}

// modAdd sets r = a + b mod m.
func modAdd(r, a, b *fe, md *modulus) {
	feAdd(r, a, b)
	reduceOnce(r, md)
}

// modSub sets r = a - b mod m.
func modSub(r, a, b *fe, md *modulus) {
	mask := feSub(r, a, b)
	feCondAdd(r, r, &md.m, mask)
}

// modNeg sets r = -a mod m.
func modNeg(r, a *fe, md *modulus) {
	var zero fe
	modSub(r, &zero, a, md)
}

// modDbl sets r = 2a mod m.
func modDbl(r, a *fe, md *modulus) {
	modAdd(r, a, a, md)
}

// modTpl sets r = 3a mod m.
func modTpl(r, a *fe, md *modulus) {
	var t fe
	modAdd(&t, a, a, md)
	modAdd(r, &t, a, md)
}

// modDiv2 sets r = a/2 mod m. An odd a has m added first so the shift is
// exact.
func modDiv2(r, a *fe, md *modulus) {
	mask := -(a[0] & 1)
	feCondAdd(r, a, &md.m, mask)
	for i := 0; i < numLimbs-1; i++ {
		r[i] = (r[i] >> 1) | ((r[i+1] & 1) << (limbBits - 1))
	}
	r[numLimbs-1] >>= 1
}

// feMul sets t = a * b using schoolbook multiplication. The result is
// normalized to 52-bit limbs except the top one.
func feMul(t *feWide, a, b *fe) {
	var carry uint64
	for k := 0; k < 2*numLimbs-1; k++ {
		lo, hi := carry, uint64(0)
		for i := max(0, k-numLimbs+1); i <= min(numLimbs-1, k); i++ {
			h, l := bits.Mul64(a[i], b[k-i])
			var c uint64
			lo, c = bits.Add64(lo, l, 0)
			hi += h + c
		}
		t[k] = lo & limbMask
		carry = lo>>limbBits | hi<<(64-limbBits)
	}
	t[2*numLimbs-1] = carry
}

// feSqr sets t = a * a. Cross products are computed once and doubled.
func feSqr(t *feWide, a *fe) {
	var carry uint64
	for k := 0; k < 2*numLimbs-1; k++ {
		lo, hi := carry, uint64(0)
		for i := max(0, k-numLimbs+1); i <= k-i; i++ {
			x := a[i]
			if i < k-i {
				x <<= 1
			}
			h, l := bits.Mul64(x, a[k-i])
			var c uint64
			lo, c = bits.Add64(lo, l, 0)
			hi += h + c
		}
		t[k] = lo & limbMask
		carry = lo>>limbBits | hi<<(64-limbBits)
	}
	t[2*numLimbs-1] = carry
}

// montReduce sets r = t * R⁻¹ mod m. t must be below m*R and is clobbered.
// Each of the five rounds clears one 52-bit limb; the result is below 2m
// before the final masked subtraction.
func montReduce(r *fe, t *feWide, md *modulus) {
	for i := 0; i < numLimbs; i++ {
		u := (t[i] * md.mp) & limbMask
		var carry uint64
		for j := 0; j < numLimbs; j++ {
			h, l := bits.Mul64(u, md.m[j])
			var c uint64
			l, c = bits.Add64(l, t[i+j], 0)
			h += c
			l, c = bits.Add64(l, carry, 0)
			h += c
			t[i+j] = l & limbMask
			carry = l>>limbBits | h<<(64-limbBits)
		}
		t[i+numLimbs] += carry
	}
	copy(r[:], t[numLimbs:])
	feNorm(r)
	reduceOnce(r, md)
}

// montMul sets r = a * b * R⁻¹ mod m.
func montMul(r, a, b *fe, md *modulus) {
	var t feWide
	feMul(&t, a, b)
	montReduce(r, &t, md)
}

// montSqr sets r = a * a * R⁻¹ mod m.
func montSqr(r, a *fe, md *modulus) {
	var t feWide
	feSqr(&t, a)
	montReduce(r, &t, md)
}

// montSqrN squares a n times.
func montSqrN(r, a *fe, n int, md *modulus) {
	*r = *a
	for i := 0; i < n; i++ {
		montSqr(r, r, md)
	}
}

// toMont converts a canonical value into Montgomery form.
func toMont(r, a *fe, md *modulus) {
	montMul(r, a, &md.rr, md)
}

// fromMont converts out of Montgomery form.
func fromMont(r, a *fe, md *modulus) {
	var t feWide
	copy(t[:], a[:])
	montReduce(r, &t, md)
}

// feSetBytes decodes a 32-byte big-endian value into limbs. It does not
// reduce.
func feSetBytes(r *fe, b *[elementLength]byte) {
	var w [4]uint64
	for i := 0; i < 4; i++ {
		for j := 0; j < 8; j++ {
			w[3-i] = w[3-i]<<8 | uint64(b[i*8+j])
		}
	}
	r[0] = w[0] & limbMask
	r[1] = (w[0]>>52 | w[1]<<12) & limbMask
	r[2] = (w[1]>>40 | w[2]<<24) & limbMask
	r[3] = (w[2]>>28 | w[3]<<36) & limbMask
	r[4] = w[3] >> 16
}

// feBytes encodes a normalized value as 32 big-endian bytes.
func feBytes(out *[elementLength]byte, a *fe) {
	w := [4]uint64{
		a[0] | a[1]<<52,
		a[1]>>12 | a[2]<<40,
		a[2]>>24 | a[3]<<28,
		a[3]>>36 | a[4]<<16,
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 8; j++ {
			out[i*8+j] = byte(w[3-i] >> (56 - 8*j))
		}
	}
}

// feLessThan returns an all-ones mask if a < m.
func feLessThan(a *fe, md *modulus) uint64 {
	var t fe
	return feSub(&t, a, &md.m)
}
