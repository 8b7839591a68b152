package sm2ec

// montInvP sets r = x^(p-2) mod p, the inverse of x in Montgomery form.
// The sequence of 14 multiplications and 255 squarings follows the chain
//
//	_10      = 2*1
//	_11      = 1 + _10
//	_110     = 2*_11
//	_111     = 1 + _110
//	_111000  = _111 << 3
//	_111111  = _111 + _111000
//	_1111110 = 2*_111111
//	_1111111 = 1 + _1111110
//	x12      = _1111110 << 5 + _111111
//	x24      = x12 << 12 + x12
//	x31      = x24 << 7 + _1111111
//	i39      = x31 << 2
//	i68      = i39 << 29
//	x62      = x31 + i68
//	i71      = i68 << 2
//	x64      = i39 + i71 + _11
//	i265     = ((i71 << 32 + x64) << 64 + x64) << 94
//	return     (x62 + i265) << 2 + 1
func montInvP(r, x *fe) {
	md := fieldP
	var z, t0, t1, t2 fe

	montSqr(&z, x, md)
	montMul(&t0, x, &z, md)
	montSqr(&z, &t0, md)
	montMul(&z, x, &z, md)
	montSqrN(&t1, &z, 3, md)
	montMul(&t1, &z, &t1, md)
	montSqr(&t2, &t1, md)
	montMul(&z, x, &t2, md)
	montSqrN(&t2, &t2, 5, md)
	montMul(&t1, &t1, &t2, md)
	montSqrN(&t2, &t1, 12, md)
	montMul(&t1, &t1, &t2, md)
	montSqrN(&t1, &t1, 7, md)
	montMul(&z, &z, &t1, md)
	montSqrN(&t2, &z, 2, md)
	montSqrN(&t1, &t2, 29, md)
	montMul(&z, &z, &t1, md)
	montSqrN(&t1, &t1, 2, md)
	montMul(&t2, &t2, &t1, md)
	montMul(&t0, &t0, &t2, md)
	montSqrN(&t1, &t1, 32, md)
	montMul(&t1, &t0, &t1, md)
	montSqrN(&t1, &t1, 64, md)
	montMul(&t0, &t0, &t1, md)
	montSqrN(&t0, &t0, 94, md)
	montMul(&z, &z, &t0, md)
	montSqrN(&z, &z, 2, md)
	montMul(r, x, &z, md)

	feZero(&z)
	feZero(&t0)
	feZero(&t1)
	feZero(&t2)
}

// montInvN sets r = x^(n-2) mod n. n-2 =
// 1111111111111111111111111111111011111111111111111111111111111111
// 1111111111111111111111111111111111111111111111111111111111111111
// 0111001000000011110111110110101100100001110001100000010100101011
// 0101001110111011111101000000100100111001110101010100000100100001
func montInvN(r, x *fe) {
	md := fieldN
	var _1, _11, _101, _111, _1111, _10101, _101111, t, m, acc fe

	_1 = *x
	montSqr(&m, &_1, md)
	montMul(&_11, &m, &_1, md)
	montMul(&_101, &m, &_11, md)
	montMul(&_111, &m, &_101, md)
	montSqr(&acc, &_101, md)
	montMul(&_1111, &_101, &acc, md)

	montSqr(&t, &acc, md)
	montMul(&_10101, &t, &_1, md)
	montSqr(&acc, &_10101, md)
	montMul(&_101111, &acc, &_101, md)
	montMul(&acc, &_10101, &acc, md)
	montSqrN(&t, &acc, 2, md)

	montMul(&m, &t, &m, md)
	montMul(&t, &t, &_11, md)
	montSqrN(&acc, &t, 8, md)
	montMul(&m, &acc, &m, md)
	montMul(&acc, &acc, &t, md)

	montSqrN(&t, &acc, 16, md)
	montMul(&m, &t, &m, md)
	montMul(&t, &t, &acc, md)

	montSqrN(&acc, &m, 32, md)
	montMul(&acc, &acc, &t, md)
	montSqrN(&acc, &acc, 32, md)
	montMul(&acc, &acc, &t, md)
	montSqrN(&acc, &acc, 32, md)
	montMul(&acc, &acc, &t, md)

	sqrs := [...]uint8{
		4, 3, 11, 5, 3, 5, 1,
		3, 7, 5, 9, 7, 5, 5,
		4, 5, 2, 2, 7, 3, 5,
		5, 6, 2, 6, 3, 5,
	}
	muls := [...]*fe{
		&_111, &_1, &_1111, &_1111, &_101, &_10101, &_1,
		&_1, &_111, &_11, &_101, &_10101, &_10101, &_111,
		&_111, &_1111, &_11, &_1, &_1, &_1, &_111,
		&_111, &_10101, &_1, &_1, &_1, &_1,
	}
	for i, s := range sqrs {
		montSqrN(&acc, &acc, int(s), md)
		montMul(&acc, &acc, muls[i], md)
	}
	*r = acc

	for _, v := range []*fe{&_1, &_11, &_101, &_111, &_1111, &_10101, &_101111, &t, &m, &acc} {
		feZero(v)
	}
}

// montInv dispatches to the addition chain for the modulus.
func montInv(r, x *fe, md *modulus) {
	if md == fieldP {
		montInvP(r, x)
		return
	}
	montInvN(r, x)
}

// montSqrtP sets r = x^((p+1)/4) mod p, a square root of x when one exists
// since p = 3 mod 4, and returns an all-ones mask if r² = x. The exponent is
//
//	(p+1)/4 = ((x31 << 1) << 128 + x128) << 32 + 1) << 62
//
// where xk stands for k one bits.
func montSqrtP(r, x *fe) uint64 {
	md := fieldP
	var x2, x3, x6, x12, x24, x31, x32, x64, x128, t fe

	montSqr(&t, x, md)
	montMul(&x2, &t, x, md)
	montSqr(&t, &x2, md)
	montMul(&x3, &t, x, md)
	montSqrN(&t, &x3, 3, md)
	montMul(&x6, &t, &x3, md)
	montSqrN(&t, &x6, 6, md)
	montMul(&x12, &t, &x6, md)
	montSqrN(&t, &x12, 12, md)
	montMul(&x24, &t, &x12, md)
	montSqrN(&t, &x24, 6, md)
	montMul(&t, &t, &x6, md)
	montSqr(&t, &t, md)
	montMul(&x31, &t, x, md)
	montSqr(&t, &x31, md)
	montMul(&x32, &t, x, md)
	montSqrN(&t, &x32, 32, md)
	montMul(&x64, &t, &x32, md)
	montSqrN(&t, &x64, 64, md)
	montMul(&x128, &t, &x64, md)

	montSqr(&t, &x31, md)
	montSqrN(&t, &t, 128, md)
	montMul(&t, &t, &x128, md)
	montSqrN(&t, &t, 32, md)
	montMul(&t, &t, x, md)
	montSqrN(&t, &t, 62, md)

	var check fe
	montSqr(&check, &t, md)
	ok := feEqual(&check, x)
	*r = t

	for _, v := range []*fe{&x2, &x3, &x6, &x12, &x24, &x31, &x32, &x64, &x128, &t, &check} {
		feZero(v)
	}
	return ok
}
