package sm2ec

// feBit returns bit i of k.
func feBit(k *fe, i int) uint64 {
	return (k[i/limbBits] >> (i % limbBits)) & 1
}

// ctEq returns an all-ones mask if a == b. Both must be below 2^63.
func ctEq(a, b uint64) uint64 {
	return -(((a ^ b) - 1) >> 63)
}

// ladderMul sets r = k·p, reading the 256 bits of k from the top.
//
// Two slots start as t[0] = ∞ and t[1] = p and keep t[1] = t[0] + p. For a
// bit y the sum goes to t[y^1] and the double of t[y] goes back to t[y].
// Both slots are read and written through masks on every step, so neither
// the control flow nor the addresses touched depend on y.
func ladderMul(r, p *Point, k *fe) {
	var t0, t1, t2, sum Point
	t0.SetInfinity()
	t1.Set(p)
	for i := 255; i >= 0; i-- {
		mask := -feBit(k, i)

		sum.Add(&t0, &t1)
		t0.selectMask(&sum, &t0, mask)
		t1.selectMask(&t1, &sum, mask)

		t2.selectMask(&t1, &t0, mask)
		t2.Double(&t2)
		t0.selectMask(&t0, &t2, mask)
		t1.selectMask(&t2, &t1, mask)
	}
	r.Set(&t0)

	t1.SetInfinity()
	t2.SetInfinity()
	sum.SetInfinity()
}
