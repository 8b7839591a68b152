package sm2ec

const (
	windowBits   = 6
	windowDigits = (256 + windowBits - 1 + 1) / windowBits // 43
	windowSize   = 1<<(windowBits-1) + 1                   // 33 entries, 0..32
)

// recodeIndex maps a 6-bit window plus carry (0..65) to the magnitude of
// its signed digit; recodeNeg says whether the digit is negative. A negative
// digit d stands for d + 64 and pushes a carry into the next window.
var recodeIndex = [66]uint8{
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
	16, 17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31,
	32, 31, 30, 29, 28, 27, 26, 25, 24, 23, 22, 21, 20, 19, 18, 17,
	16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1,
	0, 1,
}

var recodeNeg = [66]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	0, 0,
}

// signedDigit is one recoded window: |digit| and a negation flag.
type signedDigit struct {
	index uint64
	neg   uint64
}

// feWindow returns the six bits of k starting at bit i. Bits above 255 read
// as zero.
func feWindow(k *fe, i int) uint64 {
	limb, shift := i/limbBits, i%limbBits
	w := k[limb] >> shift
	if shift > limbBits-windowBits && limb+1 < numLimbs {
		w |= k[limb+1] << (limbBits - shift)
	}
	return w & (1<<windowBits - 1)
}

// recode splits k into 43 signed digits in [-32, 32] so that
// k = Σ digit[i]·64^i. Table entries are read by scanning all of them.
func recode(v *[windowDigits]signedDigit, k *fe) {
	var carry uint64
	for i := 0; i < windowDigits; i++ {
		y := feWindow(k, i*windowBits) + carry
		var idx, neg uint64
		for j := range recodeIndex {
			m := ctEq(uint64(j), y)
			idx |= uint64(recodeIndex[j]) & m
			neg |= uint64(recodeNeg[j]) & m
		}
		v[i] = signedDigit{index: idx, neg: neg}
		carry = (y >> windowBits) + neg
	}
}

// windowTable holds 0·P .. 32·P in Jacobian form.
type windowTable [windowSize]Point

func (t *windowTable) build(p *Point) {
	t[0].SetInfinity()
	t[1].Set(p)
	for i := 2; i < windowSize; i++ {
		if i&1 == 0 {
			t[i].Double(&t[i/2])
		} else {
			t[i].Add(&t[i-1], p)
		}
	}
}

// selectInto sets r to entry idx, touching every entry.
func (t *windowTable) selectInto(r *Point, idx uint64) {
	r.SetInfinity()
	for i := range t {
		r.selectMask(&t[i], r, ctEq(uint64(i), idx))
	}
}

// condNegate negates p when neg is 1.
func condNegate(p *Point, neg uint64) {
	var ny fe
	modNeg(&ny, &p.y, fieldP)
	feSelect(&p.y, &ny, &p.y, -neg)
}

// windowMul sets r = k·p with the signed 6-bit window method: six doublings
// and one addition per digit, with the entry's Y negated by mask for negative
// digits.
func windowMul(r, p *Point, k *fe) {
	var (
		tbl    windowTable
		digits [windowDigits]signedDigit
		acc, t Point
	)
	tbl.build(p)
	recode(&digits, k)

	tbl.selectInto(&acc, digits[windowDigits-1].index)
	condNegate(&acc, digits[windowDigits-1].neg)
	for i := windowDigits - 2; i >= 0; i-- {
		acc.doubleN(&acc, windowBits)
		tbl.selectInto(&t, digits[i].index)
		condNegate(&t, digits[i].neg)
		acc.Add(&acc, &t)
	}
	r.Set(&acc)

	for i := range digits {
		digits[i] = signedDigit{}
	}
	t.SetInfinity()
}
