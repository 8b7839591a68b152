package sm2ec

import (
	"math/bits"
	"sync"
)

const (
	stripeLanes   = 8
	stripeSpacing = 256 / stripeLanes // 32
	stripeEntries = 1 << stripeLanes  // 256
)

// A stripeTable holds every combination of the eight points 2^(32i)·P: bit i
// of an entry's index selects 2^(32i)·P. Entry 0 is the point at infinity.
type stripeTable [stripeEntries]affinePoint

// newStripeTable computes the table for p. Entries are converted to affine
// form with a single inversion shared across the table.
func newStripeTable(p *Point) *stripeTable {
	var lanes [stripeLanes]Point
	lanes[0].Set(p)
	for i := 1; i < stripeLanes; i++ {
		lanes[i].doubleN(&lanes[i-1], stripeSpacing)
	}

	jac := make([]Point, stripeEntries)
	jac[0].SetInfinity()
	for i := 1; i < stripeEntries; i++ {
		top := bits.Len(uint(i)) - 1
		if i == 1<<top {
			jac[i].Set(&lanes[top])
		} else {
			jac[i].Add(&jac[i^1<<top], &lanes[top])
		}
	}

	t := new(stripeTable)
	batchToAffine(t[:], jac)
	return t
}

// batchToAffine converts points to affine form with one inversion
// (Montgomery's trick). Infinite points keep their flag and contribute a Z
// of one to the running product.
func batchToAffine(out []affinePoint, in []Point) {
	md := fieldP
	zs := make([]fe, len(in))
	prefix := make([]fe, len(in))
	acc := md.one
	for i := range in {
		feSelect(&zs[i], &md.one, &in[i].z, -in[i].infinity)
		montMul(&acc, &acc, &zs[i], md)
		prefix[i] = acc
	}

	var inv, zInv, zInv2 fe
	montInv(&inv, &acc, fieldP)
	for i := len(in) - 1; i >= 0; i-- {
		if i > 0 {
			montMul(&zInv, &inv, &prefix[i-1], md)
			montMul(&inv, &inv, &zs[i], md)
		} else {
			zInv = inv
		}
		montSqr(&zInv2, &zInv, md)
		montMul(&out[i].x, &in[i].x, &zInv2, md)
		montMul(&zInv2, &zInv2, &zInv, md)
		montMul(&out[i].y, &in[i].y, &zInv2, md)
		out[i].infinity = in[i].infinity
	}
}

// selectInto sets r to entry idx, touching every entry.
func (t *stripeTable) selectInto(r *affinePoint, idx uint64) {
	*r = affinePoint{infinity: 1}
	for i := range t {
		m := ctEq(uint64(i), idx)
		feSelect(&r.x, &t[i].x, &r.x, m)
		feSelect(&r.y, &t[i].y, &r.y, m)
		r.infinity ^= m & (t[i].infinity ^ r.infinity)
	}
}

// stripeMul sets r = k·P for the point P the table was built from. Each of
// the 32 rounds doubles once and adds the entry indexed by bits j, j+32, ...,
// j+224 of k.
func stripeMul(r *Point, t *stripeTable, k *fe) {
	var (
		acc Point
		e   affinePoint
	)
	acc.SetInfinity()
	for j := stripeSpacing - 1; j >= 0; j-- {
		var idx uint64
		for i := 0; i < stripeLanes; i++ {
			idx |= feBit(k, i*stripeSpacing+j) << i
		}
		acc.Double(&acc)
		t.selectInto(&e, idx)
		acc.addAffine(&acc, &e)
	}
	r.Set(&acc)
	e = affinePoint{}
}

var (
	generatorTable     *stripeTable
	generatorTableOnce sync.Once
)

// baseTable returns the stripe table of the generator, computing it on first
// use.
func baseTable() *stripeTable {
	generatorTableOnce.Do(func() {
		generatorTable = newStripeTable(NewPoint().SetGenerator())
	})
	return generatorTable
}
