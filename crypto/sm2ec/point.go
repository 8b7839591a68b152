package sm2ec

import (
	"github.com/cockroachdb/errors"
)

var (
	errPointLength = errors.New("sm2ec: invalid coordinate length")
	errCoordRange  = errors.New("sm2ec: coordinate out of range")
	errNoSquare    = errors.New("sm2ec: x is not the coordinate of a curve point")

	// ErrInfinity is returned when the point at infinity has no affine form.
	ErrInfinity = errors.New("sm2ec: point at infinity")
)

// generator coordinates in Montgomery form.
var (
	generatorX = fe{0x8990f418029e9, 0xe6ca6c04fd132, 0x24c3c33e7981e, 0xb05d6a1ed99ac, 0x01167a5f71c13}
	generatorY = fe{0x4e593c2d0ddd6, 0x8ed3295fa6135, 0x2a48f8c1f5e57, 0x5bd8d4cfb066e, 0x03cd65d4e1d73}
)

// Point is a SM2 curve point. The zero value is NOT valid.
type Point struct {
	// Jacobian coordinates (X:Y:Z) in Montgomery form, where x = X/Z² and
	// y = Y/Z³. The coordinates of the point at infinity are not meaningful;
	// the infinity flag (0 or 1) is authoritative.
	x, y, z  fe
	infinity uint64
}

// affinePoint is a table entry with an implicit Z of one.
type affinePoint struct {
	x, y     fe
	infinity uint64
}

// NewPoint returns a new Point representing the point at infinity.
func NewPoint() *Point {
	return &Point{z: fieldP.one, infinity: 1}
}

// SetGenerator sets p to the canonical generator and returns p.
func (p *Point) SetGenerator() *Point {
	p.x = generatorX
	p.y = generatorY
	p.z = fieldP.one
	p.infinity = 0
	return p
}

// Set sets p = q and returns p.
func (p *Point) Set(q *Point) *Point {
	*p = *q
	return p
}

// SetInfinity sets p to the point at infinity and returns p.
func (p *Point) SetInfinity() *Point {
	*p = Point{z: fieldP.one, infinity: 1}
	return p
}

// SetAffine sets p to the affine point (x, y), given as 32-byte big-endian
// values. It only checks that both coordinates are below p; IsOnCurve tells
// whether the point is on the curve.
func (p *Point) SetAffine(x, y []byte) (*Point, error) {
	if len(x) != elementLength || len(y) != elementLength {
		return nil, errPointLength
	}
	var bx, by [elementLength]byte
	copy(bx[:], x)
	copy(by[:], y)
	var fx, fy fe
	feSetBytes(&fx, &bx)
	feSetBytes(&fy, &by)
	if feLessThan(&fx, fieldP)&feLessThan(&fy, fieldP) == 0 {
		return nil, errCoordRange
	}
	toMont(&p.x, &fx, fieldP)
	toMont(&p.y, &fy, fieldP)
	p.z = fieldP.one
	p.infinity = 0
	return p, nil
}

// SetCompressed sets p to the point whose affine x coordinate is the
// 32-byte big-endian x and whose y has parity odd (0 or 1). It fails when x
// is not below p or x³ - 3x + b has no square root.
func (p *Point) SetCompressed(x []byte, odd int) (*Point, error) {
	if len(x) != elementLength {
		return nil, errPointLength
	}
	md := fieldP
	var bx [elementLength]byte
	copy(bx[:], x)
	var fx, xm, rhs, t, y, ny fe
	feSetBytes(&fx, &bx)
	if feLessThan(&fx, md) == 0 {
		return nil, errCoordRange
	}
	toMont(&xm, &fx, md)

	// y² = x³ - 3x + b
	montSqr(&rhs, &xm, md)
	montMul(&rhs, &rhs, &xm, md)
	modTpl(&t, &xm, md)
	modSub(&rhs, &rhs, &t, md)
	modAdd(&rhs, &rhs, &curveB, md)
	if montSqrtP(&y, &rhs) == 0 {
		return nil, errNoSquare
	}

	fromMont(&t, &y, md)
	flip := -((t[0] & 1) ^ uint64(odd&1))
	modNeg(&ny, &y, md)
	feSelect(&y, &ny, &y, flip)

	p.x, p.y, p.z = xm, y, md.one
	p.infinity = 0
	return p, nil
}

// Affine returns the 32-byte big-endian affine coordinates of p.
func (p *Point) Affine() (x, y []byte, err error) {
	if p.infinity == 1 {
		return nil, nil, ErrInfinity
	}
	var ax, ay fe
	p.toAffine(&ax, &ay)
	fromMont(&ax, &ax, fieldP)
	fromMont(&ay, &ay, fieldP)
	var bx, by [elementLength]byte
	feBytes(&bx, &ax)
	feBytes(&by, &ay)
	return bx[:], by[:], nil
}

// BytesX returns the 32-byte big-endian affine x coordinate of p.
func (p *Point) BytesX() ([]byte, error) {
	x, _, err := p.Affine()
	return x, err
}

// IsInfinity returns 1 if p is the point at infinity, and zero otherwise.
func (p *Point) IsInfinity() int {
	return int(p.infinity)
}

// toAffine writes the Montgomery-form affine coordinates of a finite p,
// using one inversion of Z followed by multiplications by Z⁻² and Z⁻³.
func (p *Point) toAffine(x, y *fe) {
	md := fieldP
	var zInv, t fe
	montInv(&zInv, &p.z, md)
	montSqr(&t, &zInv, md)
	montMul(x, &p.x, &t, md)
	montMul(&t, &t, &zInv, md)
	montMul(y, &p.y, &t, md)
}

// normalize rewrites p with Z = 1. The infinity flag is left alone.
func (p *Point) normalize() *Point {
	var x, y fe
	p.toAffine(&x, &y)
	p.x, p.y, p.z = x, y, fieldP.one
	return p
}

// IsOnCurve returns 1 if p is a finite point satisfying
// Y² = X³ - 3·X·Z⁴ + b·Z⁶, and zero otherwise.
func (p *Point) IsOnCurve() int {
	md := fieldP
	var z2, z4, z6, lhs, rhs, t fe
	montSqr(&z2, &p.z, md)
	montSqr(&z4, &z2, md)
	montMul(&z6, &z4, &z2, md)

	montSqr(&lhs, &p.y, md)

	montSqr(&rhs, &p.x, md)
	montMul(&rhs, &rhs, &p.x, md)
	montMul(&t, &p.x, &z4, md)
	modTpl(&t, &t, md)
	modSub(&rhs, &rhs, &t, md)
	montMul(&t, &curveB, &z6, md)
	modAdd(&rhs, &rhs, &t, md)

	ok := feEqual(&lhs, &rhs) & ^feIsZero(&p.z) & (p.infinity - 1)
	return int(ok & 1)
}

// Equal returns 1 if p and q represent the same point, and zero otherwise.
func (p *Point) Equal(q *Point) int {
	md := fieldP
	var z1z1, z2z2, u1, u2, s1, s2 fe
	montSqr(&z1z1, &p.z, md)
	montSqr(&z2z2, &q.z, md)
	montMul(&u1, &p.x, &z2z2, md)
	montMul(&u2, &q.x, &z1z1, md)
	montMul(&z1z1, &z1z1, &p.z, md)
	montMul(&z2z2, &z2z2, &q.z, md)
	montMul(&s1, &p.y, &z2z2, md)
	montMul(&s2, &q.y, &z1z1, md)

	pInf, qInf := -p.infinity, -q.infinity
	same := feEqual(&u1, &u2) & feEqual(&s1, &s2) & ^pInf & ^qInf
	return int((same | (pInf & qInf)) & 1)
}

// Negate sets p = -q and returns p.
func (p *Point) Negate(q *Point) *Point {
	p.x = q.x
	modNeg(&p.y, &q.y, fieldP)
	p.z = q.z
	p.infinity = q.infinity
	return p
}

// Select sets p to p1 if cond == 1, and to p2 if cond == 0.
func (p *Point) Select(p1, p2 *Point, cond int) *Point {
	p.selectMask(p1, p2, -uint64(cond&1))
	return p
}

func (p *Point) selectMask(a, b *Point, mask uint64) {
	feSelect(&p.x, &a.x, &b.x, mask)
	feSelect(&p.y, &a.y, &b.y, mask)
	feSelect(&p.z, &a.z, &b.z, mask)
	p.infinity = b.infinity ^ (mask & (a.infinity ^ b.infinity))
}

// Double sets p = 2q and returns p. The formula is specialised for a = -3:
// M = 3(X-Z²)(X+Z²), S = 4XY², X' = M² - 2S, Y' = M(S-X') - 8Y⁴,
// Z' = 2YZ.
func (p *Point) Double(q *Point) *Point {
	md := fieldP
	var t1, t2 fe
	x, y, z := q.x, q.y, q.z

	montSqr(&t1, &z, md)
	montMul(&z, &y, &z, md)
	modDbl(&z, &z, md)
	modSub(&t2, &x, &t1, md)
	modAdd(&t1, &x, &t1, md)
	montMul(&t2, &t1, &t2, md)
	modTpl(&t1, &t2, md)
	modDbl(&y, &y, md)
	montSqr(&y, &y, md)
	montSqr(&t2, &y, md)
	modDiv2(&t2, &t2, md)
	montMul(&y, &y, &x, md)
	montSqr(&x, &t1, md)
	modSub(&x, &x, &y, md)
	modSub(&x, &x, &y, md)
	modSub(&y, &y, &x, md)
	montMul(&y, &y, &t1, md)
	modSub(&y, &y, &t2, md)

	p.x, p.y, p.z = x, y, z
	p.infinity = q.infinity
	return p
}

// doubleN doubles q n times into p.
func (p *Point) doubleN(q *Point, n int) *Point {
	p.Set(q)
	for i := 0; i < n; i++ {
		p.Double(p)
	}
	return p
}

// Add sets p = q1 + q2 and returns p.
//
// The Jacobian sum is always computed. Equal finite inputs (U1 = U2 and
// S1 = S2) take the doubling instead, and an infinite operand yields the
// other operand; all three choices are made with masks.
func (p *Point) Add(q1, q2 *Point) *Point {
	md := fieldP
	var u1, u2, s1, s2, h, r, t, h2, h3 fe
	var sum Point

	montSqr(&t, &q2.z, md)
	montMul(&u1, &q1.x, &t, md)
	montMul(&t, &t, &q2.z, md)
	montMul(&s1, &q1.y, &t, md)
	montSqr(&t, &q1.z, md)
	montMul(&u2, &q2.x, &t, md)
	montMul(&t, &t, &q1.z, md)
	montMul(&s2, &q2.y, &t, md)
	modSub(&h, &u2, &u1, md)
	modSub(&r, &s2, &s1, md)

	// Z3 = Z1·Z2·H
	montMul(&sum.z, &q1.z, &q2.z, md)
	montMul(&sum.z, &sum.z, &h, md)
	// X3 = R² - H³ - 2·U1·H²
	montSqr(&h2, &h, md)
	montMul(&h3, &h2, &h, md)
	montMul(&u1, &u1, &h2, md)
	montSqr(&sum.x, &r, md)
	modSub(&sum.x, &sum.x, &h3, md)
	modSub(&sum.x, &sum.x, &u1, md)
	modSub(&sum.x, &sum.x, &u1, md)
	// Y3 = R·(U1·H² - X3) - S1·H³
	modSub(&sum.y, &u1, &sum.x, md)
	montMul(&sum.y, &sum.y, &r, md)
	montMul(&s1, &s1, &h3, md)
	modSub(&sum.y, &sum.y, &s1, md)

	finish(p, &sum, q1, q2, feIsZero(&h)&feIsZero(&r), q1.infinity, q2.infinity)
	return p
}

// addAffine sets p = q1 + q2 where q2 is affine (Z = 1).
func (p *Point) addAffine(q1 *Point, q2 *affinePoint) *Point {
	md := fieldP
	var u2, s2, h, r, t, h2, h3, x1h2 fe
	var sum Point

	montSqr(&t, &q1.z, md)
	montMul(&u2, &q2.x, &t, md)
	montMul(&t, &t, &q1.z, md)
	montMul(&s2, &q2.y, &t, md)
	modSub(&h, &u2, &q1.x, md)
	modSub(&r, &s2, &q1.y, md)

	montMul(&sum.z, &q1.z, &h, md)
	montSqr(&h2, &h, md)
	montMul(&h3, &h2, &h, md)
	montMul(&x1h2, &q1.x, &h2, md)
	montSqr(&sum.x, &r, md)
	modSub(&sum.x, &sum.x, &h3, md)
	modSub(&sum.x, &sum.x, &x1h2, md)
	modSub(&sum.x, &sum.x, &x1h2, md)
	modSub(&sum.y, &x1h2, &sum.x, md)
	montMul(&sum.y, &sum.y, &r, md)
	montMul(&t, &q1.y, &h3, md)
	modSub(&sum.y, &sum.y, &t, md)

	q2p := Point{x: q2.x, y: q2.y, z: md.one, infinity: q2.infinity}
	finish(p, &sum, q1, &q2p, feIsZero(&h)&feIsZero(&r), q1.infinity, q2.infinity)
	return p
}

// finish resolves the special cases of an addition without branching. same
// is an all-ones mask when the operands have equal coordinates.
func finish(p, sum, q1, q2 *Point, same, inf1, inf2 uint64) {
	m1, m2 := -inf1, -inf2
	same &= ^m1 & ^m2

	var dbl Point
	dbl.Double(q1)
	sum.selectMask(&dbl, sum, same)
	sum.infinity = feIsZero(&sum.z) & 1

	sum.selectMask(q1, sum, m2)
	sum.selectMask(q2, sum, m1)
	*p = *sum
}
