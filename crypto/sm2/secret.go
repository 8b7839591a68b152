package sm2

import (
	"github.com/opentoys/sm2kit/crypto/sm2ec"
)

// secrets tracks secret-bearing temporaries of one operation so a single
// deferred wipe clears all of them, whichever way the operation returns.
type secrets struct {
	scalars []*sm2ec.Scalar
	points  []*sm2ec.Point
	bufs    [][]byte
}

func (s *secrets) scalar() *sm2ec.Scalar {
	k := sm2ec.NewScalar()
	s.scalars = append(s.scalars, k)
	return k
}

func (s *secrets) point() *sm2ec.Point {
	p := sm2ec.NewPoint()
	s.points = append(s.points, p)
	return p
}

func (s *secrets) bytes(n int) []byte {
	b := make([]byte, n)
	s.bufs = append(s.bufs, b)
	return b
}

func (s *secrets) wipe() {
	for _, v := range s.scalars {
		v.Zeroize()
	}
	for _, v := range s.points {
		v.SetInfinity()
	}
	for _, v := range s.bufs {
		clear(v)
	}
	s.scalars, s.points, s.bufs = nil, nil, nil
}
