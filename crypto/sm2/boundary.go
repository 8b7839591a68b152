package sm2

import (
	"math/big"

	"github.com/cockroachdb/errors"

	"github.com/opentoys/sm2kit/crypto/sm2ec"
)

var (
	curveP, _ = new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00000000FFFFFFFFFFFFFFFF", 16)
	curveN, _ = new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFF7203DF6B21C6052B53BBF40939D54123", 16)
)

// setScalar loads x into s. x must be in [0, n). The 32-byte staging buffer
// is wiped before returning.
func setScalar(s *sm2ec.Scalar, x *big.Int) error {
	if x == nil {
		return errors.Wrap(ErrInvalidArgument, "sm2: missing scalar")
	}
	if x.Sign() < 0 || x.Cmp(curveN) >= 0 {
		return ErrOutOfRange
	}
	var buf [32]byte
	defer clear(buf[:])
	x.FillBytes(buf[:])
	if _, err := s.SetBytes(buf[:]); err != nil {
		return errors.Mark(err, ErrValidation)
	}
	return nil
}

func scalarFromInt(x *big.Int) (*sm2ec.Scalar, error) {
	s := sm2ec.NewScalar()
	if err := setScalar(s, x); err != nil {
		return nil, err
	}
	return s, nil
}

func intFromScalar(s *sm2ec.Scalar) *big.Int {
	return new(big.Int).SetBytes(s.Bytes())
}

// pointFromInts converts affine coordinates, each in [0, p), into a Point.
// It does not check that the point is on the curve.
func pointFromInts(x, y *big.Int) (*sm2ec.Point, error) {
	if x == nil || y == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "sm2: missing coordinate")
	}
	if x.Sign() < 0 || y.Sign() < 0 || x.Cmp(curveP) >= 0 || y.Cmp(curveP) >= 0 {
		return nil, ErrOutOfRange
	}
	p, err := sm2ec.NewPoint().SetAffine(x.FillBytes(make([]byte, 32)), y.FillBytes(make([]byte, 32)))
	if err != nil {
		return nil, errors.Mark(err, ErrValidation)
	}
	return p, nil
}

// intsFromPoint returns the affine coordinates of p. The point at infinity
// has none.
func intsFromPoint(p *sm2ec.Point) (x, y *big.Int, err error) {
	bx, by, err := p.Affine()
	if err != nil {
		return nil, nil, ErrInfinity
	}
	return new(big.Int).SetBytes(bx), new(big.Int).SetBytes(by), nil
}

// publicPoint converts pub into a Point that is on the curve.
func publicPoint(pub *PublicKey) (*sm2ec.Point, error) {
	if pub == nil {
		return nil, ErrNilKey
	}
	p, err := pointFromInts(pub.X, pub.Y)
	if err != nil {
		return nil, err
	}
	if p.IsOnCurve() != 1 {
		return nil, ErrPointNotOnCurve
	}
	return p, nil
}
