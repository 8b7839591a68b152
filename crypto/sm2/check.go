package sm2

import (
	"math/big"

	"github.com/cockroachdb/errors"
)

// CheckKey validates pub: both coordinates in [0, p), not the (0, 0)
// encoding of infinity, on the curve and of order n. When d is not nil it
// must also be in [1, n-1] with d·G = pub.
func (c *Curve) CheckKey(pub *PublicKey, d *big.Int) error {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return ErrNilKey
	}
	if pub.X.Sign() == 0 && pub.Y.Sign() == 0 {
		return ErrInfinity
	}
	q, err := publicPoint(pub)
	if err != nil {
		return err
	}
	if c.engine.HasOrderN(q) != 1 {
		return ErrWrongOrder
	}
	if d == nil {
		return nil
	}

	var sec secrets
	defer sec.wipe()
	k := sec.scalar()
	if err := setScalar(k, d); err != nil {
		return err
	}
	if k.IsZero() == 1 {
		return errors.Wrap(ErrOutOfRange, "sm2: private key is zero")
	}
	p := sec.point()
	c.engine.ScalarBaseMult(p, k)
	if p.Equal(q) != 1 {
		return ErrKeyMismatch
	}
	return nil
}

func CheckKey(pub *PublicKey, d *big.Int) error {
	return Default().CheckKey(pub, d)
}
