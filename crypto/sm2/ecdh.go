package sm2

import (
	"github.com/cockroachdb/errors"
)

// SharedSecret returns the 32-byte x coordinate of d·Q, where d is priv's
// scalar and Q the peer's public key.
func (c *Curve) SharedSecret(priv *PrivateKey, peer *PublicKey) ([]byte, error) {
	if priv == nil || priv.D == nil {
		return nil, ErrNilKey
	}
	q, err := publicPoint(peer)
	if err != nil {
		return nil, err
	}
	var sec secrets
	defer sec.wipe()

	d := sec.scalar()
	if err := setScalar(d, priv.D); err != nil {
		return nil, err
	}
	if d.IsZero() == 1 {
		return nil, errors.Wrap(ErrOutOfRange, "sm2: private key is zero")
	}
	p := sec.point()
	c.engine.ScalarMult(p, q, d)
	x, err := p.BytesX()
	if err != nil {
		return nil, ErrInfinity
	}
	return x, nil
}

func SharedSecret(priv *PrivateKey, peer *PublicKey) ([]byte, error) {
	return Default().SharedSecret(priv, peer)
}
