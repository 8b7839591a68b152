package sm2

import (
	"math/big"

	"github.com/opentoys/sm2kit/crypto/sm2ec"
)

// The functions below expose the engine at the big.Int boundary. Scalars
// must be in [0, n) and points on the curve; a result at infinity is
// reported as ErrInfinity.

// ScalarMult returns k·(x, y).
func (c *Curve) ScalarMult(x, y, k *big.Int) (*big.Int, *big.Int, error) {
	p, s, err := c.multInputs(x, y, k)
	if err != nil {
		return nil, nil, err
	}
	defer s.Zeroize()
	return intsFromPoint(c.engine.ScalarMult(sm2ec.NewPoint(), p, s))
}

// ScalarBaseMult returns k·G.
func (c *Curve) ScalarBaseMult(k *big.Int) (*big.Int, *big.Int, error) {
	s, err := scalarFromInt(k)
	if err != nil {
		return nil, nil, err
	}
	defer s.Zeroize()
	return intsFromPoint(c.engine.ScalarBaseMult(sm2ec.NewPoint(), s))
}

// ScalarMultAdd returns k·(x, y) + (ax, ay).
func (c *Curve) ScalarMultAdd(x, y, k, ax, ay *big.Int) (*big.Int, *big.Int, error) {
	p, s, err := c.multInputs(x, y, k)
	if err != nil {
		return nil, nil, err
	}
	defer s.Zeroize()
	a, err := publicPoint(&PublicKey{X: ax, Y: ay})
	if err != nil {
		return nil, nil, err
	}
	return intsFromPoint(c.engine.ScalarMultAdd(sm2ec.NewPoint(), p, s, a))
}

// ScalarBaseMultAdd returns k·G + (ax, ay).
func (c *Curve) ScalarBaseMultAdd(k, ax, ay *big.Int) (*big.Int, *big.Int, error) {
	s, err := scalarFromInt(k)
	if err != nil {
		return nil, nil, err
	}
	defer s.Zeroize()
	a, err := publicPoint(&PublicKey{X: ax, Y: ay})
	if err != nil {
		return nil, nil, err
	}
	return intsFromPoint(c.engine.ScalarBaseMultAdd(sm2ec.NewPoint(), s, a))
}

func (c *Curve) multInputs(x, y, k *big.Int) (*sm2ec.Point, *sm2ec.Scalar, error) {
	p, err := publicPoint(&PublicKey{X: x, Y: y})
	if err != nil {
		return nil, nil, err
	}
	s, err := scalarFromInt(k)
	if err != nil {
		return nil, nil, err
	}
	return p, s, nil
}

func ScalarMult(x, y, k *big.Int) (*big.Int, *big.Int, error) {
	return Default().ScalarMult(x, y, k)
}

func ScalarBaseMult(k *big.Int) (*big.Int, *big.Int, error) {
	return Default().ScalarBaseMult(k)
}

func ScalarMultAdd(x, y, k, ax, ay *big.Int) (*big.Int, *big.Int, error) {
	return Default().ScalarMultAdd(x, y, k, ax, ay)
}

func ScalarBaseMultAdd(k, ax, ay *big.Int) (*big.Int, *big.Int, error) {
	return Default().ScalarBaseMultAdd(k, ax, ay)
}
