package sm2

import (
	"crypto"
	"io"
	"math/big"

	"github.com/cockroachdb/errors"

	"github.com/opentoys/sm2kit/crypto/sm2ec"
	"github.com/opentoys/sm2kit/gopool"
)

// maxSignAttempts bounds the ephemeral key loop in Sign.
const maxSignAttempts = 64

// errRejected marks an attempt whose r or s came out degenerate.
var errRejected = errors.New("sm2: signature attempt rejected")

type signConfig struct {
	ephemeral *big.Int
}

type SignOption func(*signConfig)

// WithEphemeral makes the first signing attempt use k instead of a random
// ephemeral key. Later attempts, if any, draw fresh keys.
func WithEphemeral(k *big.Int) SignOption {
	return func(c *signConfig) {
		c.ephemeral = k
	}
}

// Sign signs digest with priv and returns (r, s), both in [1, n-1].
//
// For each attempt it draws k, sets r = (x(k·G) + e) mod n and
// s = b(k - r·d) · (b(d+1))⁻¹ mod n for a fresh blinding scalar b, starting
// over when r = 0, r + k = 0 or s = 0. After maxSignAttempts rejected
// attempts it fails with ErrRetriesExhausted.
func (c *Curve) Sign(rand io.Reader, priv *PrivateKey, digest []byte, opts ...SignOption) (r, s *big.Int, err error) {
	if priv == nil || priv.D == nil {
		return nil, nil, ErrNilKey
	}
	if rand == nil {
		return nil, nil, errors.Wrap(ErrInvalidArgument, "sm2: missing random source")
	}
	var cfg signConfig
	for _, v := range opts {
		v(&cfg)
	}

	var sec secrets
	defer sec.wipe()

	d := sec.scalar()
	if err := setScalar(d, priv.D); err != nil {
		return nil, nil, err
	}
	one := sm2ec.NewScalar().SetUint64(1)
	dp1 := sec.scalar().Add(d, one)
	if d.IsZero() == 1 || dp1.IsZero() == 1 {
		return nil, nil, errors.Wrap(ErrOutOfRange, "sm2: private key must be in [1, n-2]")
	}

	var eph *sm2ec.Scalar
	if cfg.ephemeral != nil {
		eph = sec.scalar()
		if err := setScalar(eph, cfg.ephemeral); err != nil {
			return nil, nil, err
		}
		if eph.IsZero() == 1 {
			return nil, nil, errors.Wrap(ErrOutOfRange, "sm2: ephemeral key is zero")
		}
	}

	e := sm2ec.NewScalar().SetBytesReduced(digest)
	var (
		k   = sec.scalar()
		b   = sec.scalar()
		rr  = sec.scalar()
		ss  = sec.scalar()
		t   = sec.scalar()
		kG  = sec.point()
		buf = sec.bytes(keySize)
	)

	attempt := func() error {
		if eph != nil {
			k.Set(eph)
			eph.Zeroize()
			eph = nil
		} else if err := c.randomScalar(rand, k, buf); err != nil {
			return err
		}

		c.engine.ScalarBaseMult(kG, k)
		x, err := kG.BytesX()
		if err != nil {
			return errRejected
		}
		rr.SetBytesReduced(x)
		rr.Add(rr, e)
		if rr.IsZero() == 1 {
			return errRejected
		}
		if t.Add(rr, k).IsZero() == 1 {
			return errRejected
		}

		if err := c.randomScalar(rand, b, buf); err != nil {
			return err
		}
		// s = b(k - r·d) · (b(d+1))⁻¹
		ss.Mul(rr, d)
		ss.Sub(k, ss)
		ss.Mul(ss, b)
		t.Mul(b, dp1)
		t.Invert(t)
		ss.Mul(ss, t)
		if ss.IsZero() == 1 {
			return errRejected
		}
		return nil
	}

	err = gopool.Retry(attempt,
		gopool.RetryAttempts(maxSignAttempts),
		gopool.RetryDelay(0),
		gopool.RetryDelayType(gopool.FixedDelay),
		gopool.LastErrorOnly(true),
		gopool.RetryIf(func(err error) bool {
			return errors.Is(err, errRejected)
		}),
		gopool.OnRetry(func(n uint, err error) {
			c.log.Debug("sm2: signing attempt rejected", "attempt", n+1)
		}),
	)
	if err != nil {
		if errors.Is(err, errRejected) {
			c.log.Warn("sm2: signing gave up", "attempts", maxSignAttempts)
			return nil, nil, ErrRetriesExhausted
		}
		return nil, nil, err
	}
	return intFromScalar(rr), intFromScalar(ss), nil
}

// SignASN1 is Sign with a DER encoded result.
func (c *Curve) SignASN1(rand io.Reader, priv *PrivateKey, digest []byte, opts ...SignOption) ([]byte, error) {
	r, s, err := c.Sign(rand, priv, digest, opts...)
	if err != nil {
		return nil, err
	}
	return encodeSignature(r.Bytes(), s.Bytes())
}

// SignWithSM2 hashes msg with ZA for uid and signs the result. An empty uid
// means the curve's uid.
func (c *Curve) SignWithSM2(rand io.Reader, priv *PrivateKey, uid, msg []byte, opts ...SignOption) (r, s *big.Int, err error) {
	if priv == nil {
		return nil, nil, ErrNilKey
	}
	digest, err := c.CalculateSM2Hash(&priv.PublicKey, msg, uid)
	if err != nil {
		return nil, nil, err
	}
	return c.Sign(rand, priv, digest, opts...)
}

func (c *Curve) signWithOpts(rand io.Reader, priv *PrivateKey, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	if o, ok := opts.(*SignerOption); ok && o.forceGMSign {
		if priv == nil {
			return nil, ErrNilKey
		}
		h, err := c.CalculateSM2Hash(&priv.PublicKey, digest, o.uid)
		if err != nil {
			return nil, err
		}
		digest = h
	}
	return c.SignASN1(rand, priv, digest)
}

func Sign(rand io.Reader, priv *PrivateKey, digest []byte, opts ...SignOption) (r, s *big.Int, err error) {
	return Default().Sign(rand, priv, digest, opts...)
}

func SignASN1(rand io.Reader, priv *PrivateKey, digest []byte, opts ...SignOption) ([]byte, error) {
	return Default().SignASN1(rand, priv, digest, opts...)
}

// SignWithSM2 follow sm2 dsa standards for hash part, compliance with GB/T 32918.2-2016.
func SignWithSM2(rand io.Reader, priv *PrivateKey, uid, msg []byte, opts ...SignOption) (r, s *big.Int, err error) {
	return Default().SignWithSM2(rand, priv, uid, msg, opts...)
}
