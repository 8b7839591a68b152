package sm2

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"

	"github.com/opentoys/sm2kit/crypto/sm2ec"
	"github.com/opentoys/sm2kit/gopool"
)

// Verify reports whether (r, s) is a valid signature of digest under pub.
//
// A false result is a verdict, not a failure: r or s outside [1, n-1] or a
// mismatching signature yield (false, nil). Errors are reserved for
// malformed input, such as a missing value or a public key that is not a
// curve point.
func (c *Curve) Verify(pub *PublicKey, digest []byte, r, s *big.Int) (bool, error) {
	if r == nil || s == nil {
		return false, errors.Wrap(ErrInvalidArgument, "sm2: missing signature value")
	}
	q, err := publicPoint(pub)
	if err != nil {
		return false, err
	}
	if r.Sign() <= 0 || s.Sign() <= 0 || r.Cmp(curveN) >= 0 || s.Cmp(curveN) >= 0 {
		return false, nil
	}
	rs, err := scalarFromInt(r)
	if err != nil {
		return false, nil
	}
	ss, err := scalarFromInt(s)
	if err != nil {
		return false, nil
	}

	// t = r + s
	t := sm2ec.NewScalar().Add(rs, ss)
	if t.IsZero() == 1 {
		return false, nil
	}

	// (x1, y1) = s·G + t·Q
	var sg, sum sm2ec.Point
	c.engine.ScalarBaseMult(&sg, ss)
	c.engine.ScalarMultAdd(&sum, q, t, &sg)
	x1, err := sum.BytesX()
	if err != nil {
		return false, nil
	}

	// R = (e + x1) mod n
	v := sm2ec.NewScalar().SetBytesReduced(x1)
	v.Add(v, sm2ec.NewScalar().SetBytesReduced(digest))
	return v.Equal(rs) == 1, nil
}

// VerifyASN1 is Verify for a DER signature. Undecodable signatures are an
// ErrInvalidSignature error.
func (c *Curve) VerifyASN1(pub *PublicKey, digest, sig []byte) (bool, error) {
	r, s, err := ParseSignature(sig)
	if err != nil {
		return false, err
	}
	return c.Verify(pub, digest, r, s)
}

// VerifyWithSM2 hashes msg with ZA for uid and verifies (r, s) over the
// result. An empty uid means the curve's uid.
func (c *Curve) VerifyWithSM2(pub *PublicKey, uid, msg []byte, r, s *big.Int) (bool, error) {
	digest, err := c.CalculateSM2Hash(pub, msg, uid)
	if err != nil {
		return false, err
	}
	return c.Verify(pub, digest, r, s)
}

// BatchItem is one signature for VerifyBatch.
type BatchItem struct {
	Pub    *PublicKey
	Digest []byte
	R, S   *big.Int
}

// VerifyBatch verifies items with at most limit running at once (no limit
// when limit <= 0) and returns the verdicts in order. The first malformed
// item stops the batch with its error.
func (c *Curve) VerifyBatch(ctx context.Context, items []BatchItem, limit int) ([]bool, error) {
	if limit <= 0 {
		limit = -1
	}
	out := make([]bool, len(items))
	fns := make([]func(context.Context) error, len(items))
	for i := range items {
		fns[i] = func(ctx context.Context) error {
			ok, err := c.Verify(items[i].Pub, items[i].Digest, items[i].R, items[i].S)
			if err != nil {
				return errors.Wrapf(err, "sm2: batch item %d", i)
			}
			out[i] = ok
			return nil
		}
	}
	if err := gopool.AllContext(ctx, limit, fns...); err != nil {
		return nil, err
	}
	c.log.Debug("sm2: batch verified", "items", len(items))
	return out, nil
}

// Verify verifies the signature in r, s of hash using the public key, pub.
// Caller should make sure the hash's correctness.
func Verify(pub *PublicKey, digest []byte, r, s *big.Int) (bool, error) {
	return Default().Verify(pub, digest, r, s)
}

func VerifyASN1(pub *PublicKey, digest, sig []byte) (bool, error) {
	return Default().VerifyASN1(pub, digest, sig)
}

// VerifyWithSM2 verifies the signature in r, s of raw msg and uid using the public key, pub.
func VerifyWithSM2(pub *PublicKey, uid, msg []byte, r, s *big.Int) (bool, error) {
	return Default().VerifyWithSM2(pub, uid, msg, r, s)
}

func VerifyBatch(ctx context.Context, items []BatchItem, limit int) ([]bool, error) {
	return Default().VerifyBatch(ctx, items, limit)
}
