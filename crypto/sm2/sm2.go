package sm2

import (
	"crypto"
	"crypto/subtle"
	"io"
	"math/big"

	"github.com/cockroachdb/errors"

	"github.com/opentoys/sm2kit/crypto/sm2ec"
)

const (
	// keySize is the byte length of a scalar or coordinate.
	keySize = 32

	sm2Uncompressed byte = 0x04
	sm2Compressed02 byte = 0x02
	sm2Compressed03 byte = 0x03

	// maxScalarDraws bounds rejection sampling. A 32-byte draw is rejected
	// with probability below 2^-32, so running out means a broken reader.
	maxScalarDraws = 64
)

// PublicKey is an SM2 public key, an affine curve point.
type PublicKey struct {
	X, Y *big.Int
}

// PrivateKey is an SM2 private key. It implements crypto.Signer.
type PrivateKey struct {
	PublicKey
	D *big.Int
}

// Equal reports whether pub and x hold the same point.
func (pub *PublicKey) Equal(x crypto.PublicKey) bool {
	xx, ok := x.(*PublicKey)
	if !ok || pub.X == nil || xx.X == nil {
		return false
	}
	return pub.X.Cmp(xx.X) == 0 && pub.Y.Cmp(xx.Y) == 0
}

// fits reports whether x is set and encodes in keySize bytes.
func fits(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.BitLen() <= 8*keySize
}

// Bytes returns the uncompressed encoding 04 || X || Y. It panics if a
// coordinate is nil, negative or longer than 32 bytes.
func (pub *PublicKey) Bytes() []byte {
	if !fits(pub.X) || !fits(pub.Y) {
		panic("sm2: public key coordinates do not fit in 32 bytes")
	}
	out := make([]byte, 1+2*keySize)
	out[0] = sm2Uncompressed
	pub.X.FillBytes(out[1 : 1+keySize])
	pub.Y.FillBytes(out[1+keySize:])
	return out
}

// BytesCompressed returns the compressed encoding 02 || X or 03 || X, the
// prefix carrying the parity of Y. It panics under the same conditions as
// Bytes.
func (pub *PublicKey) BytesCompressed() []byte {
	if !fits(pub.X) || !fits(pub.Y) {
		panic("sm2: public key coordinates do not fit in 32 bytes")
	}
	out := make([]byte, 1+keySize)
	out[0] = sm2Compressed02 | byte(pub.Y.Bit(0))
	pub.X.FillBytes(out[1:])
	return out
}

// NewPublicKey parses an uncompressed (04) or compressed (02, 03) point and
// checks that it lies on the curve.
func NewPublicKey(b []byte) (*PublicKey, error) {
	switch {
	case len(b) == 1+2*keySize && b[0] == sm2Uncompressed:
		pub := &PublicKey{
			X: new(big.Int).SetBytes(b[1 : 1+keySize]),
			Y: new(big.Int).SetBytes(b[1+keySize:]),
		}
		if _, err := publicPoint(pub); err != nil {
			return nil, err
		}
		return pub, nil
	case len(b) == 1+keySize && (b[0] == sm2Compressed02 || b[0] == sm2Compressed03):
		x := new(big.Int).SetBytes(b[1:])
		if x.Cmp(curveP) >= 0 {
			return nil, ErrOutOfRange
		}
		p, err := sm2ec.NewPoint().SetCompressed(b[1:], int(b[0]&1))
		if err != nil {
			return nil, ErrPointNotOnCurve
		}
		px, py, err := intsFromPoint(p)
		if err != nil {
			return nil, err
		}
		return &PublicKey{X: px, Y: py}, nil
	}
	return nil, errors.Wrap(ErrInvalidArgument, "sm2: invalid public key encoding")
}

// Public returns the public half of priv.
func (priv *PrivateKey) Public() crypto.PublicKey {
	return &priv.PublicKey
}

// Equal reports whether priv and x are the same key, leaking only the bit
// length of D through timing.
func (priv *PrivateKey) Equal(x crypto.PrivateKey) bool {
	xx, ok := x.(*PrivateKey)
	if !ok || priv.D == nil || xx.D == nil {
		return false
	}
	return priv.PublicKey.Equal(&xx.PublicKey) && subtle.ConstantTimeCompare(priv.D.Bytes(), xx.D.Bytes()) == 1
}

// Bytes returns the 32-byte big-endian private scalar. It panics if D is
// nil, negative or longer than 32 bytes.
func (priv *PrivateKey) Bytes() []byte {
	if !fits(priv.D) {
		panic("sm2: private key does not fit in 32 bytes")
	}
	return priv.D.FillBytes(make([]byte, keySize))
}

// NewPrivateKey builds the key pair for the 32-byte private scalar key,
// which must be in [1, n-1].
func (c *Curve) NewPrivateKey(key []byte) (*PrivateKey, error) {
	if len(key) != keySize {
		return nil, errors.Wrap(ErrInvalidArgument, "sm2: invalid private key size")
	}
	var sec secrets
	defer sec.wipe()

	d := sec.scalar()
	if _, err := d.SetBytes(key); err != nil {
		return nil, ErrOutOfRange
	}
	if d.IsZero() == 1 {
		return nil, ErrOutOfRange
	}
	pub := sec.point()
	c.engine.ScalarBaseMult(pub, d)
	x, y, err := intsFromPoint(pub)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{PublicKey: PublicKey{X: x, Y: y}, D: new(big.Int).SetBytes(key)}, nil
}

func NewPrivateKey(key []byte) (*PrivateKey, error) {
	return Default().NewPrivateKey(key)
}

// randomScalar draws k uniformly from [1, n-1]: a 32-byte value is accepted
// when it is at most n-2 and then incremented. buf is scratch space of
// keySize bytes.
func (c *Curve) randomScalar(rand io.Reader, k *sm2ec.Scalar, buf []byte) error {
	one := sm2ec.NewScalar().SetUint64(1)
	nMinus1 := sm2ec.NewScalar().Negate(one)
	for i := 0; i < maxScalarDraws; i++ {
		if _, err := io.ReadFull(rand, buf); err != nil {
			return randomnessError(err)
		}
		if _, err := k.SetBytes(buf); err != nil || k.Equal(nMinus1) == 1 {
			continue
		}
		k.Add(k, one)
		return nil
	}
	return errors.Mark(errors.New("sm2: random source keeps producing out of range values"), ErrRandomness)
}

// GenerateKey returns a new key pair with D drawn uniformly from [1, n-1].
func (c *Curve) GenerateKey(rand io.Reader) (*PrivateKey, error) {
	if rand == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "sm2: missing random source")
	}
	var sec secrets
	defer sec.wipe()

	d := sec.scalar()
	if err := c.randomScalar(rand, d, sec.bytes(keySize)); err != nil {
		return nil, err
	}
	pub := sec.point()
	c.engine.ScalarBaseMult(pub, d)
	if c.validateKeys && (pub.IsInfinity() == 1 || c.engine.HasOrderN(pub) != 1) {
		return nil, ErrWrongOrder
	}
	x, y, err := intsFromPoint(pub)
	if err != nil {
		return nil, err
	}
	c.log.Debug("sm2: key generated")
	return &PrivateKey{PublicKey: PublicKey{X: x, Y: y}, D: intFromScalar(d)}, nil
}

// GenerateKey generates a key pair on the default curve.
func GenerateKey(rand io.Reader) (*PrivateKey, error) {
	return Default().GenerateKey(rand)
}

// SignerOption implements crypto.SignerOpts for PrivateKey.Sign.
type SignerOption struct {
	uid         []byte
	forceGMSign bool
}

// NewSignerOption returns signer options. With forceGMSign the argument to
// Sign is the raw message, hashed together with ZA for uid (the default uid
// when empty); otherwise it is the digest.
func NewSignerOption(forceGMSign bool, uid []byte) *SignerOption {
	opt := &SignerOption{
		uid:         uid,
		forceGMSign: forceGMSign,
	}
	if forceGMSign && len(uid) == 0 {
		opt.uid = defaultUID
	}
	return opt
}

// DefaultSignerOpts signs raw messages with the default uid.
var DefaultSignerOpts = NewSignerOption(true, nil)

func (*SignerOption) HashFunc() crypto.Hash {
	return crypto.Hash(0)
}

// Sign signs digest with priv on the default curve and returns a DER
// signature. When opts is a *SignerOption with forceGMSign, digest is the
// raw message.
func (priv *PrivateKey) Sign(rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	return Default().signWithOpts(rand, priv, digest, opts)
}

// SignWithSM2 signs uid and msg with priv.
func (priv *PrivateKey) SignWithSM2(rand io.Reader, uid, msg []byte) ([]byte, error) {
	return priv.Sign(rand, msg, NewSignerOption(true, uid))
}
