package sm2ec

import (
	"github.com/cockroachdb/errors"
)

var errScalarLength = errors.New("sm2ec: invalid scalar length")

// ErrScalarRange is returned by SetBytes for values not below the order.
var ErrScalarRange = errors.New("sm2ec: scalar out of range")

// Scalar is an integer modulo the order n of the base point. The zero value
// is zero. Values are kept canonical, and every method runs in time
// independent of the value.
type Scalar struct {
	v fe
}

// NewScalar returns a new zero Scalar.
func NewScalar() *Scalar {
	return new(Scalar)
}

// Set sets s = t and returns s.
func (s *Scalar) Set(t *Scalar) *Scalar {
	s.v = t.v
	return s
}

// SetUint64 sets s = v and returns s.
func (s *Scalar) SetUint64(v uint64) *Scalar {
	s.v = fe{v & limbMask, v >> limbBits}
	return s
}

// SetBytes sets s to the 32-byte big-endian value b. It returns an error if
// b is not 32 bytes long or the value is not below n.
func (s *Scalar) SetBytes(b []byte) (*Scalar, error) {
	if len(b) != elementLength {
		return nil, errScalarLength
	}
	var buf [elementLength]byte
	copy(buf[:], b)
	var t fe
	feSetBytes(&t, &buf)
	if feLessThan(&t, fieldN) == 0 {
		return nil, ErrScalarRange
	}
	s.v = t
	feZero(&t)
	return s, nil
}

// SetBytesReduced sets s to b mod n, where b is a big-endian value of at
// most 32 bytes. Longer inputs are truncated to their leftmost 32 bytes, the
// way a digest is turned into an integer.
func (s *Scalar) SetBytesReduced(b []byte) *Scalar {
	if len(b) > elementLength {
		b = b[:elementLength]
	}
	var buf [elementLength]byte
	copy(buf[elementLength-len(b):], b)
	feSetBytes(&s.v, &buf)
	reduceOnce(&s.v, fieldN)
	return s
}

// Bytes returns the 32-byte big-endian encoding of s.
func (s *Scalar) Bytes() []byte {
	var out [elementLength]byte
	feBytes(&out, &s.v)
	return out[:]
}

// Add sets s = a + b mod n and returns s.
func (s *Scalar) Add(a, b *Scalar) *Scalar {
	modAdd(&s.v, &a.v, &b.v, fieldN)
	return s
}

// Sub sets s = a - b mod n and returns s.
func (s *Scalar) Sub(a, b *Scalar) *Scalar {
	modSub(&s.v, &a.v, &b.v, fieldN)
	return s
}

// Negate sets s = -a mod n and returns s.
func (s *Scalar) Negate(a *Scalar) *Scalar {
	modNeg(&s.v, &a.v, fieldN)
	return s
}

// Mul sets s = a * b mod n and returns s.
func (s *Scalar) Mul(a, b *Scalar) *Scalar {
	var t fe
	montMul(&t, &a.v, &b.v, fieldN)
	montMul(&s.v, &t, &fieldN.rr, fieldN)
	feZero(&t)
	return s
}

// Invert sets s = a⁻¹ mod n and returns s. The inverse of zero is zero.
func (s *Scalar) Invert(a *Scalar) *Scalar {
	var t fe
	toMont(&t, &a.v, fieldN)
	montInv(&t, &t, fieldN)
	fromMont(&s.v, &t, fieldN)
	feZero(&t)
	return s
}

// IsZero returns 1 if s == 0, and zero otherwise.
func (s *Scalar) IsZero() int {
	return int(feIsZero(&s.v) & 1)
}

// Equal returns 1 if s and t are equal, and zero otherwise.
func (s *Scalar) Equal(t *Scalar) int {
	return int(feEqual(&s.v, &t.v) & 1)
}

// Zeroize wipes the value of s.
func (s *Scalar) Zeroize() {
	feZero(&s.v)
}
