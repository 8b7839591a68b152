package sm2

import (
	"encoding/hex"
)

var defaultUID = []byte{0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38, 0x31, 0x32, 0x33, 0x34, 0x35, 0x36, 0x37, 0x38}

// a || b || xG || yG, the curve part of ZA.
var zaCurve = mustHex("" +
	"fffffffeffffffffffffffffffffffffffffffff00000000fffffffffffffffc" +
	"28e9fa9e9d9f5e344d5a9e4bcf6509a7f39789f515ab8f92ddbcbd414d940e93" +
	"32c4ae2c1f1981195f9904466a39c9948fe30bbff2660be1715a4589334c74c7" +
	"bc3736a2f4f6779c59bdcee36b692153d0a9877cc62a474002df32e52139f0a0")

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// DefaultUID returns a copy of the identity used when none is given,
// "1234567812345678".
func DefaultUID() []byte {
	return append([]byte{}, defaultUID...)
}

// CalculateZA ZA = H256(ENTLA || IDA || a || b || xG || yG || xA || yA).
// Compliance with GB/T 32918.2-2016 5.5.
//
// This function will not use default UID even the uid argument is empty.
func (c *Curve) CalculateZA(pub *PublicKey, uid []byte) ([]byte, error) {
	uidLen := len(uid)
	if uidLen >= 0x2000 {
		return nil, ErrUIDTooLong
	}
	if pub == nil || pub.X == nil || pub.Y == nil {
		return nil, ErrNilKey
	}
	if pub.X.Sign() < 0 || pub.Y.Sign() < 0 || pub.X.Cmp(curveP) >= 0 || pub.Y.Cmp(curveP) >= 0 {
		return nil, ErrOutOfRange
	}
	entla := uint16(uidLen) << 3
	md := c.hasher()
	md.Write([]byte{byte(entla >> 8), byte(entla)})
	if uidLen > 0 {
		md.Write(uid)
	}
	md.Write(zaCurve)
	md.Write(pub.X.FillBytes(make([]byte, keySize)))
	md.Write(pub.Y.FillBytes(make([]byte, keySize)))
	return md.Sum(nil), nil
}

// CalculateSM2Hash returns H256(ZA || data), the digest that is signed.
// An empty uid means the curve's uid.
func (c *Curve) CalculateSM2Hash(pub *PublicKey, data, uid []byte) ([]byte, error) {
	if len(uid) == 0 {
		uid = c.uid
	}
	za, err := c.CalculateZA(pub, uid)
	if err != nil {
		return nil, err
	}
	md := c.hasher()
	md.Write(za)
	md.Write(data)
	return md.Sum(nil), nil
}

func CalculateZA(pub *PublicKey, uid []byte) ([]byte, error) {
	return Default().CalculateZA(pub, uid)
}

// CalculateSM2Hash calculates hash value for data including uid and public key parameters
// according standards.
//
// uid can be nil, then it will use default uid (1234567812345678)
func CalculateSM2Hash(pub *PublicKey, data, uid []byte) ([]byte, error) {
	return Default().CalculateSM2Hash(pub, data, uid)
}
