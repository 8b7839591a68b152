package sm2_test

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"io"
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	tjsm2 "github.com/tjfoc/gmsm/sm2"
	"github.com/tjfoc/gmsm/sm3"

	"github.com/opentoys/sm2kit/crypto/sm2"
	"github.com/opentoys/sm2kit/crypto/sm2ec"
)

var (
	msg = []byte("hello world sadkjaskjads")
	uid = []byte("ALICE123@YAHOO.COM")

	orderN, _ = new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFF7203DF6B21C6052B53BBF40939D54123", 16)
)

func TestSignVerify(t *testing.T) {
	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)

	digest, e := sm2.CalculateSM2Hash(&priv.PublicKey, msg, uid)
	require.NoError(t, e)

	for i := 0; i < 20; i++ {
		r, s, e := sm2.Sign(rand.Reader, priv, digest)
		require.NoError(t, e)
		require.True(t, r.Sign() > 0 && r.Cmp(orderN) < 0)
		require.True(t, s.Sign() > 0 && s.Cmp(orderN) < 0)

		ok, e := sm2.Verify(&priv.PublicKey, digest, r, s)
		require.NoError(t, e)
		require.True(t, ok)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)
	r, s, e := sm2.SignWithSM2(rand.Reader, priv, uid, msg)
	require.NoError(t, e)

	ok, e := sm2.VerifyWithSM2(&priv.PublicKey, uid, msg, r, s)
	require.NoError(t, e)
	require.True(t, ok)

	for bit := 0; bit < 256; bit += 37 {
		r2 := new(big.Int).SetBit(r, bit, r.Bit(bit)^1)
		ok, e = sm2.VerifyWithSM2(&priv.PublicKey, uid, msg, r2, s)
		require.NoError(t, e)
		require.False(t, ok)

		s2 := new(big.Int).SetBit(s, bit, s.Bit(bit)^1)
		ok, e = sm2.VerifyWithSM2(&priv.PublicKey, uid, msg, r, s2)
		require.NoError(t, e)
		require.False(t, ok)
	}

	m2 := append([]byte{}, msg...)
	m2[3] ^= 0x10
	ok, e = sm2.VerifyWithSM2(&priv.PublicKey, uid, m2, r, s)
	require.NoError(t, e)
	require.False(t, ok)

	ok, e = sm2.VerifyWithSM2(&priv.PublicKey, []byte("BOB"), msg, r, s)
	require.NoError(t, e)
	require.False(t, ok)

	other, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)
	ok, e = sm2.VerifyWithSM2(&other.PublicKey, uid, msg, r, s)
	require.NoError(t, e)
	require.False(t, ok)
}

func TestVerifyRangeIsVerdict(t *testing.T) {
	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)
	digest := sm3.Sm3Sum(msg)
	r, s, e := sm2.Sign(rand.Reader, priv, digest)
	require.NoError(t, e)

	for _, v := range []struct{ r, s *big.Int }{
		{big.NewInt(0), s},
		{r, big.NewInt(0)},
		{orderN, s},
		{r, orderN},
		{new(big.Int).Neg(r), s},
		// r + s = n
		{r, new(big.Int).Sub(orderN, r)},
	} {
		ok, e := sm2.Verify(&priv.PublicKey, digest, v.r, v.s)
		require.NoError(t, e)
		require.False(t, ok)
	}

	_, e = sm2.Verify(&priv.PublicKey, digest, nil, s)
	requireIs(t, e, sm2.ErrInvalidArgument)
	_, e = sm2.Verify(nil, digest, r, s)
	requireIs(t, e, sm2.ErrInvalidArgument)

	bad := &sm2.PublicKey{X: priv.X, Y: new(big.Int).Add(priv.Y, big.NewInt(1))}
	_, e = sm2.Verify(bad, digest, r, s)
	requireIs(t, e, sm2.ErrPointNotOnCurve)
	requireIs(t, e, sm2.ErrValidation)
}

func TestSignDeterministicEphemeral(t *testing.T) {
	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)
	digest := sm3.Sm3Sum(msg)
	k := big.NewInt(0x123456789abcdef)

	r1, s1, e := sm2.Sign(rand.Reader, priv, digest, sm2.WithEphemeral(k))
	require.NoError(t, e)
	r2, s2, e := sm2.Sign(rand.Reader, priv, digest, sm2.WithEphemeral(k))
	require.NoError(t, e)
	require.Equal(t, 0, r1.Cmp(r2))
	require.Equal(t, 0, s1.Cmp(s2))

	// r = (x(k·G) + e) mod n
	x, _, e := sm2.ScalarBaseMult(k)
	require.NoError(t, e)
	want := new(big.Int).Add(x, new(big.Int).SetBytes(digest))
	want.Mod(want, orderN)
	require.Equal(t, 0, want.Cmp(r1))

	// s = (k - r·d) / (d + 1)
	ws := new(big.Int).Mul(r1, priv.D)
	ws.Sub(k, ws)
	ws.Mul(ws, new(big.Int).ModInverse(new(big.Int).Add(priv.D, big.NewInt(1)), orderN))
	ws.Mod(ws, orderN)
	require.Equal(t, 0, ws.Cmp(s1))

	_, _, e = sm2.Sign(rand.Reader, priv, digest, sm2.WithEphemeral(orderN))
	requireIs(t, e, sm2.ErrOutOfRange)
}

// countingReader repeats block forever and counts the reads.
type countingReader struct {
	block []byte
	reads int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	for i := range p {
		p[i] = c.block[i%len(c.block)]
	}
	return len(p), nil
}

func TestSignRetriesExhausted(t *testing.T) {
	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)

	// every draw yields k = 6, and the digest is chosen so r = 0
	block := make([]byte, 32)
	block[31] = 5
	x, _, e := sm2.ScalarBaseMult(big.NewInt(6))
	require.NoError(t, e)
	digest := new(big.Int).Sub(orderN, new(big.Int).Mod(x, orderN)).FillBytes(make([]byte, 32))

	rd := &countingReader{block: block}
	_, _, e = sm2.Sign(rd, priv, digest)
	requireIs(t, e, sm2.ErrRetriesExhausted)
	requireIs(t, e, sm2.ErrRandomness)
	require.Equal(t, 64, rd.reads)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestRandomnessFailure(t *testing.T) {
	_, e := sm2.GenerateKey(failingReader{})
	requireIs(t, e, sm2.ErrRandomness)
	requireIs(t, e, io.ErrUnexpectedEOF)

	// an all-ones source never yields a value below n
	_, e = sm2.GenerateKey(bytes.NewReader(bytes.Repeat([]byte{0xff}, 64*32)))
	requireIs(t, e, sm2.ErrRandomness)

	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)
	_, _, e = sm2.Sign(failingReader{}, priv, sm3.Sm3Sum(msg))
	requireIs(t, e, sm2.ErrRandomness)
}

func TestSignRejectsBadKeys(t *testing.T) {
	digest := sm3.Sm3Sum(msg)
	_, _, e := sm2.Sign(rand.Reader, nil, digest)
	requireIs(t, e, sm2.ErrInvalidArgument)

	for _, d := range []*big.Int{big.NewInt(0), new(big.Int).Sub(orderN, big.NewInt(1)), orderN} {
		_, _, e = sm2.Sign(rand.Reader, &sm2.PrivateKey{D: d}, digest)
		requireIs(t, e, sm2.ErrOutOfRange, d.Text(16))
	}
}

func TestCalculateZA(t *testing.T) {
	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)

	_, e = sm2.CalculateZA(&priv.PublicKey, make([]byte, 0x2000))
	requireIs(t, e, sm2.ErrUIDTooLong)
	_, e = sm2.CalculateZA(&priv.PublicKey, make([]byte, 0x1fff))
	require.NoError(t, e)

	// ZA over the exact byte layout
	h := sm3.New()
	h.Write([]byte{0x00, 0x80})
	h.Write(sm2.DefaultUID())
	h.Write(mustHex("fffffffeffffffffffffffffffffffffffffffff00000000fffffffffffffffc"))
	h.Write(mustHex("28e9fa9e9d9f5e344d5a9e4bcf6509a7f39789f515ab8f92ddbcbd414d940e93"))
	h.Write(mustHex("32c4ae2c1f1981195f9904466a39c9948fe30bbff2660be1715a4589334c74c7"))
	h.Write(mustHex("bc3736a2f4f6779c59bdcee36b692153d0a9877cc62a474002df32e52139f0a0"))
	h.Write(priv.X.FillBytes(make([]byte, 32)))
	h.Write(priv.Y.FillBytes(make([]byte, 32)))
	want := h.Sum(nil)

	za, e := sm2.CalculateZA(&priv.PublicKey, sm2.DefaultUID())
	require.NoError(t, e)
	require.Equal(t, want, za)

	d1, e := sm2.CalculateSM2Hash(&priv.PublicKey, msg, nil)
	require.NoError(t, e)
	d2, e := sm2.CalculateSM2Hash(&priv.PublicKey, msg, sm2.DefaultUID())
	require.NoError(t, e)
	require.Equal(t, d1, d2)
}

// requireIs checks err against target including category marks, which the
// standard errors.Is does not see.
func requireIs(t *testing.T, err, target error, msgAndArgs ...any) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	require.True(t, errors.Is(err, target), "%v is not %v", err, target)
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func TestInteropWithReference(t *testing.T) {
	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)
	ref := &tjsm2.PrivateKey{
		PublicKey: tjsm2.PublicKey{Curve: tjsm2.P256Sm2(), X: priv.X, Y: priv.Y},
		D:         priv.D,
	}

	r, s, e := sm2.SignWithSM2(rand.Reader, priv, uid, msg)
	require.NoError(t, e)
	require.True(t, tjsm2.Sm2Verify(&ref.PublicKey, msg, uid, r, s))

	r, s, e = tjsm2.Sm2Sign(ref, msg, uid, rand.Reader)
	require.NoError(t, e)
	ok, e := sm2.VerifyWithSM2(&priv.PublicKey, uid, msg, r, s)
	require.NoError(t, e)
	require.True(t, ok)
}

func TestASN1AndSigner(t *testing.T) {
	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)
	var signer crypto.Signer = priv

	sig, e := signer.Sign(rand.Reader, msg, sm2.DefaultSignerOpts)
	require.NoError(t, e)
	digest, e := sm2.CalculateSM2Hash(&priv.PublicKey, msg, nil)
	require.NoError(t, e)
	ok, e := sm2.VerifyASN1(&priv.PublicKey, digest, sig)
	require.NoError(t, e)
	require.True(t, ok)

	// without forceGMSign the argument is already the digest
	sig, e = priv.Sign(rand.Reader, digest, sm2.NewSignerOption(false, nil))
	require.NoError(t, e)
	ok, e = sm2.VerifyASN1(&priv.PublicKey, digest, sig)
	require.NoError(t, e)
	require.True(t, ok)

	sig, e = priv.SignWithSM2(rand.Reader, uid, msg)
	require.NoError(t, e)
	r, s, e := sm2.ParseSignature(sig)
	require.NoError(t, e)
	ok, e = sm2.VerifyWithSM2(&priv.PublicKey, uid, msg, r, s)
	require.NoError(t, e)
	require.True(t, ok)

	again, e := sm2.MarshalSignature(r, s)
	require.NoError(t, e)
	require.Equal(t, sig, again)

	_, e = sm2.VerifyASN1(&priv.PublicKey, digest, sig[:len(sig)-1])
	requireIs(t, e, sm2.ErrInvalidSignature)
	requireIs(t, e, sm2.ErrInvalidArgument)

	_, e = sm2.MarshalSignature(big.NewInt(0), s)
	require.Error(t, e)
}

func TestKeyEncoding(t *testing.T) {
	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)

	again, e := sm2.NewPrivateKey(priv.Bytes())
	require.NoError(t, e)
	require.True(t, priv.Equal(again))

	pub, e := sm2.NewPublicKey(priv.PublicKey.Bytes())
	require.NoError(t, e)
	require.True(t, pub.Equal(&priv.PublicKey))

	_, e = sm2.NewPrivateKey(make([]byte, 32))
	requireIs(t, e, sm2.ErrOutOfRange)
	_, e = sm2.NewPrivateKey(orderN.Bytes())
	requireIs(t, e, sm2.ErrOutOfRange)

	enc := priv.PublicKey.Bytes()
	enc[64] ^= 1
	_, e = sm2.NewPublicKey(enc)
	requireIs(t, e, sm2.ErrPointNotOnCurve)
}

func TestCompressedKeys(t *testing.T) {
	curveP, _ := new(big.Int).SetString("FFFFFFFEFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF00000000FFFFFFFFFFFFFFFF", 16)
	for i := 0; i < 32; i++ {
		priv, e := sm2.GenerateKey(rand.Reader)
		require.NoError(t, e)

		enc := priv.PublicKey.BytesCompressed()
		require.Len(t, enc, 33)
		require.Equal(t, byte(2+priv.Y.Bit(0)), enc[0])

		pub, e := sm2.NewPublicKey(enc)
		require.NoError(t, e)
		require.True(t, pub.Equal(&priv.PublicKey))

		// tjfoc prefixes the parity bit alone
		ref := tjsm2.Decompress(append([]byte{enc[0] & 1}, enc[1:]...))
		require.Equal(t, 0, ref.X.Cmp(priv.X))
		require.Equal(t, 0, ref.Y.Cmp(priv.Y))
		require.Equal(t, enc[1:], tjsm2.Compress(ref)[1:])
		negY := new(big.Int).Sub(curveP, priv.Y)

		// the flipped prefix decodes to the negated point
		enc[0] ^= 1
		neg, e := sm2.NewPublicKey(enc)
		require.NoError(t, e)
		require.Equal(t, 0, neg.X.Cmp(priv.X))
		require.Equal(t, 0, neg.Y.Cmp(negY))
	}

	// x = 2 is not the x coordinate of any point
	bad := make([]byte, 33)
	bad[0], bad[32] = 0x02, 2
	_, e := sm2.NewPublicKey(bad)
	requireIs(t, e, sm2.ErrPointNotOnCurve)

	bad = append([]byte{0x03}, curveP.Bytes()...)
	_, e = sm2.NewPublicKey(bad)
	requireIs(t, e, sm2.ErrOutOfRange)

	bad[0] = 0x05
	_, e = sm2.NewPublicKey(bad)
	requireIs(t, e, sm2.ErrInvalidArgument)
}

func TestKeyBytesPanics(t *testing.T) {
	big33 := new(big.Int).Lsh(big.NewInt(1), 256)
	require.Panics(t, func() { (&sm2.PublicKey{X: big33, Y: big.NewInt(1)}).Bytes() })
	require.Panics(t, func() { (&sm2.PublicKey{X: big.NewInt(1)}).Bytes() })
	require.Panics(t, func() { (&sm2.PublicKey{X: big.NewInt(1), Y: big.NewInt(-1)}).BytesCompressed() })
	require.Panics(t, func() { (&sm2.PrivateKey{}).Bytes() })
	require.Panics(t, func() { (&sm2.PrivateKey{D: big33}).Bytes() })
	require.NotPanics(t, func() { (&sm2.PrivateKey{D: big.NewInt(1)}).Bytes() })
}

func TestSharedSecret(t *testing.T) {
	a, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)
	b, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)

	ab, e := sm2.SharedSecret(a, &b.PublicKey)
	require.NoError(t, e)
	ba, e := sm2.SharedSecret(b, &a.PublicKey)
	require.NoError(t, e)
	require.Len(t, ab, 32)
	require.Equal(t, ab, ba)

	x, _, e := sm2.ScalarMult(b.X, b.Y, a.D)
	require.NoError(t, e)
	require.Equal(t, x.FillBytes(make([]byte, 32)), ab)

	_, e = sm2.SharedSecret(a, &sm2.PublicKey{X: big.NewInt(1), Y: big.NewInt(1)})
	requireIs(t, e, sm2.ErrPointNotOnCurve)
}

func TestCheckKey(t *testing.T) {
	priv, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)
	other, e := sm2.GenerateKey(rand.Reader)
	require.NoError(t, e)

	require.NoError(t, sm2.CheckKey(&priv.PublicKey, nil))
	require.NoError(t, sm2.CheckKey(&priv.PublicKey, priv.D))
	requireIs(t, sm2.CheckKey(&priv.PublicKey, other.D), sm2.ErrKeyMismatch)
	requireIs(t, sm2.CheckKey(&priv.PublicKey, orderN), sm2.ErrOutOfRange)

	requireIs(t, sm2.CheckKey(&sm2.PublicKey{X: big.NewInt(0), Y: big.NewInt(0)}, nil), sm2.ErrInfinity)
	requireIs(t, sm2.CheckKey(&sm2.PublicKey{X: priv.X, Y: new(big.Int).Add(priv.Y, big.NewInt(1))}, nil), sm2.ErrPointNotOnCurve)
	p := new(big.Int).Lsh(big.NewInt(1), 256)
	requireIs(t, sm2.CheckKey(&sm2.PublicKey{X: p, Y: priv.Y}, nil), sm2.ErrOutOfRange)
	requireIs(t, sm2.CheckKey(nil, nil), sm2.ErrInvalidArgument)
}

func TestScalarMultBoundary(t *testing.T) {
	gx, gy, e := sm2.ScalarBaseMult(big.NewInt(1))
	require.NoError(t, e)
	require.Equal(t, "32c4ae2c1f1981195f9904466a39c9948fe30bbff2660be1715a4589334c74c7", hex.EncodeToString(gx.Bytes()))
	require.Equal(t, "bc3736a2f4f6779c59bdcee36b692153d0a9877cc62a474002df32e52139f0a0", hex.EncodeToString(gy.Bytes()))

	_, _, e = sm2.ScalarBaseMult(big.NewInt(0))
	requireIs(t, e, sm2.ErrInfinity)
	_, _, e = sm2.ScalarBaseMult(orderN)
	requireIs(t, e, sm2.ErrOutOfRange)

	// 2·G + G = 3·G
	x3, y3, e := sm2.ScalarBaseMult(big.NewInt(3))
	require.NoError(t, e)
	x, y, e := sm2.ScalarMultAdd(gx, gy, big.NewInt(2), gx, gy)
	require.NoError(t, e)
	require.Equal(t, 0, x.Cmp(x3))
	require.Equal(t, 0, y.Cmp(y3))
	x, y, e = sm2.ScalarBaseMultAdd(big.NewInt(2), gx, gy)
	require.NoError(t, e)
	require.Equal(t, 0, x.Cmp(x3))
	require.Equal(t, 0, y.Cmp(y3))

	// G + G goes through the doubling
	x2, y2, e := sm2.ScalarBaseMult(big.NewInt(2))
	require.NoError(t, e)
	x, y, e = sm2.ScalarBaseMultAdd(big.NewInt(1), gx, gy)
	require.NoError(t, e)
	require.Equal(t, 0, x.Cmp(x2))
	require.Equal(t, 0, y.Cmp(y2))
}

func TestVerifyBatch(t *testing.T) {
	keys := make([]*sm2.PrivateKey, 3)
	for i := range keys {
		var e error
		keys[i], e = sm2.GenerateKey(rand.Reader)
		require.NoError(t, e)
	}
	var items []sm2.BatchItem
	var want []bool
	for i := 0; i < 24; i++ {
		k := keys[i%len(keys)]
		digest := sm3.Sm3Sum([]byte{byte(i)})
		r, s, e := sm2.Sign(rand.Reader, k, digest)
		require.NoError(t, e)
		valid := i%5 != 0
		if !valid {
			digest = sm3.Sm3Sum([]byte{byte(i), 1})
		}
		items = append(items, sm2.BatchItem{Pub: &k.PublicKey, Digest: digest, R: r, S: s})
		want = append(want, valid)
	}

	got, e := sm2.VerifyBatch(context.Background(), items, 4)
	require.NoError(t, e)
	require.Equal(t, want, got)

	items[7].Pub = nil
	_, e = sm2.VerifyBatch(context.Background(), items, 4)
	requireIs(t, e, sm2.ErrInvalidArgument)
}

func TestCurveOptions(t *testing.T) {
	cache := sm2ec.NewTableCache(sm2ec.WithCapacity(4))
	engine := sm2ec.NewEngine(sm2ec.WithTableCache(cache))
	c := sm2.New(sm2.WithEngine(engine), sm2.WithKeyValidation(true), sm2.WithUID(uid))
	require.Same(t, engine, c.Engine())

	priv, e := c.GenerateKey(rand.Reader)
	require.NoError(t, e)

	// the curve's uid replaces an empty one
	r, s, e := c.SignWithSM2(rand.Reader, priv, nil, msg)
	require.NoError(t, e)
	ok, e := sm2.VerifyWithSM2(&priv.PublicKey, uid, msg, r, s)
	require.NoError(t, e)
	require.True(t, ok)

	// repeated verification against one key builds its table
	for i := 0; i < 3; i++ {
		ok, e = c.VerifyWithSM2(&priv.PublicKey, nil, msg, r, s)
		require.NoError(t, e)
		require.True(t, ok)
	}
	require.Equal(t, uint64(1), cache.Stats().Builds)

	ladder := sm2.New(sm2.WithEngine(sm2ec.NewEngine(sm2ec.WithMultiplier(sm2ec.LadderBackend{}))))
	ok, e = ladder.VerifyWithSM2(&priv.PublicKey, uid, msg, r, s)
	require.NoError(t, e)
	require.True(t, ok)
}

func TestErrorCategories(t *testing.T) {
	for _, v := range []struct {
		err, cat error
	}{
		{sm2.ErrNilKey, sm2.ErrInvalidArgument},
		{sm2.ErrUIDTooLong, sm2.ErrInvalidArgument},
		{sm2.ErrRetriesExhausted, sm2.ErrRandomness},
		{sm2.ErrOutOfRange, sm2.ErrValidation},
		{sm2.ErrWrongOrder, sm2.ErrValidation},
		{sm2.ErrKeyMismatch, sm2.ErrValidation},
	} {
		n := 0
		for _, cat := range []error{sm2.ErrInvalidArgument, sm2.ErrRandomness, sm2.ErrValidation} {
			if errors.Is(v.err, cat) {
				n++
			}
		}
		require.True(t, errors.Is(v.err, v.cat), v.err.Error())
		require.Equal(t, 1, n, v.err.Error())
	}
}

func BenchmarkSign(b *testing.B) {
	priv, e := sm2.GenerateKey(rand.Reader)
	if e != nil {
		b.Fatal(e)
	}
	digest := sm3.Sm3Sum(msg)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, e := sm2.Sign(rand.Reader, priv, digest); e != nil {
			b.Fatal(e)
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	priv, e := sm2.GenerateKey(rand.Reader)
	if e != nil {
		b.Fatal(e)
	}
	digest := sm3.Sm3Sum(msg)
	r, s, e := sm2.Sign(rand.Reader, priv, digest)
	if e != nil {
		b.Fatal(e)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if ok, _ := sm2.Verify(&priv.PublicKey, digest, r, s); !ok {
			b.Fatal("verify failed")
		}
	}
}
