package sm2

import (
	"hash"
	"log/slog"
	"sync"

	"github.com/tjfoc/gmsm/sm3"

	"github.com/opentoys/sm2kit/crypto/sm2ec"
)

// Hasher returns a fresh 32-byte hash, SM3 unless configured otherwise.
type Hasher func() hash.Hash

// Curve runs the SM2 operations on one engine. It is safe for concurrent
// use; the engine's table cache is the only state shared between calls.
type Curve struct {
	engine       *sm2ec.Engine
	hasher       Hasher
	log          *slog.Logger
	uid          []byte
	validateKeys bool
}

type Option func(*Curve)

// WithEngine sets the multiplication engine.
func WithEngine(e *sm2ec.Engine) Option {
	return func(c *Curve) {
		c.engine = e
	}
}

// WithHasher replaces SM3.
func WithHasher(h Hasher) Option {
	return func(c *Curve) {
		if h != nil {
			c.hasher = h
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Curve) {
		if l != nil {
			c.log = l
		}
	}
}

// WithUID sets the identity used by SignWithSM2 and VerifyWithSM2 when the
// caller passes none.
func WithUID(uid []byte) Option {
	return func(c *Curve) {
		if len(uid) > 0 {
			c.uid = append([]byte{}, uid...)
		}
	}
}

// WithKeyValidation makes GenerateKey check that the new public key is
// finite and of order n.
func WithKeyValidation(on bool) Option {
	return func(c *Curve) {
		c.validateKeys = on
	}
}

// New returns a Curve. Without options it uses SM3, the default uid, a
// discarding logger and an engine with its own table cache.
func New(opts ...Option) *Curve {
	c := &Curve{
		hasher: sm3.New,
		log:    slog.New(slog.DiscardHandler),
		uid:    defaultUID,
	}
	for _, v := range opts {
		v(c)
	}
	if c.engine == nil {
		c.engine = sm2ec.NewEngine(sm2ec.WithEngineLogger(c.log))
	}
	return c
}

// Engine returns the engine the curve runs on.
func (c *Curve) Engine() *sm2ec.Engine {
	return c.engine
}

var defaultCurve = sync.OnceValue(func() *Curve { return New() })

// Default returns the Curve behind the package-level functions.
func Default() *Curve {
	return defaultCurve()
}
