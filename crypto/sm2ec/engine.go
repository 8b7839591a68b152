package sm2ec

import (
	"log/slog"
)

// Engine performs the curve operations the SM2 protocol needs on top of a
// Multiplier. The zero value is not usable; use NewEngine.
type Engine struct {
	mult  Multiplier
	cache *TableCache
	log   *slog.Logger
}

type EngineOption func(*Engine)

// WithMultiplier sets the backend.
func WithMultiplier(m Multiplier) EngineOption {
	return func(e *Engine) {
		e.mult = m
	}
}

// WithTableCache sets the cache used by the default table backend.
func WithTableCache(c *TableCache) EngineOption {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine returns an Engine. Without options it uses the table backend
// with a private cache of default capacity.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{log: slog.New(slog.DiscardHandler)}
	for _, v := range opts {
		v(e)
	}
	if e.mult == nil {
		if e.cache == nil {
			e.cache = NewTableCache(WithCacheLogger(e.log))
		}
		e.mult = NewTableBackend(e.cache)
	}
	e.log.Debug("sm2ec: engine ready", "backend", e.mult.Name())
	return e
}

// Multiplier returns the engine backend.
func (e *Engine) Multiplier() Multiplier {
	return e.mult
}

// Cache returns the table cache, which may be nil.
func (e *Engine) Cache() *TableCache {
	return e.cache
}

// ScalarMult sets r = k·p and returns r.
func (e *Engine) ScalarMult(r, p *Point, k *Scalar) *Point {
	e.mult.ScalarMult(r, p, k)
	return r
}

// ScalarBaseMult sets r = k·G and returns r.
func (e *Engine) ScalarBaseMult(r *Point, k *Scalar) *Point {
	e.mult.ScalarBaseMult(r, k)
	return r
}

// ScalarMultAdd sets r = k·p + a and returns r.
func (e *Engine) ScalarMultAdd(r, p *Point, k *Scalar, a *Point) *Point {
	var t Point
	e.mult.ScalarMult(&t, p, k)
	return r.Add(&t, a)
}

// ScalarBaseMultAdd sets r = k·G + a and returns r.
func (e *Engine) ScalarBaseMultAdd(r *Point, k *Scalar, a *Point) *Point {
	var t Point
	e.mult.ScalarBaseMult(&t, k)
	return r.Add(&t, a)
}

// HasOrderN returns 1 if n·p is the point at infinity, and zero otherwise.
// The multiplication by n runs through the ladder since n is not a
// canonical scalar.
func (e *Engine) HasOrderN(p *Point) int {
	var t Point
	ladderMul(&t, p, &fieldN.m)
	return t.IsInfinity()
}
