package sm2ec

import (
	"math/bits"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/cpu"
)

// Backend names accepted by SelectBackend.
const (
	BackendAuto   = "auto"
	BackendTable  = "table"
	BackendLadder = "ladder"
)

// Multiplier computes scalar multiples of points. Every implementation
// returns the same point for the same inputs; they differ in speed and
// memory.
type Multiplier interface {
	Name() string
	// ScalarMult sets r = k·p.
	ScalarMult(r, p *Point, k *Scalar)
	// ScalarBaseMult sets r = k·G.
	ScalarBaseMult(r *Point, k *Scalar)
}

// LadderBackend uses the constant-time double-and-add ladder for every
// multiplication and keeps no tables.
type LadderBackend struct{}

func (LadderBackend) Name() string { return BackendLadder }

func (LadderBackend) ScalarMult(r, p *Point, k *Scalar) {
	ladderMul(r, p, &k.v)
}

func (LadderBackend) ScalarBaseMult(r *Point, k *Scalar) {
	ladderMul(r, NewPoint().SetGenerator(), &k.v)
}

// TableBackend multiplies the generator with its stripe table, and other
// points with the signed window method until the cache hands out a stripe
// table for them.
type TableBackend struct {
	cache *TableCache
}

// NewTableBackend returns a TableBackend using cache. A nil cache disables
// caching.
func NewTableBackend(cache *TableCache) *TableBackend {
	return &TableBackend{cache: cache}
}

func (b *TableBackend) Name() string { return BackendTable }

func (b *TableBackend) ScalarMult(r, p *Point, k *Scalar) {
	if p.infinity == 1 || b.cache == nil {
		windowMul(r, p, &k.v)
		return
	}
	q := *p
	if feEqual(&q.z, &fieldP.one) == 0 {
		q.normalize()
	}
	if t := b.cache.table(&q); t != nil {
		stripeMul(r, t, &k.v)
		return
	}
	windowMul(r, &q, &k.v)
}

func (b *TableBackend) ScalarBaseMult(r *Point, k *Scalar) {
	stripeMul(r, baseTable(), &k.v)
}

// SelectBackend returns the named backend. "auto" picks the table backend
// unless the CPU looks like a small target.
func SelectBackend(name string, cache *TableCache) (Multiplier, error) {
	switch name {
	case "", BackendAuto:
		if compactTarget() {
			return LadderBackend{}, nil
		}
		return NewTableBackend(cache), nil
	case BackendTable:
		return NewTableBackend(cache), nil
	case BackendLadder:
		return LadderBackend{}, nil
	}
	return nil, errors.Newf("sm2ec: unknown backend %q", name)
}

// compactTarget reports whether the tables are not worth their memory:
// 32-bit platforms, where 64-bit multiplies are emulated, and 64-bit CPUs
// lacking the wide multiply/vector extensions.
func compactTarget() bool {
	if bits.UintSize == 32 {
		return true
	}
	switch runtime.GOARCH {
	case "amd64":
		return !cpu.X86.HasBMI2
	case "arm64":
		return !cpu.ARM64.HasASIMD
	}
	return false
}
