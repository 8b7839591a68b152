package gopool_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/opentoys/sm2kit/gopool"
)

func TestAllWithLimit(t *testing.T) {
	var running, peak atomic.Int32
	fns := make([]func() error, 32)
	for i := range fns {
		fns[i] = func() error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			running.Add(-1)
			return nil
		}
	}
	require.NoError(t, gopool.AllWithLimit(4, fns...))
	require.LessOrEqual(t, peak.Load(), int32(4))
}

func TestAllReturnsError(t *testing.T) {
	boom := errors.New("boom")
	err := gopool.All(
		func() error { return nil },
		func() error { return boom },
	)
	require.ErrorIs(t, err, boom)
}

func TestAllContextCancels(t *testing.T) {
	boom := errors.New("boom")
	var ran atomic.Int32
	fns := []func(context.Context) error{
		func(context.Context) error { return boom },
	}
	for i := 0; i < 8; i++ {
		fns = append(fns, func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	err := gopool.AllContext(context.Background(), 1, fns...)
	require.ErrorIs(t, err, boom)
	require.Zero(t, ran.Load())
}
