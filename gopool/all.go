package gopool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AllWithLimit runs fns with at most max of them in flight and returns the
// first error. A negative max means no limit.
func AllWithLimit(max int, fns ...func() (e error)) (e error) {
	var g errgroup.Group
	g.SetLimit(max)
	for _, v := range fns {
		g.Go(v)
	}
	return g.Wait()
}

func All(fns ...func() (e error)) (e error) {
	return AllWithLimit(-1, fns...)
}

// AllContext is AllWithLimit for functions that watch a context. The context
// handed to fns is cancelled once one of them fails.
func AllContext(ctx context.Context, max int, fns ...func(ctx context.Context) (e error)) (e error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max)
	for _, v := range fns {
		g.Go(func() error {
			if e := gctx.Err(); e != nil {
				return e
			}
			return v(gctx)
		})
	}
	return g.Wait()
}
