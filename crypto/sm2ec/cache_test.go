package sm2ec

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// multiples returns the normalized points 1·G .. count·G.
func multiples(count int) []*Point {
	out := make([]*Point, count)
	acc := NewPoint().SetGenerator()
	g := NewPoint().SetGenerator()
	for i := range out {
		out[i] = NewPoint().Set(acc).normalize()
		acc.Add(acc, g)
	}
	return out
}

func TestCacheThreshold(t *testing.T) {
	c := NewTableCache(WithCapacity(4), WithBuildThreshold(3))
	p := multiples(1)[0]

	require.Nil(t, c.table(p))
	require.Nil(t, c.table(p))
	tbl := c.table(p)
	require.NotNil(t, tbl)
	require.Same(t, tbl, c.table(p))

	st := c.Stats()
	require.Equal(t, uint64(1), st.Misses)
	require.Equal(t, uint64(3), st.Hits)
	require.Equal(t, uint64(1), st.Builds)
	require.Equal(t, 1, c.Len())
	require.Equal(t, 4, c.Capacity())
}

func TestCacheEviction(t *testing.T) {
	c := NewTableCache(WithCapacity(2), WithBuildThreshold(2))
	pts := multiples(3)

	// pts[0] used twice, pts[1] once
	c.table(pts[0])
	require.NotNil(t, c.table(pts[0]))
	c.table(pts[1])
	require.Equal(t, 2, c.Len())

	// pts[2] replaces the least used slot
	c.table(pts[2])
	st := c.Stats()
	require.Equal(t, uint64(1), st.Evictions)
	require.Equal(t, 2, c.Len())

	_, ok := c.find(&pts[1].x, &pts[1].y)
	require.False(t, ok)
	i, ok := c.find(&pts[0].x, &pts[0].y)
	require.True(t, ok)
	require.NotNil(t, c.entries[i].table)

	c.Reset()
	require.Equal(t, 0, c.Len())
	_, ok = c.find(&pts[0].x, &pts[0].y)
	require.False(t, ok)
}

func TestCacheMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewTableCache(WithRegisterer(reg), WithBuildThreshold(2))
	// a second cache on the same registry shares the collectors
	NewTableCache(WithRegisterer(reg))

	p := multiples(1)[0]
	c.table(p)
	c.table(p)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += "/" + l.GetValue()
			}
			got[name] = m.GetCounter().GetValue()
		}
	}
	require.Equal(t, float64(1), got["sm2_table_cache_lookups_total/hit"])
	require.Equal(t, float64(1), got["sm2_table_cache_lookups_total/miss"])
	require.Equal(t, float64(1), got["sm2_table_cache_builds_total"])
}

// TestCacheConcurrent hammers one shared cache from many goroutines with more
// distinct points than it has slots, so lookups, builds and evictions race.
func TestCacheConcurrent(t *testing.T) {
	const (
		workers = 128
		rounds  = 4
	)
	pts := multiples(DefaultCacheCapacity + 8)

	// expected k·P from the ladder, which never touches the cache
	k := NewScalar().SetUint64(0x1d2c3b4a59687)
	want := make([]Point, len(pts))
	for i, p := range pts {
		ladderMul(&want[i], p, &k.v)
	}

	e := NewEngine(WithTableCache(NewTableCache()))
	g, _ := errgroup.WithContext(context.Background())
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			var r Point
			for j := 0; j < rounds; j++ {
				i := (w*7 + j*3) % len(pts)
				e.ScalarMult(&r, pts[i], k)
				if r.Equal(&want[i]) != 1 {
					t.Errorf("worker %d: point %d mismatch", w, i)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	st := e.Cache().Stats()
	require.Equal(t, uint64(workers*rounds), st.Hits+st.Misses)
	require.LessOrEqual(t, e.Cache().Len(), DefaultCacheCapacity)
}

func TestTableBackendJacobianInput(t *testing.T) {
	b := NewTableBackend(NewTableCache(WithBuildThreshold(1)))
	g := NewPoint().SetGenerator()
	p := NewPoint().Add(NewPoint().Double(g), g) // Z ≠ 1
	k := NewScalar().SetUint64(12345)

	var want, r Point
	ladderMul(&want, p, &k.v)
	b.ScalarMult(&r, p, k)
	require.Equal(t, 1, r.Equal(&want))
	b.ScalarMult(&r, p, k)
	require.Equal(t, 1, r.Equal(&want))

	b.ScalarMult(&r, NewPoint(), k)
	require.Equal(t, 1, r.IsInfinity())
}
