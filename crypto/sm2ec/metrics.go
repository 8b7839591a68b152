package sm2ec

import (
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// cacheMetrics mirrors CacheStats as Prometheus counters. A nil
// *cacheMetrics records nothing.
type cacheMetrics struct {
	lookups *prometheus.CounterVec
	evicted prometheus.Counter
	built   prometheus.Counter
}

func newCacheMetrics(reg prometheus.Registerer) *cacheMetrics {
	if reg == nil {
		return nil
	}
	m := &cacheMetrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sm2",
				Subsystem: "table_cache",
				Name:      "lookups_total",
				Help:      "Number of table cache lookups by result",
			},
			[]string{"result"},
		),
		evicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sm2",
				Subsystem: "table_cache",
				Name:      "evictions_total",
				Help:      "Number of points evicted from the table cache",
			},
		),
		built: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sm2",
				Subsystem: "table_cache",
				Name:      "builds_total",
				Help:      "Number of stripe tables generated",
			},
		),
	}
	m.lookups = register(reg, m.lookups)
	m.evicted = register(reg, m.evicted)
	m.built = register(reg, m.built)
	return m
}

// register adds c to reg, reusing the collector already registered under
// the same name.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func (m *cacheMetrics) hit() {
	if m != nil {
		m.lookups.WithLabelValues("hit").Inc()
	}
}

func (m *cacheMetrics) miss() {
	if m != nil {
		m.lookups.WithLabelValues("miss").Inc()
	}
}

func (m *cacheMetrics) evict() {
	if m != nil {
		m.evicted.Inc()
	}
}

func (m *cacheMetrics) build() {
	if m != nil {
		m.built.Inc()
	}
}
