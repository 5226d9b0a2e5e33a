package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics counts cache hits and misses per entity class.
type CacheMetrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

// NewCacheMetrics constructs and registers the cache collectors.
func NewCacheMetrics(reg prometheus.Registerer, namespace string) (*CacheMetrics, error) {
	if namespace == "" {
		namespace = "arch"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total number of cache hits partitioned by entity.",
	}, []string{"entity"})
	registered, err := registerCounterVec(reg, hits)
	if err != nil {
		return nil, fmt.Errorf("register cache hits collector: %w", err)
	}
	hits = registered

	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total number of cache misses partitioned by entity.",
	}, []string{"entity"})
	registered, err = registerCounterVec(reg, misses)
	if err != nil {
		return nil, fmt.Errorf("register cache misses collector: %w", err)
	}
	misses = registered

	return &CacheMetrics{hits: hits, misses: misses}, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return nil, err
	}
	return vec, nil
}

// CacheHit records a hit for the entity class.
func (m *CacheMetrics) CacheHit(entity string) {
	if m != nil && m.hits != nil {
		m.hits.WithLabelValues(entity).Inc()
	}
}

// CacheMiss records a miss for the entity class.
func (m *CacheMetrics) CacheMiss(entity string) {
	if m != nil && m.misses != nil {
		m.misses.WithLabelValues(entity).Inc()
	}
}
