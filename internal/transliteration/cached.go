package transliteration

import (
	"slices"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/jusunglee/typetoreveal/internal/metrics"
)

type variantGenerator interface {
	Generate(text string) []string
}

// Cached memoizes a generator's results in a bounded LRU keyed by the exact
// input text. Callers always receive their own copy of a result.
type Cached struct {
	gen variantGenerator
	mu  sync.Mutex
	lru *lru.Cache
}

// NewCached wraps gen with an LRU of size entries. A size of zero or less
// means no limit.
func NewCached(gen variantGenerator, size int) *Cached {
	if size < 0 {
		size = 0
	}
	return &Cached{gen: gen, lru: lru.New(size)}
}

func (c *Cached) Generate(text string) []string {
	c.mu.Lock()
	v, ok := c.lru.Get(text)
	c.mu.Unlock()
	if ok {
		metrics.VariantCacheHits.Inc()
		return slices.Clone(v.([]string))
	}

	metrics.VariantCacheMisses.Inc()
	out := c.gen.Generate(text)

	c.mu.Lock()
	c.lru.Add(text, slices.Clone(out))
	c.mu.Unlock()
	return out
}

// Len reports the number of cached inputs.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
