package domain

import (
	"fmt"
	"time"
)

// Cache keys are built in one place so invalidation and population cannot
// drift apart.

func CacheKeyUser(id string) string { return "user:id:" + id }

func CacheKeyProduct(id string) string { return "product:id:" + id }

func CacheKeyProductCode(code string) string { return "product:code:" + code }

func CacheKeyProductList(f ProductFilter) string {
	f = f.Normalize()
	return fmt.Sprintf("product:list:%d:%d:%s", f.Page, f.Limit, f.Sort)
}

// CacheProductListPattern matches every cached product listing. List keys are
// parameterized and not enumerable ahead of time, so write paths invalidate
// them by pattern.
const CacheProductListPattern = "product:list:*"

// CacheTier selects the TTL class for an entity's cache entries.
type CacheTier int

const (
	CacheTierShort CacheTier = iota
	CacheTierMedium
	CacheTierLong
)

// CacheTTLs maps tiers to concrete durations, usually sourced from config.
type CacheTTLs struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// For resolves the duration of a tier.
func (t CacheTTLs) For(tier CacheTier) time.Duration {
	switch tier {
	case CacheTierShort:
		return t.Short
	case CacheTierLong:
		return t.Long
	default:
		return t.Medium
	}
}
