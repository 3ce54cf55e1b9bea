package config

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// Cleanup intervals for lazy background eviction
	overviewCleanupInterval    = 10 * time.Minute
	aggregationCleanupInterval = 10 * time.Minute
	trendsCleanupInterval      = 5 * time.Minute
)

// Caches bundles the per-process TTL caches fronting the expensive
// aggregate queries. Entries expire by TTL; nothing here is coherent
// across process instances.
type Caches struct {
	Overview    *cache.Cache
	Aggregation *cache.Cache
	Trends      *cache.Cache
}

func NewCaches(policy AnalyticsPolicy) *Caches {
	return &Caches{
		Overview:    cache.New(policy.OverviewCacheTTL, overviewCleanupInterval),
		Aggregation: cache.New(policy.AggregationCacheTTL, aggregationCleanupInterval),
		Trends:      cache.New(policy.TrendsCacheTTL, trendsCleanupInterval),
	}
}

// Flush clears every cache. Called after a snapshot reload so stale
// aggregates never outlive the data they were computed from.
func (c *Caches) Flush() {
	c.Overview.Flush()
	c.Aggregation.Flush()
	c.Trends.Flush()
}

func GetCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += ":" + fmt.Sprintf("%v", param)
	}
	return key
}
