package handlers

import (
	"github.com/djstage/backend/internal/cache"
	"github.com/djstage/backend/internal/trending"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	registry *trending.Registry
	ledger   *trending.Ledger
	ranking  *trending.Ranking
	cache    *cache.TrendingCache
}

// NewHandlers creates a new handlers instance. cache may be nil when Redis
// is not configured.
func NewHandlers(registry *trending.Registry, ledger *trending.Ledger, ranking *trending.Ranking, trendingCache *cache.TrendingCache) *Handlers {
	return &Handlers{
		registry: registry,
		ledger:   ledger,
		ranking:  ranking,
		cache:    trendingCache,
	}
}
