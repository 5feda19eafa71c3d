package cache

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/jon4hz/foxtip/internal/config"
	"github.com/jon4hz/foxtip/pkg/footballdata"
)

// Cache key prefixes.
const (
	FixturesCachePrefix = "fixtures-"
)

// EngineCache bundles the caches used by the engine.
type EngineCache struct {
	FixturesCache *PrefixedCache[footballdata.MatchList]
	fixturesTTL   time.Duration
}

func NewEngineCache(cfg *config.CacheConfig) (*EngineCache, error) {
	return &EngineCache{
		FixturesCache: NewPrefixedCache[footballdata.MatchList](
			newCacheInstanceByType(cfg),
			cfg.Type,
			FixturesCachePrefix,
		),
		fixturesTTL: cfg.FixturesTTL,
	}, nil
}

// GetFixtures returns the cached match list of a date.
func (e *EngineCache) GetFixtures(ctx context.Context, date string) (*footballdata.MatchList, bool) {
	if e.fixturesTTL <= 0 {
		return nil, false
	}
	list, err := e.FixturesCache.Get(ctx, date)
	if err != nil {
		log.Debug("fixtures cache miss", "date", date, "error", err)
		return nil, false
	}
	return &list, true
}

// SetFixtures caches the match list of a date for the configured TTL.
func (e *EngineCache) SetFixtures(ctx context.Context, date string, list *footballdata.MatchList) {
	if e.fixturesTTL <= 0 || list == nil {
		return
	}
	if err := e.FixturesCache.Set(ctx, date, *list, e.fixturesTTL); err != nil {
		log.Warn("failed to cache fixtures", "date", date, "error", err)
	}
}

func (e *EngineCache) ClearAll(ctx context.Context) {
	if err := e.FixturesCache.Clear(ctx); err != nil {
		log.Errorf("failed to clear cache: %v", err)
	}
}

type Stats struct {
	*codec.Stats
	CacheName string `json:"cacheName"`
}

func (e *EngineCache) GetStats() []*Stats {
	return []*Stats{
		{
			Stats:     e.FixturesCache.GetStats(),
			CacheName: "fixtures",
		},
	}
}
