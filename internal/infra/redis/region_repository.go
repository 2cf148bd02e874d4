package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"negeri-quiz/internal/app"
	"negeri-quiz/internal/domain"
)

// RegionRepository caches region content in Redis as JSON under
// quiz:region:{regionID} and falls back to a loader on cache miss.
type RegionRepository struct {
	client *redis.Client
	loader app.RegionLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewRegionRepository(client *redis.Client, loader app.RegionLoader, ttl time.Duration) *RegionRepository {
	return &RegionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (r *RegionRepository) GetRegion(ctx context.Context, regionID string) (domain.Region, error) {
	if region, ok := r.cached(ctx, regionID); ok {
		return region, nil
	}

	result, err, _ := r.sf.Do(regionID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if region, ok := r.cached(ctx, regionID); ok {
			return region, nil
		}

		region, err := r.loader.LoadRegion(ctx, regionID)
		if err != nil {
			return domain.Region{}, err
		}

		data, err := json.Marshal(region)
		if err == nil {
			if err := r.client.Set(ctx, r.key(regionID), data, r.ttlWithJitter()).Err(); err != nil {
				log.Printf("cache region %s: %v", regionID, err)
			}
		}
		return region, nil
	})
	if err != nil {
		return domain.Region{}, err
	}
	return result.(domain.Region), nil
}

func (r *RegionRepository) cached(ctx context.Context, regionID string) (domain.Region, bool) {
	data, err := r.client.Get(ctx, r.key(regionID)).Bytes()
	if err != nil {
		return domain.Region{}, false
	}
	var region domain.Region
	if err := json.Unmarshal(data, &region); err != nil {
		return domain.Region{}, false
	}
	return region, true
}

func (r *RegionRepository) key(regionID string) string {
	return "quiz:region:" + regionID
}

func (r *RegionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
