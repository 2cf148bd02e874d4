package memory

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"negeri-quiz/internal/app"
	"negeri-quiz/internal/content"
	"negeri-quiz/internal/domain"
)

const bankKey = "bank"

// RegionRepository serves region lookups and the timer table from one cached
// snapshot of the whole bank. The snapshot is rebuilt after ttl (ttl <= 0
// keeps it forever). Regions that fail validation never enter the snapshot.
type RegionRepository struct {
	loader app.RegionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu   sync.RWMutex
	snap *bankSnapshot
}

type bankSnapshot struct {
	order    []string
	regions  map[string]domain.Region
	timers   map[string]int
	loadedAt time.Time
}

func NewRegionRepository(loader app.RegionLoader, ttl time.Duration) *RegionRepository {
	return &RegionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
	}
}

func (r *RegionRepository) GetRegion(ctx context.Context, regionID string) (domain.Region, error) {
	snap, err := r.snapshot(ctx)
	if err != nil {
		return domain.Region{}, err
	}
	region, ok := snap.regions[regionID]
	if !ok {
		return domain.Region{}, domain.ErrRegionNotFound
	}
	return region, nil
}

// LoadRegion and LoadRegions let the snapshot sit under another cache.
func (r *RegionRepository) LoadRegion(ctx context.Context, regionID string) (domain.Region, error) {
	return r.GetRegion(ctx, regionID)
}

func (r *RegionRepository) LoadRegions(ctx context.Context) ([]domain.Region, error) {
	snap, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Region, 0, len(snap.order))
	for _, id := range snap.order {
		out = append(out, snap.regions[id])
	}
	return out, nil
}

// Timers returns region countdowns from the same snapshot lookups use.
func (r *RegionRepository) Timers(ctx context.Context) (map[string]int, error) {
	snap, err := r.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(snap.timers))
	for id, secs := range snap.timers {
		out[id] = secs
	}
	return out, nil
}

// snapshot returns the cached bank, reloading it when stale. A failed reload
// keeps serving the previous snapshot.
func (r *RegionRepository) snapshot(ctx context.Context) (*bankSnapshot, error) {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()
	if snap != nil && r.fresh(snap) {
		return snap, nil
	}

	result, err, _ := r.sf.Do(bankKey, func() (interface{}, error) {
		r.mu.RLock()
		current := r.snap
		r.mu.RUnlock()
		if current != nil && r.fresh(current) {
			return current, nil
		}

		regions, err := r.loader.LoadRegions(ctx)
		if err != nil {
			return nil, err
		}
		next := buildSnapshot(regions, r.clock())

		r.mu.Lock()
		r.snap = next
		r.mu.Unlock()
		return next, nil
	})
	if err != nil {
		if snap != nil {
			log.Printf("reload region bank failed, serving cached copy: %v", err)
			return snap, nil
		}
		return nil, err
	}
	return result.(*bankSnapshot), nil
}

func (r *RegionRepository) fresh(snap *bankSnapshot) bool {
	return r.ttl <= 0 || r.clock().Before(snap.loadedAt.Add(r.ttl))
}

func buildSnapshot(regions []domain.Region, now time.Time) *bankSnapshot {
	valid := make([]domain.Region, 0, len(regions))
	snap := &bankSnapshot{regions: make(map[string]domain.Region, len(regions)), loadedAt: now}
	for _, region := range regions {
		if err := content.Validate(region); err != nil {
			log.Printf("skip region %q: %v", region.ID, err)
			continue
		}
		if _, dup := snap.regions[region.ID]; !dup {
			snap.order = append(snap.order, region.ID)
		}
		snap.regions[region.ID] = region
		valid = append(valid, region)
	}
	snap.timers = content.TimerTable(valid)
	return snap
}
