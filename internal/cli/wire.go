package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"negeri-quiz/internal/app"
	"negeri-quiz/internal/config"
	"negeri-quiz/internal/content"
	"negeri-quiz/internal/infra/file"
	"negeri-quiz/internal/infra/memory"
	pgstore "negeri-quiz/internal/infra/postgres"
	redisstore "negeri-quiz/internal/infra/redis"
	"negeri-quiz/internal/infra/sqlite"
)

// deps holds the shared clients built from config.
type deps struct {
	cfg     config.Config
	redis   *redis.Client
	pool    *pgxpool.Pool
	closers []func()
}

func openDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{cfg: cfg}
	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = d.redis.Close() })
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.close()
			return nil, err
		}
		d.pool = pool
		d.closers = append(d.closers, pool.Close)
	}
	return d, nil
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// slot picks the progress slot backend named in config.
func (d *deps) slot() (app.Slot, error) {
	backend := strings.ToLower(strings.TrimSpace(d.cfg.Storage.Backend))
	switch backend {
	case config.BackendMemory:
		return memory.NewSlot(), nil
	case "", config.BackendFile:
		return file.NewSlot(d.cfg.Storage.Path), nil
	case config.BackendSQLite:
		path := d.cfg.Storage.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "progress.db")
		}
		s, err := sqlite.NewSlot(path)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { _ = s.Close() })
		return s, nil
	case config.BackendRedis:
		if d.redis == nil {
			return nil, fmt.Errorf("redis backend needs redis.addr")
		}
		return redisstore.NewSlot(d.redis, 0), nil
	case config.BackendPostgres:
		if d.pool == nil {
			return nil, fmt.Errorf("postgres backend needs postgres.url")
		}
		return pgstore.NewSlot(d.pool), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", d.cfg.Storage.Backend)
	}
}

func (d *deps) progressStore() (*app.ProgressStore, error) {
	slot, err := d.slot()
	if err != nil {
		return nil, err
	}
	retry := app.RetryPolicy{
		Initial:  config.TTLDuration(d.cfg.Persistence.RetryInitial, time.Second),
		Attempts: d.cfg.Persistence.RetryAttempts,
	}
	return app.NewProgressStore(slot, d.cfg.Storage.Key, retry), nil
}

// regionLoader reads content from the seeded regions table on the postgres
// backend unless a YAML bank is configured, else from the YAML or built-in bank.
func (d *deps) regionLoader() (app.RegionLoader, error) {
	if d.pool != nil && d.cfg.Storage.Backend == config.BackendPostgres && d.cfg.Content.Path == "" {
		return pgstore.NewRegionLoader(d.pool), nil
	}
	bank, err := content.NewLoader(d.cfg.Content.Path)
	if err != nil {
		return nil, err
	}
	return bank, nil
}

// regionRepository puts the Redis cache, when configured, in front of the
// in-process bank snapshot.
func (d *deps) regionRepository(bank *memory.RegionRepository) app.ContentRepository {
	if d.redis != nil {
		ttl := config.TTLDuration(d.cfg.Content.RedisTTL, 10*time.Minute)
		return redisstore.NewRegionRepository(d.redis, bank, ttl)
	}
	return bank
}

// buildPlayer assembles the single engine for this process.
func (d *deps) buildPlayer(ctx context.Context) (*app.Player, error) {
	store, err := d.progressStore()
	if err != nil {
		return nil, err
	}
	loader, err := d.regionLoader()
	if err != nil {
		return nil, err
	}
	bank := memory.NewRegionRepository(loader, config.TTLDuration(d.cfg.Content.TTL, 10*time.Minute))
	timers, err := bank.Timers(ctx)
	if err != nil {
		return nil, err
	}
	debounce := config.TTLDuration(d.cfg.Persistence.Debounce, app.DefaultDebounce)
	engine := app.NewEngine(store, timers, debounce)
	return app.NewPlayer(engine, d.regionRepository(bank)), nil
}
