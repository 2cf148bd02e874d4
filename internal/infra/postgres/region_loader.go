package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"negeri-quiz/internal/domain"
)

// RegionLoader loads region JSONB from Postgres.
type RegionLoader struct {
	pool *pgxpool.Pool
}

func NewRegionLoader(pool *pgxpool.Pool) *RegionLoader {
	return &RegionLoader{pool: pool}
}

func (l *RegionLoader) LoadRegion(ctx context.Context, regionID string) (domain.Region, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM regions WHERE id=$1`, regionID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Region{}, domain.ErrRegionNotFound
	}
	if err != nil {
		return domain.Region{}, fmt.Errorf("load region: %w", err)
	}
	var region domain.Region
	if err := json.Unmarshal(raw, &region); err != nil {
		return domain.Region{}, fmt.Errorf("unmarshal region: %w", err)
	}
	return region, nil
}

func (l *RegionLoader) LoadRegions(ctx context.Context) ([]domain.Region, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM regions ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	var regions []domain.Region
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		var region domain.Region
		if err := json.Unmarshal(raw, &region); err != nil {
			return nil, fmt.Errorf("unmarshal region: %w", err)
		}
		regions = append(regions, region)
	}
	return regions, rows.Err()
}

// SeedRegions upserts regions, keeping their slice order as display order.
func (l *RegionLoader) SeedRegions(ctx context.Context, regions []domain.Region) error {
	batch := &pgx.Batch{}
	for i, region := range regions {
		data, err := json.Marshal(region)
		if err != nil {
			return fmt.Errorf("marshal region %s: %w", region.ID, err)
		}
		batch.Queue(`INSERT INTO regions (id, position, data) VALUES ($1, $2, $3::jsonb)
			ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, data=EXCLUDED.data`,
			region.ID, i, string(data))
	}
	results := l.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range regions {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("seed regions: %w", err)
		}
	}
	return nil
}
