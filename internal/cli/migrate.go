package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"negeri-quiz/internal/config"
	"negeri-quiz/internal/content"
	pgloader "negeri-quiz/internal/infra/postgres"
	pgmigrations "negeri-quiz/internal/infra/postgres/migrations"
)

// NewMigrateCmd applies database migrations and optionally seeds region content.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			if seed {
				return seedRegions(cmd.Context(), cfg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "upsert the configured content bank into Postgres")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Printf("no new migrations")
		return nil
	}
	log.Printf("migrations applied: %s", group)
	return nil
}

func seedRegions(ctx context.Context, cfg config.Config) error {
	loader, err := content.NewLoader(cfg.Content.Path)
	if err != nil {
		return err
	}
	regions, err := loader.LoadRegions(ctx)
	if err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pgloader.NewRegionLoader(pool).SeedRegions(ctx, regions); err != nil {
		return err
	}
	log.Printf("seeded %d regions", len(regions))
	return nil
}
