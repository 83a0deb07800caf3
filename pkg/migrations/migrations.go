package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/InnovateOnDemand/DOMGTrigger/internal/store"
)

// MigrateStore brings both schemas up to date: the run-history tables owned
// by gorm and the river queue tables.
func MigrateStore(ctx context.Context, st store.Store, pool *pgxpool.Pool) error {
	if err := st.InitialMigration(); err != nil {
		return fmt.Errorf("store migrations: %w", err)
	}

	if err := migrateRiver(ctx, pool); err != nil {
		return fmt.Errorf("river migrations: %w", err)
	}

	return nil
}

func migrateRiver(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return err
	}
	_, err = migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	return err
}
