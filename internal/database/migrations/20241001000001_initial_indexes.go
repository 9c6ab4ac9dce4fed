package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		statements := []string{
			// Every scheduler tick selects by exact fire time
			`CREATE INDEX IF NOT EXISTS idx_activity_data_fire_at ON activity_data (fire_at)`,
			`CREATE INDEX IF NOT EXISTS idx_activity_data_owner ON activity_data (owner_id)`,
		}

		for _, stmt := range statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		for _, name := range []string{"idx_activity_data_fire_at", "idx_activity_data_owner"} {
			if _, err := db.ExecContext(ctx, "DROP INDEX IF EXISTS "+name); err != nil {
				return fmt.Errorf("failed to drop index %s: %w", name, err)
			}
		}

		return nil
	})
}
