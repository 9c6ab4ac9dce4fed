package migrations

import (
	"context"
	"fmt"

	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.CacheEntry)(nil),
			(*types.RandomCacheEntry)(nil),
			(*types.ActivityRecord)(nil),
			(*types.GuildSetting)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table for model %T: %w", model, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.GuildSetting)(nil),
			(*types.ActivityRecord)(nil),
			(*types.RandomCacheEntry)(nil),
			(*types.CacheEntry)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table for model %T: %w", model, err)
			}
		}

		return nil
	})
}
