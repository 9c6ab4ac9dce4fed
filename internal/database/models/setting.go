package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ValgulNecron/kasuki/internal/database/dbretry"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SettingModel handles database operations for guild settings.
type SettingModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewSetting creates a SettingModel.
func NewSetting(db *bun.DB, logger *zap.Logger) *SettingModel {
	return &SettingModel{
		db:     db,
		logger: logger.Named("db_setting"),
	}
}

// GetGuildSettings retrieves the settings of a guild.
// Guilds without a row get the defaults, which are not persisted.
func (r *SettingModel) GetGuildSettings(ctx context.Context, guildID string) (*types.GuildSetting, error) {
	var settings *types.GuildSetting

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		var err error
		settings, err = selectSettings(ctx, r.db, guildID)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings for %s: %w", guildID, err)
	}

	return settings, nil
}

// SaveGuildSettings creates or overwrites the settings of a guild.
func (r *SettingModel) SaveGuildSettings(ctx context.Context, settings *types.GuildSetting) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		return upsertSettings(ctx, r.db, settings)
	})
	if err != nil {
		return fmt.Errorf("failed to save guild settings for %s: %w", settings.GuildID, err)
	}

	r.logger.Debug("Saved guild settings",
		zap.String("guildID", settings.GuildID),
		zap.String("language", settings.Language))

	return nil
}

// SetActivityWebhook stores the activity webhook of a guild and points every
// activity the guild tracks at it, in one transaction. It returns how many
// activities were updated.
func (r *SettingModel) SetActivityWebhook(ctx context.Context, guildID, webhookURL string) (int64, error) {
	var retargeted int64

	err := dbretry.Transaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		settings, err := selectSettings(ctx, tx, guildID)
		if err != nil {
			return err
		}

		settings.ActivityWebhook = webhookURL
		if err := upsertSettings(ctx, tx, settings); err != nil {
			return err
		}

		result, err := tx.NewUpdate().
			Model((*types.ActivityRecord)(nil)).
			Set("notify_target = ?", webhookURL).
			Where("owner_id = ?", guildID).
			Exec(ctx)
		if err != nil {
			return err
		}

		retargeted, err = result.RowsAffected()

		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to set activity webhook for %s: %w", guildID, err)
	}

	r.logger.Debug("Set activity webhook",
		zap.String("guildID", guildID),
		zap.Int64("retargeted", retargeted))

	return retargeted, nil
}

func selectSettings(ctx context.Context, db bun.IDB, guildID string) (*types.GuildSetting, error) {
	settings := types.NewGuildSetting(guildID)

	err := db.NewSelect().
		Model(settings).
		WherePK().
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return types.NewGuildSetting(guildID), nil
	}

	if err != nil {
		return nil, err
	}

	return settings, nil
}

func upsertSettings(ctx context.Context, db bun.IDB, settings *types.GuildSetting) error {
	_, err := db.NewInsert().
		Model(settings).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("language = EXCLUDED.language").
		Set("activity_webhook = EXCLUDED.activity_webhook").
		Set("module_anilist = EXCLUDED.module_anilist").
		Set("module_ai = EXCLUDED.module_ai").
		Set("module_game = EXCLUDED.module_game").
		Set("module_anime_activity = EXCLUDED.module_anime_activity").
		Set("module_waifu = EXCLUDED.module_waifu").
		Exec(ctx)

	return err
}

// List returns every stored guild setting ordered by guild.
func (r *SettingModel) List(ctx context.Context) ([]types.GuildSetting, error) {
	settings, err := dbretry.Operation(ctx, func(ctx context.Context) ([]types.GuildSetting, error) {
		var settings []types.GuildSetting

		err := r.db.NewSelect().
			Model(&settings).
			Order("guild_id ASC").
			Scan(ctx)

		return settings, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list guild settings: %w", err)
	}

	return settings, nil
}
