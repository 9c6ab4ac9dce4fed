package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/disgoorg/disgo/events"
	"go.uber.org/zap"
)

const guildEventTimeout = 10 * time.Second

// SettingStore persists guild settings.
type SettingStore interface {
	GetGuildSettings(ctx context.Context, guildID string) (*types.GuildSetting, error)
	SaveGuildSettings(ctx context.Context, settings *types.GuildSetting) error
}

// ActivityRemover removes every tracked anime of a guild.
type ActivityRemover interface {
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// GuildEventHandler manages guild-related events for the bot.
type GuildEventHandler struct {
	settings   SettingStore
	activities ActivityRemover
	logger     *zap.Logger
}

// NewGuildEventHandler creates a new instance of the guild event handler.
func NewGuildEventHandler(settings SettingStore, activities ActivityRemover, logger *zap.Logger) *GuildEventHandler {
	return &GuildEventHandler{
		settings:   settings,
		activities: activities,
		logger:     logger.Named("guild_events"),
	}
}

// OnGuildJoin handles the event when the bot joins a new guild.
func (h *GuildEventHandler) OnGuildJoin(event *events.GuildJoin) {
	h.logger.Info("Bot joined a new guild",
		zap.String("guildID", event.Guild.ID.String()),
		zap.String("guild_name", event.Guild.Name))

	ctx, cancel := context.WithTimeout(context.Background(), guildEventTimeout)
	defer cancel()

	if err := h.GuildJoined(ctx, event.Guild.ID.String()); err != nil {
		h.logger.Error("Failed to initialize guild settings",
			zap.String("guildID", event.Guild.ID.String()),
			zap.Error(err))
	}
}

// OnGuildLeave handles the event when the bot is removed from a guild.
func (h *GuildEventHandler) OnGuildLeave(event *events.GuildLeave) {
	ctx, cancel := context.WithTimeout(context.Background(), guildEventTimeout)
	defer cancel()

	if err := h.GuildLeft(ctx, event.Guild.ID.String()); err != nil {
		h.logger.Error("Failed to clean up guild",
			zap.String("guildID", event.Guild.ID.String()),
			zap.Error(err))
	}
}

// GuildJoined stores the settings of a guild, keeping any saved before.
func (h *GuildEventHandler) GuildJoined(ctx context.Context, guildID string) error {
	settings, err := h.settings.GetGuildSettings(ctx, guildID)
	if err != nil {
		return err
	}

	if err := h.settings.SaveGuildSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save guild settings: %w", err)
	}

	return nil
}

// GuildLeft stops every notification of a guild the bot can no longer post in.
// Settings are kept so they survive a re-invite.
func (h *GuildEventHandler) GuildLeft(ctx context.Context, guildID string) error {
	removed, err := h.activities.DeleteByOwner(ctx, guildID)
	if err != nil {
		return err
	}

	h.logger.Info("Bot left a guild",
		zap.String("guildID", guildID),
		zap.Int64("removed_activities", removed))

	return nil
}
