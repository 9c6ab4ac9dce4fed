package types

import (
	"github.com/ValgulNecron/kasuki/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// DefaultLanguage is used for guilds that never picked a language.
const DefaultLanguage = "en"

// ModuleToggles stores which command modules are enabled in a guild.
type ModuleToggles struct {
	AniList       bool `bun:"module_anilist,notnull"`
	AI            bool `bun:"module_ai,notnull"`
	Game          bool `bun:"module_game,notnull"`
	AnimeActivity bool `bun:"module_anime_activity,notnull"`
	Waifu         bool `bun:"module_waifu,notnull"`
}

// GuildSetting stores guild-specific preferences.
type GuildSetting struct {
	bun.BaseModel `bun:"table:guild_settings"`

	GuildID         string `bun:",pk"`
	Language        string `bun:",notnull,default:'en'"`
	ActivityWebhook string `bun:",notnull,default:''"`
	ModuleToggles
}

// NewGuildSetting returns the settings a guild starts with.
func NewGuildSetting(guildID string) *GuildSetting {
	return &GuildSetting{
		GuildID:  guildID,
		Language: DefaultLanguage,
		ModuleToggles: ModuleToggles{
			AniList:       true,
			AI:            true,
			Game:          true,
			AnimeActivity: true,
			Waifu:         true,
		},
	}
}

// IsEnabled reports whether the module is enabled.
// Modules without a toggle are always enabled.
func (s *GuildSetting) IsEnabled(module enum.Module) bool {
	switch module {
	case enum.ModuleAniList:
		return s.AniList
	case enum.ModuleAI:
		return s.AI
	case enum.ModuleGame:
		return s.Game
	case enum.ModuleAnimeActivity:
		return s.AnimeActivity
	case enum.ModuleWaifu:
		return s.Waifu
	default:
		return true
	}
}

// SetEnabled updates the toggle of a module.
func (s *GuildSetting) SetEnabled(module enum.Module, enabled bool) {
	switch module {
	case enum.ModuleAniList:
		s.AniList = enabled
	case enum.ModuleAI:
		s.AI = enabled
	case enum.ModuleGame:
		s.Game = enabled
	case enum.ModuleAnimeActivity:
		s.AnimeActivity = enabled
	case enum.ModuleWaifu:
		s.Waifu = enabled
	case enum.ModuleNone:
	}
}
