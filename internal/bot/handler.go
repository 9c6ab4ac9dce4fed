package bot

import (
	"context"
	"time"

	"github.com/ValgulNecron/kasuki/internal/anilist"
	"github.com/ValgulNecron/kasuki/internal/bot/constants"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/ValgulNecron/kasuki/internal/database/types/enum"
	"github.com/ValgulNecron/kasuki/internal/steam"
	"go.uber.org/zap"
)

// AniListService is the part of the AniList client used by commands.
type AniListService interface {
	SearchMedia(ctx context.Context, search string, mediaType anilist.MediaType) (*anilist.Media, error)
	NextAiring(ctx context.Context, id int) (*anilist.Media, error)
	SearchCharacter(ctx context.Context, search string) (*anilist.Character, error)
	SearchStaff(ctx context.Context, search string) (*anilist.Staff, error)
	SearchStudio(ctx context.Context, search string) (*anilist.Studio, error)
	SearchUser(ctx context.Context, search string) (*anilist.User, error)
	RandomMedia(ctx context.Context, mediaType anilist.MediaType) (*anilist.Media, error)
}

// GameService looks up Steam games.
type GameService interface {
	FindGame(ctx context.Context, name string) (*steam.Game, error)
}

// AIService answers questions and generates images.
type AIService interface {
	Ask(ctx context.Context, question string) (string, error)
	Image(ctx context.Context, prompt string) (string, error)
}

// WaifuService returns random images.
type WaifuService interface {
	Random(ctx context.Context, category string) (string, error)
}

// ActivityStore persists tracked anime.
type ActivityStore interface {
	Upsert(ctx context.Context, record *types.ActivityRecord) error
	Delete(ctx context.Context, subjectID, ownerID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]types.ActivityRecord, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// SettingStore persists guild settings.
type SettingStore interface {
	GetGuildSettings(ctx context.Context, guildID string) (*types.GuildSetting, error)
	SaveGuildSettings(ctx context.Context, settings *types.GuildSetting) error
	SetActivityWebhook(ctx context.Context, guildID, webhookURL string) (int64, error)
}

// Services holds everything the command handlers depend on.
type Services struct {
	AniList  AniListService
	Steam    GameService
	AI       AIService
	Waifu    WaifuService
	Activity ActivityStore
	Settings SettingStore
	// Latency reports the gateway heartbeat latency.
	Latency func() time.Duration
}

// command is one entry of the dispatch table.
type command struct {
	module    enum.Module
	admin     bool
	ephemeral bool
	run       func(ctx context.Context, req *Request) (*Response, error)
}

// Handler dispatches slash commands to their implementation.
type Handler struct {
	services Services
	commands map[string]command
	logger   *zap.Logger
}

// NewHandler creates a Handler with the full command table.
func NewHandler(services Services, logger *zap.Logger) *Handler {
	h := &Handler{
		services: services,
		logger:   logger.Named("commands"),
	}

	h.commands = map[string]command{
		constants.AnimeCommandName:     {module: enum.ModuleAniList, run: h.handleAnime},
		constants.MangaCommandName:     {module: enum.ModuleAniList, run: h.handleManga},
		constants.CharacterCommandName: {module: enum.ModuleAniList, run: h.handleCharacter},
		constants.StaffCommandName:     {module: enum.ModuleAniList, run: h.handleStaff},
		constants.StudioCommandName:    {module: enum.ModuleAniList, run: h.handleStudio},
		constants.UserCommandName:      {module: enum.ModuleAniList, run: h.handleUser},
		constants.RandomCommandName:    {module: enum.ModuleAniList, run: h.handleRandom},

		constants.SteamCommandName + " " + constants.SteamGameSubcommand: {module: enum.ModuleGame, run: h.handleSteamGame},

		constants.AICommandName + " " + constants.AIQuestionSubcommand: {module: enum.ModuleAI, run: h.handleAIQuestion},
		constants.AICommandName + " " + constants.AIImageSubcommand:    {module: enum.ModuleAI, run: h.handleAIImage},

		constants.WaifuCommandName: {module: enum.ModuleWaifu, run: h.handleWaifu},

		constants.ActivityCommandName + " " + constants.ActivityAddSubcommand: {
			module: enum.ModuleAnimeActivity, run: h.handleActivityAdd,
		},
		constants.ActivityCommandName + " " + constants.ActivityDeleteSubcommand: {
			module: enum.ModuleAnimeActivity, run: h.handleActivityDelete,
		},
		constants.ActivityCommandName + " " + constants.ActivityListSubcommand: {
			module: enum.ModuleAnimeActivity, run: h.handleActivityList,
		},

		constants.AdminCommandName + " " + constants.AdminLangSubcommand: {
			admin: true, ephemeral: true, run: h.handleAdminLang,
		},
		constants.AdminCommandName + " " + constants.AdminModuleSubcommand: {
			admin: true, ephemeral: true, run: h.handleAdminModule,
		},
		constants.AdminCommandName + " " + constants.AdminWebhookSubcommand: {
			admin: true, ephemeral: true, run: h.handleAdminWebhook,
		},

		constants.PingCommandName: {run: h.handlePing},
	}

	return h
}

// Ephemeral reports whether the response to key is only visible to the caller.
func (h *Handler) Ephemeral(key string) bool {
	return h.commands[key].ephemeral
}

// Handle runs the command named by req and always returns a response.
// Failures are rendered as an error embed.
func (h *Handler) Handle(ctx context.Context, req *Request) *Response {
	start := time.Now()

	resp, err := h.dispatch(ctx, req)
	if err != nil {
		h.logger.Warn("Command failed",
			zap.String("command", req.Key()),
			zap.String("guildID", req.GuildID),
			zap.String("userID", req.UserID),
			zap.Error(err))

		return &Response{Embeds: errorEmbeds(errorMessage(err))}
	}

	h.logger.Debug("Command handled",
		zap.String("command", req.Key()),
		zap.Duration("duration", time.Since(start)))

	return resp
}

// dispatch checks permissions and module toggles before running the command.
func (h *Handler) dispatch(ctx context.Context, req *Request) (*Response, error) {
	cmd, ok := h.commands[req.Key()]
	if !ok {
		return nil, errUnknownCommand
	}

	if cmd.admin {
		if req.GuildID == "" {
			return nil, errGuildOnly
		}

		if !req.CanManageGuild {
			return nil, errMissingPermission
		}
	}

	if cmd.module != enum.ModuleNone && req.GuildID != "" {
		settings, err := h.services.Settings.GetGuildSettings(ctx, req.GuildID)
		if err != nil {
			return nil, err
		}

		if !settings.IsEnabled(cmd.module) {
			return nil, errModuleDisabled
		}
	}

	return cmd.run(ctx, req)
}
