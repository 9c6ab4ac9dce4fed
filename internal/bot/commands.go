package bot

import (
	"github.com/ValgulNecron/kasuki/internal/bot/constants"
	"github.com/ValgulNecron/kasuki/internal/database/types/enum"
	"github.com/ValgulNecron/kasuki/internal/waifu"
	"github.com/disgoorg/disgo/discord"
)

func nameOption(description string) discord.ApplicationCommandOption {
	return discord.ApplicationCommandOptionString{
		Name:        constants.NameOption,
		Description: description,
		Required:    true,
	}
}

func promptOption() discord.ApplicationCommandOption {
	maxLength := 1000
	return discord.ApplicationCommandOptionString{
		Name:        constants.PromptOption,
		Description: "What to ask for",
		Required:    true,
		MaxLength:   &maxLength,
	}
}

func animeOption() discord.ApplicationCommandOption {
	return discord.ApplicationCommandOptionString{
		Name:        constants.AnimeOption,
		Description: "Anime title or AniList id",
		Required:    true,
	}
}

func moduleChoices() []discord.ApplicationCommandOptionChoiceString {
	modules := enum.ToggleableModules()
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(modules))
	for _, m := range modules {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{Name: m.String(), Value: m.String()})
	}

	return choices
}

func waifuChoices() []discord.ApplicationCommandOptionChoiceString {
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(waifu.Categories))
	for _, c := range waifu.Categories {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{Name: c, Value: c})
	}

	return choices
}

// Commands returns the slash commands registered with Discord.
func Commands() []discord.ApplicationCommandCreate {
	minDelay, maxDelay := 0, constants.MaxActivityDelay

	return []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        constants.AnimeCommandName,
			Description: "Search an anime on AniList",
			Options:     []discord.ApplicationCommandOption{nameOption("Anime title")},
		},
		discord.SlashCommandCreate{
			Name:        constants.MangaCommandName,
			Description: "Search a manga on AniList",
			Options:     []discord.ApplicationCommandOption{nameOption("Manga title")},
		},
		discord.SlashCommandCreate{
			Name:        constants.CharacterCommandName,
			Description: "Search a character on AniList",
			Options:     []discord.ApplicationCommandOption{nameOption("Character name")},
		},
		discord.SlashCommandCreate{
			Name:        constants.StaffCommandName,
			Description: "Search a staff member on AniList",
			Options:     []discord.ApplicationCommandOption{nameOption("Staff name")},
		},
		discord.SlashCommandCreate{
			Name:        constants.StudioCommandName,
			Description: "Search a studio on AniList",
			Options:     []discord.ApplicationCommandOption{nameOption("Studio name")},
		},
		discord.SlashCommandCreate{
			Name:        constants.UserCommandName,
			Description: "Show an AniList profile",
			Options:     []discord.ApplicationCommandOption{nameOption("AniList username")},
		},
		discord.SlashCommandCreate{
			Name:        constants.RandomCommandName,
			Description: "Pick a random anime or manga",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        constants.TypeOption,
					Description: "Media type",
					Required:    true,
					Choices: []discord.ApplicationCommandOptionChoiceString{
						{Name: "anime", Value: "ANIME"},
						{Name: "manga", Value: "MANGA"},
					},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.SteamCommandName,
			Description: "Steam store lookups",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.SteamGameSubcommand,
					Description: "Search a game on Steam",
					Options:     []discord.ApplicationCommandOption{nameOption("Game name")},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.AICommandName,
			Description: "Ask the AI",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.AIQuestionSubcommand,
					Description: "Ask a question",
					Options:     []discord.ApplicationCommandOption{promptOption()},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.AIImageSubcommand,
					Description: "Generate an image",
					Options:     []discord.ApplicationCommandOption{promptOption()},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.WaifuCommandName,
			Description: "Show a random waifu image",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        constants.CategoryOption,
					Description: "Image category",
					Choices:     waifuChoices(),
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.ActivityCommandName,
			Description: "Announce new anime episodes in this server",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.ActivityAddSubcommand,
					Description: "Track an airing anime",
					Options: []discord.ApplicationCommandOption{
						animeOption(),
						discord.ApplicationCommandOptionInt{
							Name:        constants.DelayOption,
							Description: "Seconds to wait after the episode airs",
							MinValue:    &minDelay,
							MaxValue:    &maxDelay,
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.ActivityDeleteSubcommand,
					Description: "Stop tracking an anime",
					Options:     []discord.ApplicationCommandOption{animeOption()},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.ActivityListSubcommand,
					Description: "List tracked anime",
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.AdminCommandName,
			Description: "Server settings",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.AdminLangSubcommand,
					Description: "Set the server language",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionString{
							Name:        constants.TagOption,
							Description: "Language tag such as en or fr-CA",
							Required:    true,
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.AdminModuleSubcommand,
					Description: "Enable or disable a module",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionString{
							Name:        constants.NameOption,
							Description: "Module",
							Required:    true,
							Choices:     moduleChoices(),
						},
						discord.ApplicationCommandOptionBool{
							Name:        constants.StateOption,
							Description: "Whether the module is enabled",
							Required:    true,
						},
					},
				},
				discord.ApplicationCommandOptionSubCommand{
					Name:        constants.AdminWebhookSubcommand,
					Description: "Set the webhook receiving anime activity",
					Options: []discord.ApplicationCommandOption{
						discord.ApplicationCommandOptionString{
							Name:        constants.URLOption,
							Description: "Discord webhook URL",
							Required:    true,
						},
					},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:        constants.PingCommandName,
			Description: "Check the bot latency",
		},
	}
}
