package bot

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ValgulNecron/kasuki/internal/bot/constants"
	"github.com/ValgulNecron/kasuki/internal/database/types/enum"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// supportedLanguages are the languages a guild can pick.
var supportedLanguages = []language.Tag{
	language.English,
	language.French,
	language.German,
	language.Spanish,
	language.Japanese,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// matchLanguage returns the supported language closest to tag.
func matchLanguage(tag string) (language.Tag, error) {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return language.Und, newUserError("%q is not a valid language tag.", tag)
	}

	_, index, confidence := languageMatcher.Match(parsed)
	if confidence == language.No {
		return language.Und, newUserError("%s is not a supported language.", parsed)
	}

	return supportedLanguages[index], nil
}

// validateWebhookURL checks that raw points at a Discord webhook.
func validateWebhookURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "https" {
		return newUserError("The webhook URL must be an https Discord webhook URL.")
	}

	switch u.Host {
	case "discord.com", "discordapp.com", "canary.discord.com", "ptb.discord.com":
	default:
		return newUserError("The webhook URL must be an https Discord webhook URL.")
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "api" || parts[1] != "webhooks" || parts[2] == "" || parts[3] == "" {
		return newUserError("The webhook URL must be an https Discord webhook URL.")
	}

	return nil
}

func (h *Handler) handleAdminLang(ctx context.Context, req *Request) (*Response, error) {
	tag, err := matchLanguage(req.String(constants.TagOption))
	if err != nil {
		return nil, err
	}

	settings, err := h.services.Settings.GetGuildSettings(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	settings.Language = tag.String()
	if err := h.services.Settings.SaveGuildSettings(ctx, settings); err != nil {
		return nil, err
	}

	h.logger.Info("Guild language updated",
		zap.String("guildID", req.GuildID),
		zap.String("language", settings.Language))

	return &Response{Embeds: successEmbeds("Language updated",
		fmt.Sprintf("The server language is now `%s`.", settings.Language))}, nil
}

func (h *Handler) handleAdminModule(ctx context.Context, req *Request) (*Response, error) {
	module, err := enum.ParseModule(req.String(constants.NameOption))
	if err != nil {
		return nil, err
	}

	enabled, ok := req.Bool(constants.StateOption)
	if !ok {
		return nil, newUserError("Please choose whether the module is enabled.")
	}

	settings, err := h.services.Settings.GetGuildSettings(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	settings.SetEnabled(module, enabled)
	if err := h.services.Settings.SaveGuildSettings(ctx, settings); err != nil {
		return nil, err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}

	h.logger.Info("Guild module toggled",
		zap.String("guildID", req.GuildID),
		zap.String("module", module.String()),
		zap.Bool("enabled", enabled))

	return &Response{Embeds: successEmbeds("Module updated",
		fmt.Sprintf("The `%s` module is now %s.", module, state))}, nil
}

func (h *Handler) handleAdminWebhook(ctx context.Context, req *Request) (*Response, error) {
	webhookURL := strings.TrimSpace(req.String(constants.URLOption))
	if err := validateWebhookURL(webhookURL); err != nil {
		return nil, err
	}

	retargeted, err := h.services.Settings.SetActivityWebhook(ctx, req.GuildID, webhookURL)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Guild activity webhook updated",
		zap.String("guildID", req.GuildID),
		zap.Int64("retargeted", retargeted))

	return &Response{Embeds: successEmbeds("Webhook updated",
		fmt.Sprintf("Anime activity notifications will be sent to this webhook (%d tracked anime updated).", retargeted))}, nil
}
