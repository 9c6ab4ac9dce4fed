package bot

import (
	"fmt"
	"math"

	"github.com/bytedance/sonic"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
)

// Request is a slash command invocation decoupled from the gateway event.
type Request struct {
	Command        string
	Subcommand     string
	GuildID        string
	UserID         string
	CanManageGuild bool
	Options        map[string]any
}

// Response is rendered into the deferred interaction message.
type Response struct {
	Content string
	Embeds  []discord.Embed
}

// Key returns the dispatch key, "command" or "command subcommand".
func (r *Request) Key() string {
	if r.Subcommand == "" {
		return r.Command
	}

	return r.Command + " " + r.Subcommand
}

// String returns a string option, or "" when absent.
func (r *Request) String(name string) string {
	v, _ := r.Options[name].(string)
	return v
}

// Int returns an integer option.
func (r *Request) Int(name string) (int64, bool) {
	switch v := r.Options[name].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// Bool returns a boolean option.
func (r *Request) Bool(name string) (bool, bool) {
	v, ok := r.Options[name].(bool)
	return v, ok
}

// newRequest builds a Request from a slash command event.
func newRequest(event *events.ApplicationCommandInteractionCreate) (*Request, error) {
	data := event.SlashCommandInteractionData()

	options, err := decodeOptions(data.Options)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Command: data.CommandName(),
		UserID:  event.User().ID.String(),
		Options: options,
	}

	if data.SubCommandName != nil {
		req.Subcommand = *data.SubCommandName
	}

	if guildID := event.GuildID(); guildID != nil {
		req.GuildID = guildID.String()
	}

	if member := event.Member(); member != nil {
		req.CanManageGuild = member.Permissions.Has(discord.PermissionManageGuild)
	}

	return req, nil
}

// decodeOptions turns raw option values into Go values.
func decodeOptions(options map[string]discord.SlashCommandOption) (map[string]any, error) {
	decoded := make(map[string]any, len(options))
	for name, option := range options {
		var value any
		if err := sonic.Unmarshal(option.Value, &value); err != nil {
			return nil, fmt.Errorf("failed to decode option %s: %w", name, err)
		}
		decoded[name] = value
	}

	return decoded, nil
}
