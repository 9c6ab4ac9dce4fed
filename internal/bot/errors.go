package bot

import (
	"errors"
	"fmt"

	"github.com/ValgulNecron/kasuki/internal/ai"
	"github.com/ValgulNecron/kasuki/internal/anilist"
	"github.com/ValgulNecron/kasuki/internal/database/types/enum"
	"github.com/ValgulNecron/kasuki/internal/steam"
	"github.com/ValgulNecron/kasuki/internal/upstream"
	"github.com/ValgulNecron/kasuki/internal/waifu"
)

// userError carries a message that is shown to the user as is.
type userError struct {
	message string
}

func (e *userError) Error() string {
	return e.message
}

func newUserError(format string, args ...any) error {
	return &userError{message: fmt.Sprintf(format, args...)}
}

var (
	errUnknownCommand    = &userError{"This command is not available."}
	errGuildOnly         = &userError{"This command can only be used in a server."}
	errMissingPermission = &userError{"You need the Manage Server permission to use this command."}
	errModuleDisabled    = &userError{"This module is disabled in this server."}
	errNoWebhook         = &userError{"No activity webhook is configured. Ask an admin to run `/admin webhook`."}
	errNoUpcomingEpisode = &userError{"This anime has no upcoming episode to track."}
)

// errorMessage maps an error to the text shown in the error embed.
func errorMessage(err error) string {
	var ue *userError
	if errors.As(err, &ue) {
		return ue.message
	}

	switch {
	case errors.Is(err, anilist.ErrNotFound),
		errors.Is(err, steam.ErrNotFound),
		errors.Is(err, upstream.ErrNotFound):
		return "Nothing was found for your search."
	case errors.Is(err, upstream.ErrRateLimited):
		return "The upstream API is rate limiting requests. Try again later."
	case errors.Is(err, ai.ErrNotConfigured):
		return "AI commands are not configured on this bot."
	case errors.Is(err, ai.ErrUnavailable):
		return "The AI service is temporarily unavailable. Try again later."
	case errors.Is(err, waifu.ErrUnknownCategory):
		return "Unknown image category."
	case errors.Is(err, enum.ErrUnknownModule):
		return "Unknown module."
	default:
		return "Something went wrong while running this command."
	}
}
