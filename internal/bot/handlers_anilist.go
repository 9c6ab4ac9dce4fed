package bot

import (
	"context"
	"strings"

	"github.com/ValgulNecron/kasuki/internal/anilist"
	"github.com/ValgulNecron/kasuki/internal/bot/constants"
	"github.com/disgoorg/disgo/discord"
)

func requireName(req *Request) (string, error) {
	name := strings.TrimSpace(req.String(constants.NameOption))
	if name == "" {
		return "", newUserError("Please provide a name to search for.")
	}

	return name, nil
}

func single(embed discord.Embed) *Response {
	return &Response{Embeds: []discord.Embed{embed}}
}

func (h *Handler) handleAnime(ctx context.Context, req *Request) (*Response, error) {
	return h.searchMedia(ctx, req, anilist.MediaTypeAnime)
}

func (h *Handler) handleManga(ctx context.Context, req *Request) (*Response, error) {
	return h.searchMedia(ctx, req, anilist.MediaTypeManga)
}

func (h *Handler) searchMedia(ctx context.Context, req *Request, mediaType anilist.MediaType) (*Response, error) {
	name, err := requireName(req)
	if err != nil {
		return nil, err
	}

	media, err := h.services.AniList.SearchMedia(ctx, name, mediaType)
	if err != nil {
		return nil, err
	}

	return single(mediaEmbed(media)), nil
}

func (h *Handler) handleCharacter(ctx context.Context, req *Request) (*Response, error) {
	name, err := requireName(req)
	if err != nil {
		return nil, err
	}

	character, err := h.services.AniList.SearchCharacter(ctx, name)
	if err != nil {
		return nil, err
	}

	return single(characterEmbed(character)), nil
}

func (h *Handler) handleStaff(ctx context.Context, req *Request) (*Response, error) {
	name, err := requireName(req)
	if err != nil {
		return nil, err
	}

	staff, err := h.services.AniList.SearchStaff(ctx, name)
	if err != nil {
		return nil, err
	}

	return single(staffEmbed(staff)), nil
}

func (h *Handler) handleStudio(ctx context.Context, req *Request) (*Response, error) {
	name, err := requireName(req)
	if err != nil {
		return nil, err
	}

	studio, err := h.services.AniList.SearchStudio(ctx, name)
	if err != nil {
		return nil, err
	}

	return single(studioEmbed(studio)), nil
}

func (h *Handler) handleUser(ctx context.Context, req *Request) (*Response, error) {
	name, err := requireName(req)
	if err != nil {
		return nil, err
	}

	user, err := h.services.AniList.SearchUser(ctx, name)
	if err != nil {
		return nil, err
	}

	return single(userEmbed(user)), nil
}

func (h *Handler) handleRandom(ctx context.Context, req *Request) (*Response, error) {
	mediaType := anilist.MediaTypeAnime
	if strings.EqualFold(req.String(constants.TypeOption), string(anilist.MediaTypeManga)) {
		mediaType = anilist.MediaTypeManga
	}

	media, err := h.services.AniList.RandomMedia(ctx, mediaType)
	if err != nil {
		return nil, err
	}

	return single(mediaEmbed(media)), nil
}
