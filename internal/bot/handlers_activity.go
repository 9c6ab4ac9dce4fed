package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ValgulNecron/kasuki/internal/anilist"
	"github.com/ValgulNecron/kasuki/internal/bot/constants"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"go.uber.org/zap"
)

// resolveAnime accepts an AniList id or a title and returns the anime with
// an up-to-date airing schedule.
func (h *Handler) resolveAnime(ctx context.Context, query string) (*anilist.Media, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newUserError("Please provide an anime name or AniList id.")
	}

	id, err := strconv.Atoi(query)
	if err != nil || id <= 0 {
		media, err := h.services.AniList.SearchMedia(ctx, query, anilist.MediaTypeAnime)
		if err != nil {
			return nil, err
		}

		id = media.ID
	}

	return h.services.AniList.NextAiring(ctx, id)
}

func (h *Handler) handleActivityAdd(ctx context.Context, req *Request) (*Response, error) {
	if req.GuildID == "" {
		return nil, errGuildOnly
	}

	delay, _ := req.Int(constants.DelayOption)
	if delay < 0 || delay > constants.MaxActivityDelay {
		return nil, newUserError("The delay must be between 0 and %d seconds.", constants.MaxActivityDelay)
	}

	settings, err := h.services.Settings.GetGuildSettings(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	if settings.ActivityWebhook == "" {
		return nil, errNoWebhook
	}

	media, err := h.resolveAnime(ctx, req.String(constants.AnimeOption))
	if err != nil {
		return nil, err
	}

	next := media.NextAiringEpisode
	if next == nil {
		return nil, errNoUpcomingEpisode
	}

	record := &types.ActivityRecord{
		SubjectID:    strconv.Itoa(media.ID),
		OwnerID:      req.GuildID,
		FireAt:       next.AiringAt,
		NotifyTarget: settings.ActivityWebhook,
		Episode:      strconv.Itoa(next.Episode),
		DisplayName:  media.Title.Preferred(),
		DelaySeconds: delay,
		Image:        media.CoverImage.URL(),
	}

	if err := h.services.Activity.Upsert(ctx, record); err != nil {
		return nil, err
	}

	h.logger.Info("Activity added",
		zap.String("guildID", req.GuildID),
		zap.Int("animeID", media.ID),
		zap.Int64("fireAt", next.AiringAt))

	return single(activityAddedEmbed(media, delay)), nil
}

func (h *Handler) handleActivityDelete(ctx context.Context, req *Request) (*Response, error) {
	if req.GuildID == "" {
		return nil, errGuildOnly
	}

	query := strings.TrimSpace(req.String(constants.AnimeOption))
	if query == "" {
		return nil, newUserError("Please provide an anime name or AniList id.")
	}

	subjectID := query
	name := query

	if id, err := strconv.Atoi(query); err != nil || id <= 0 {
		media, err := h.services.AniList.SearchMedia(ctx, query, anilist.MediaTypeAnime)
		if err != nil {
			return nil, err
		}

		subjectID = strconv.Itoa(media.ID)
		name = media.Title.Preferred()
	}

	deleted, err := h.services.Activity.Delete(ctx, subjectID, req.GuildID)
	if err != nil {
		return nil, err
	}

	if !deleted {
		return nil, newUserError("%s is not tracked in this server.", name)
	}

	return &Response{Embeds: successEmbeds("Activity removed",
		fmt.Sprintf("%s is no longer tracked.", name))}, nil
}

func (h *Handler) handleActivityList(ctx context.Context, req *Request) (*Response, error) {
	if req.GuildID == "" {
		return nil, errGuildOnly
	}

	records, err := h.services.Activity.ListByOwner(ctx, req.GuildID)
	if err != nil {
		return nil, err
	}

	return single(activityListEmbed(records)), nil
}
