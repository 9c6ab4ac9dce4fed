package anilist

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ValgulNecron/kasuki/internal/activity"
	"go.uber.org/zap"
)

type mediaData struct {
	Media *Media `json:"Media"`
}

// SearchMedia returns the best match for search.
func (c *Client) SearchMedia(ctx context.Context, search string, mediaType MediaType) (*Media, error) {
	data, err := query[mediaData](ctx, c, "search_media", searchMediaQuery, map[string]any{
		"search": search,
		"type":   mediaType,
	}, false)
	if err != nil {
		return nil, err
	}

	if data.Media == nil {
		return nil, ErrNotFound
	}

	return data.Media, nil
}

// GetMedia returns a media by its AniList ID.
func (c *Client) GetMedia(ctx context.Context, id int, mediaType MediaType) (*Media, error) {
	data, err := query[mediaData](ctx, c, "media", mediaByIDQuery, map[string]any{
		"id":   id,
		"type": mediaType,
	}, false)
	if err != nil {
		return nil, err
	}

	if data.Media == nil {
		return nil, ErrNotFound
	}

	return data.Media, nil
}

// NextAiring returns the upcoming episode of an anime, bypassing the cache
// so that tracking always follows the live schedule. A nil result means the
// anime has no scheduled episode.
func (c *Client) NextAiring(ctx context.Context, id int) (*Media, error) {
	data, err := query[mediaData](ctx, c, "next_airing", nextAiringQuery, map[string]any{
		"id": id,
	}, true)
	if err != nil {
		return nil, err
	}

	if data.Media == nil {
		return nil, ErrNotFound
	}

	return data.Media, nil
}

// NextOccurrence adapts NextAiring to the activity scheduler.
// Anime removed from AniList stop being tracked.
func (c *Client) NextOccurrence(ctx context.Context, subjectID string) (*activity.NextOccurrence, error) {
	id, err := strconv.Atoi(subjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid anime id %q: %w", subjectID, err)
	}

	media, err := c.NextAiring(ctx, id)
	if errors.Is(err, ErrNotFound) {
		c.logger.Info("Tracked anime no longer exists", zap.Int("id", id))
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if media.NextAiringEpisode == nil {
		return nil, nil
	}

	return &activity.NextOccurrence{
		FireAt:      media.NextAiringEpisode.AiringAt,
		Episode:     strconv.Itoa(media.NextAiringEpisode.Episode),
		DisplayName: media.Title.Preferred(),
	}, nil
}
