package anilist

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/ValgulNecron/kasuki/internal/upstream"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// maxRandomAttempts bounds lookups of IDs that turn out to be deleted.
const maxRandomAttempts = 5

// ErrNoStatistics is returned when the statistics page has no entries.
var ErrNoStatistics = errors.New("anilist: no site statistics")

type statisticsPage struct {
	PageInfo struct {
		HasNextPage bool `json:"hasNextPage"`
	} `json:"pageInfo"`
	Nodes []struct {
		Date  int64 `json:"date"`
		Count int   `json:"count"`
	} `json:"nodes"`
}

type siteStatisticsData struct {
	SiteStatistics struct {
		Anime *statisticsPage `json:"anime"`
		Manga *statisticsPage `json:"manga"`
	} `json:"SiteStatistics"`
}

// MediaCount returns the latest known number of media of a type.
// Statistics are paged oldest first, so the cursor walks forward towards the
// newest page and only re-reads it once the cached page is stale.
func (c *Client) MediaCount(ctx context.Context, mediaType MediaType) (int, error) {
	field := "anime"
	if mediaType == MediaTypeManga {
		field = "manga"
	}

	queryText := fmt.Sprintf(siteStatisticsQuery, field)

	raw, err := c.fetcher.FetchPage(ctx, "anilist_statistics_"+field, c.randomTTL,
		func(ctx context.Context, page int64) (string, bool, error) {
			resp, err := c.post(ctx, queryText, map[string]any{"page": page})
			if err != nil {
				return "", false, err
			}

			stats, err := parseStatistics(resp, mediaType)
			if err != nil {
				return "", false, err
			}

			return resp, stats.PageInfo.HasNextPage, nil
		})
	if err != nil {
		return 0, fmt.Errorf("anilist statistics: %w", err)
	}

	stats, err := parseStatistics(raw, mediaType)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, node := range stats.Nodes {
		count = max(count, node.Count)
	}

	if count == 0 {
		return 0, ErrNoStatistics
	}

	return count, nil
}

func parseStatistics(raw string, mediaType MediaType) (*statisticsPage, error) {
	var envelope graphQLResponse[siteStatisticsData]
	if err := sonic.UnmarshalString(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode statistics: %w", err)
	}

	page := envelope.Data.SiteStatistics.Anime
	if mediaType == MediaTypeManga {
		page = envelope.Data.SiteStatistics.Manga
	}

	if page == nil {
		return nil, ErrNoStatistics
	}

	return page, nil
}

// RandomMedia returns a random media of the given type.
// IDs are not contiguous, so missing IDs are retried a few times.
func (c *Client) RandomMedia(ctx context.Context, mediaType MediaType) (*Media, error) {
	count, err := c.MediaCount(ctx, mediaType)
	if err != nil {
		return nil, err
	}

	var lastErr error

	for range maxRandomAttempts {
		id := rand.IntN(count) + 1 //nolint:gosec // not security sensitive

		media, err := c.GetMedia(ctx, id, mediaType)
		if err == nil {
			return media, nil
		}

		if !errors.Is(err, ErrNotFound) && !errors.Is(err, upstream.ErrNotFound) {
			return nil, err
		}

		c.logger.Debug("Random media id does not exist", zap.Int("id", id))
		lastErr = err
	}

	return nil, lastErr
}
