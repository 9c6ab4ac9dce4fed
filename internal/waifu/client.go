// Package waifu fetches random images from waifu.pics.
package waifu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/ValgulNecron/kasuki/internal/cache"
	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/ValgulNecron/kasuki/internal/upstream"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// ErrUnknownCategory is returned for categories waifu.pics does not serve.
var ErrUnknownCategory = errors.New("waifu: unknown category")

// Categories lists the supported SFW categories.
var Categories = []string{"waifu", "neko", "shinobu", "megumin", "smile", "wave", "happy", "dance"}

type imageResponse struct {
	URL string `json:"url"`
}

// Client fetches random images. Every call goes upstream.
type Client struct {
	http    *http.Client
	baseURL string
	fetcher *cache.Fetcher
	logger  *zap.Logger
}

// NewClient creates a waifu.pics client.
func NewClient(cfg *config.Waifu, fetcher *cache.Fetcher, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		http:    upstream.NewHTTPClient(timeout),
		baseURL: cfg.BaseURL,
		fetcher: fetcher,
		logger:  logger.Named("waifu"),
	}
}

// Random returns the URL of a random image in category.
func (c *Client) Random(ctx context.Context, category string) (string, error) {
	if !slices.Contains(Categories, category) {
		return "", fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	key, err := cache.Key(map[string]any{"api": "waifu", "category": category})
	if err != nil {
		return "", fmt.Errorf("failed to build cache key: %w", err)
	}

	raw, err := c.fetcher.Fetch(ctx, key, 0, true, func(ctx context.Context) (string, error) {
		body, err := upstream.Get(ctx, c.http, c.baseURL+"/sfw/"+category)
		if err != nil {
			return "", err
		}

		return string(body), nil
	})
	if err != nil {
		return "", fmt.Errorf("waifu: %w", err)
	}

	var resp imageResponse
	if err := sonic.UnmarshalString(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to decode waifu response: %w", err)
	}

	if resp.URL == "" {
		return "", fmt.Errorf("%w: empty image url", upstream.ErrUnexpectedStatus)
	}

	return resp.URL, nil
}
