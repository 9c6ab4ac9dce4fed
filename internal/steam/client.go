// Package steam looks up games on the Steam store through the request cache.
package steam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ValgulNecron/kasuki/internal/cache"
	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/ValgulNecron/kasuki/internal/upstream"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no game matches.
var ErrNotFound = errors.New("steam: game not found")

// SearchItem is one store search result.
type SearchItem struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	TinyImage string `json:"tiny_image"`
}

type searchResponse struct {
	Total int          `json:"total"`
	Items []SearchItem `json:"items"`
}

// Game holds the store details of an app.
type Game struct {
	AppID            int      `json:"steam_appid"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	ShortDescription string   `json:"short_description"`
	HeaderImage      string   `json:"header_image"`
	Website          string   `json:"website"`
	IsFree           bool     `json:"is_free"`
	Developers       []string `json:"developers"`
	Publishers       []string `json:"publishers"`
	PriceOverview    *struct {
		Currency        string `json:"currency"`
		DiscountPercent int    `json:"discount_percent"`
		FinalFormatted  string `json:"final_formatted"`
	} `json:"price_overview"`
	ReleaseDate struct {
		ComingSoon bool   `json:"coming_soon"`
		Date       string `json:"date"`
	} `json:"release_date"`
	Platforms struct {
		Windows bool `json:"windows"`
		Mac     bool `json:"mac"`
		Linux   bool `json:"linux"`
	} `json:"platforms"`
}

// StoreURL returns the store page of the game.
func (g *Game) StoreURL() string {
	return "https://store.steampowered.com/app/" + strconv.Itoa(g.AppID)
}

// Price returns the formatted price.
func (g *Game) Price() string {
	switch {
	case g.IsFree:
		return "Free"
	case g.PriceOverview == nil:
		return "Unknown"
	case g.PriceOverview.DiscountPercent > 0:
		return fmt.Sprintf("%s (-%d%%)", g.PriceOverview.FinalFormatted, g.PriceOverview.DiscountPercent)
	default:
		return g.PriceOverview.FinalFormatted
	}
}

type appDetails struct {
	Success bool `json:"success"`
	Data    Game `json:"data"`
}

// Client queries the Steam store API.
type Client struct {
	http     *http.Client
	storeURL string
	country  string
	fetcher  *cache.Fetcher
	ttl      time.Duration
	logger   *zap.Logger
}

// NewClient creates a Steam client.
func NewClient(cfg *config.Steam, fetcher *cache.Fetcher, ttl, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		http:     upstream.NewHTTPClient(timeout),
		storeURL: cfg.StoreURL,
		country:  cfg.Country,
		fetcher:  fetcher,
		ttl:      ttl,
		logger:   logger.Named("steam"),
	}
}

// get fetches a store endpoint through the cache.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (string, error) {
	params.Set("cc", c.country)
	params.Set("l", "english")

	key, err := cache.Key(map[string]any{
		"api":      "steam",
		"endpoint": endpoint,
		"params":   params,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build cache key: %w", err)
	}

	return c.fetcher.Fetch(ctx, key, c.ttl, false, func(ctx context.Context) (string, error) {
		body, err := upstream.Get(ctx, c.http, c.storeURL+endpoint+"?"+params.Encode())
		if err != nil {
			return "", err
		}

		return string(body), nil
	})
}

// Search returns the store search results for term.
func (c *Client) Search(ctx context.Context, term string) ([]SearchItem, error) {
	raw, err := c.get(ctx, "/api/storesearch/", url.Values{"term": {term}})
	if err != nil {
		return nil, fmt.Errorf("steam search: %w", err)
	}

	var resp searchResponse
	if err := sonic.UnmarshalString(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return resp.Items, nil
}

// Details returns the store details of an app.
func (c *Client) Details(ctx context.Context, appID int) (*Game, error) {
	id := strconv.Itoa(appID)

	raw, err := c.get(ctx, "/api/appdetails", url.Values{"appids": {id}})
	if err != nil {
		return nil, fmt.Errorf("steam details: %w", err)
	}

	var resp map[string]appDetails
	if err := sonic.UnmarshalString(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode app details: %w", err)
	}

	details, ok := resp[id]
	if !ok || !details.Success {
		return nil, fmt.Errorf("%w: app %d", ErrNotFound, appID)
	}

	if details.Data.AppID == 0 {
		details.Data.AppID = appID
	}

	return &details.Data, nil
}

// FindGame searches for name and returns the details of the best match.
func (c *Client) FindGame(ctx context.Context, name string) (*Game, error) {
	items, err := c.Search(ctx, name)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	c.logger.Debug("Resolved game", zap.String("name", name), zap.Int("appID", items[0].ID))

	return c.Details(ctx, items[0].ID)
}
