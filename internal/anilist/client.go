// Package anilist queries the AniList GraphQL API through the request cache.
package anilist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ValgulNecron/kasuki/internal/cache"
	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/ValgulNecron/kasuki/internal/upstream"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when AniList has no result for a query.
	ErrNotFound = errors.New("anilist: not found")
	// ErrGraphQL is returned when AniList answers with query errors.
	ErrGraphQL = errors.New("anilist: query failed")
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// Client queries AniList. Responses are cached per operation and variables.
type Client struct {
	http      *http.Client
	endpoint  string
	fetcher   *cache.Fetcher
	ttl       time.Duration
	randomTTL time.Duration
	logger    *zap.Logger
}

// NewClient creates an AniList client.
func NewClient(
	cfg *config.AniList, fetcher *cache.Fetcher, ttl, randomTTL, timeout time.Duration, logger *zap.Logger,
) *Client {
	return &Client{
		http:      upstream.NewHTTPClient(timeout),
		endpoint:  cfg.Endpoint,
		fetcher:   fetcher,
		ttl:       ttl,
		randomTTL: randomTTL,
		logger:    logger.Named("anilist"),
	}
}

// requestKey identifies a query in the cache without embedding the query text.
func requestKey(operation string, variables map[string]any) (string, error) {
	return cache.Key(map[string]any{
		"api":       "anilist",
		"operation": operation,
		"variables": variables,
	})
}

// post sends a query and returns the raw body, turning GraphQL errors into Go errors.
func (c *Client) post(ctx context.Context, query string, variables map[string]any) (string, error) {
	body, err := sonic.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}

	resp, err := upstream.PostJSON(ctx, c.http, c.endpoint, body)
	if errors.Is(err, upstream.ErrNotFound) {
		return "", ErrNotFound
	}

	if err != nil {
		return "", err
	}

	var envelope graphQLResponse[struct{}]
	if err := sonic.Unmarshal(resp, &envelope); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			if e.Status == http.StatusNotFound {
				return "", ErrNotFound
			}

			messages = append(messages, e.Message)
		}

		return "", fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(messages, "; "))
	}

	return string(resp), nil
}

// query runs a cached query and decodes its data into T.
func query[T any](
	ctx context.Context, c *Client, operation, query string, variables map[string]any, bypass bool,
) (*T, error) {
	key, err := requestKey(operation, variables)
	if err != nil {
		return nil, fmt.Errorf("failed to build cache key: %w", err)
	}

	raw, err := c.fetcher.Fetch(ctx, key, c.ttl, bypass, func(ctx context.Context) (string, error) {
		return c.post(ctx, query, variables)
	})
	if err != nil {
		return nil, fmt.Errorf("anilist %s: %w", operation, err)
	}

	return decode[T](raw)
}

func decode[T any](raw string) (*T, error) {
	var envelope graphQLResponse[T]
	if err := sonic.UnmarshalString(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode anilist response: %w", err)
	}

	return &envelope.Data, nil
}
