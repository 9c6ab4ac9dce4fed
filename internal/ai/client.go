// Package ai asks an OpenAI-compatible API questions and generates images.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ValgulNecron/kasuki/internal/cache"
	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const systemPrompt = "You are Kasuki, a friendly Discord bot. Answer concisely in plain text " +
	"and keep answers under 1500 characters."

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("ai: no api key configured")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("ai: provider temporarily unavailable")
	// ErrEmptyResponse is returned when the provider answers without content.
	ErrEmptyResponse = errors.New("ai: empty response")
)

// Client wraps the OpenAI client with a concurrency limit, a circuit breaker
// and the request cache.
type Client struct {
	client     openai.Client
	breaker    *gobreaker.CircuitBreaker
	semaphore  *semaphore.Weighted
	fetcher    *cache.Fetcher
	chatModel  string
	imageModel string
	chatTTL    time.Duration
	configured bool
	logger     *zap.Logger
}

// NewClient creates an AI client.
func NewClient(
	cfg *config.OpenAI, fetcher *cache.Fetcher, chatTTL, timeout time.Duration, logger *zap.Logger,
) *Client {
	logger = logger.Named("ai_client")

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	)

	settings := gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Client{
		client:     client,
		breaker:    gobreaker.NewCircuitBreaker(settings),
		semaphore:  semaphore.NewWeighted(maxConcurrent),
		fetcher:    fetcher,
		chatModel:  cfg.ChatModel,
		imageModel: cfg.ImageModel,
		chatTTL:    chatTTL,
		configured: cfg.APIKey != "",
		logger:     logger,
	}
}

// Ask answers a question. Identical questions are served from the cache.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	key, err := cache.Key(map[string]any{
		"api":      "openai_chat",
		"model":    c.chatModel,
		"question": strings.TrimSpace(question),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build cache key: %w", err)
	}

	return c.fetcher.Fetch(ctx, key, c.chatTTL, false, func(ctx context.Context) (string, error) {
		return execute(ctx, c, func(ctx context.Context) (string, error) {
			resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
				Messages: []openai.ChatCompletionMessageParamUnion{
					openai.SystemMessage(systemPrompt),
					openai.UserMessage(question),
				},
				Model:               c.chatModel,
				MaxCompletionTokens: openai.Int(800),
				Temperature:         openai.Float(0.7),
			})
			if err != nil {
				return "", err
			}

			if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
				return "", ErrEmptyResponse
			}

			return resp.Choices[0].Message.Content, nil
		})
	})
}

// Image generates an image and returns its URL.
// Every call generates a new image; the result is still recorded in the cache.
func (c *Client) Image(ctx context.Context, prompt string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	key, err := cache.Key(map[string]any{
		"api":    "openai_image",
		"model":  c.imageModel,
		"prompt": strings.TrimSpace(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build cache key: %w", err)
	}

	return c.fetcher.Fetch(ctx, key, 0, true, func(ctx context.Context) (string, error) {
		return execute(ctx, c, func(ctx context.Context) (string, error) {
			resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
				Prompt:         prompt,
				Model:          c.imageModel,
				N:              openai.Int(1),
				Size:           openai.ImageGenerateParamsSize1024x1024,
				ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
			})
			if err != nil {
				return "", err
			}

			if len(resp.Data) == 0 || resp.Data[0].URL == "" {
				return "", ErrEmptyResponse
			}

			return resp.Data[0].URL, nil
		})
	})
}

// execute runs a request inside the semaphore and the circuit breaker.
func execute(ctx context.Context, c *Client, request func(context.Context) (string, error)) (string, error) {
	if err := c.semaphore.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer c.semaphore.Release(1)

	result, err := c.breaker.Execute(func() (any, error) {
		return request(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		c.logger.Warn("Failed to make request", zap.Error(err))

		return "", err
	}

	return result.(string), nil
}
