package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/ValgulNecron/kasuki/internal/bot/constants"
	"github.com/disgoorg/disgo/discord"
)

func requirePrompt(req *Request) (string, error) {
	prompt := strings.TrimSpace(req.String(constants.PromptOption))
	if prompt == "" {
		return "", newUserError("Please provide a prompt.")
	}

	return prompt, nil
}

func (h *Handler) handleSteamGame(ctx context.Context, req *Request) (*Response, error) {
	name, err := requireName(req)
	if err != nil {
		return nil, err
	}

	game, err := h.services.Steam.FindGame(ctx, name)
	if err != nil {
		return nil, err
	}

	return single(gameEmbed(game)), nil
}

func (h *Handler) handleAIQuestion(ctx context.Context, req *Request) (*Response, error) {
	prompt, err := requirePrompt(req)
	if err != nil {
		return nil, err
	}

	answer, err := h.services.AI.Ask(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return single(answerEmbed(prompt, answer)), nil
}

func (h *Handler) handleAIImage(ctx context.Context, req *Request) (*Response, error) {
	prompt, err := requirePrompt(req)
	if err != nil {
		return nil, err
	}

	url, err := h.services.AI.Image(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return single(imageEmbed(prompt, url)), nil
}

func (h *Handler) handleWaifu(ctx context.Context, req *Request) (*Response, error) {
	category := req.String(constants.CategoryOption)
	if category == "" {
		category = "waifu"
	}

	url, err := h.services.Waifu.Random(ctx, category)
	if err != nil {
		return nil, err
	}

	return single(imageEmbed(strings.ToUpper(category[:1])+category[1:], url)), nil
}

func (h *Handler) handlePing(_ context.Context, _ *Request) (*Response, error) {
	var latency string
	if h.services.Latency != nil {
		latency = h.services.Latency().String()
	} else {
		latency = constants.NotApplicable
	}

	return &Response{Embeds: []discord.Embed{
		discord.NewEmbedBuilder().
			SetTitle("Pong").
			SetDescription(fmt.Sprintf("Gateway latency: %s", latency)).
			SetColor(constants.DefaultEmbedColor).
			Build(),
	}}, nil
}
