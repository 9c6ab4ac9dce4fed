package bot

import (
	"context"
	"fmt"
	"time"

	guildEvents "github.com/ValgulNecron/kasuki/internal/bot/events"
	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"
)

// commandTimeout bounds the work done for one interaction. Interaction
// tokens stay valid for 15 minutes.
const commandTimeout = 2 * time.Minute

// Bot connects the command handler to the Discord gateway.
type Bot struct {
	client      bot.Client
	handler     *Handler
	testGuildID snowflake.ID
	logger      *zap.Logger
}

// New creates the Discord client and wires the command and guild handlers.
func New(cfg *config.Discord, services Services, logger *zap.Logger) (*Bot, error) {
	b := &Bot{
		testGuildID: snowflake.ID(cfg.TestGuildID),
		logger:      logger.Named("bot"),
	}

	services.Latency = b.latency
	b.handler = NewHandler(services, logger)

	guildHandler := guildEvents.NewGuildEventHandler(services.Settings, services.Activity, logger)

	client, err := disgo.New(cfg.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(gateway.IntentGuilds),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
			OnGuildJoin:                     guildHandler.OnGuildJoin,
			OnGuildLeave:                    guildHandler.OnGuildLeave,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client

	return b, nil
}

// Start registers the slash commands and opens the gateway connection.
// Commands go to the test guild when one is configured, globally otherwise.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands", zap.Uint64("test_guild", uint64(b.testGuildID)))

	var err error
	if b.testGuildID != 0 {
		_, err = b.client.Rest().SetGuildCommands(b.client.ApplicationID(), b.testGuildID, Commands())
	} else {
		_, err = b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), Commands())
	}

	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Starting bot")

	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the Discord gateway connection.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)
}

func (b *Bot) latency() time.Duration {
	if b.client == nil || b.client.Gateway() == nil {
		return 0
	}

	return b.client.Gateway().Latency()
}

// handleApplicationCommandInteraction defers the response and runs the
// command in its own goroutine.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	go func() {
		data := event.SlashCommandInteractionData()

		key := data.CommandName()
		if data.SubCommandName != nil {
			key += " " + *data.SubCommandName
		}

		// Defer response to prevent Discord timeout while processing
		if err := event.DeferCreateMessage(b.handler.Ephemeral(key)); err != nil {
			b.logger.Error("Failed to defer create message", zap.Error(err))
			return
		}

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in application command interaction handler",
					zap.String("command", key),
					zap.Any("panic", r))
				b.respond(event, &Response{Embeds: errorEmbeds("Internal error. Please try again later.")})
			}
		}()

		req, err := newRequest(event)
		if err != nil {
			b.logger.Error("Failed to read command options", zap.String("command", key), zap.Error(err))
			b.respond(event, &Response{Embeds: errorEmbeds(errorMessage(err))})

			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		b.respond(event, b.handler.Handle(ctx, req))
	}()
}

// respond replaces the deferred message with resp.
func (b *Bot) respond(event *events.ApplicationCommandInteractionCreate, resp *Response) {
	update := discord.NewMessageUpdateBuilder().
		SetContent(resp.Content).
		SetEmbeds(resp.Embeds...).
		Build()

	_, err := event.Client().Rest().UpdateInteractionResponse(event.ApplicationID(), event.Token(), update)
	if err != nil {
		b.logger.Error("Failed to update interaction response", zap.Error(err))
	}
}
