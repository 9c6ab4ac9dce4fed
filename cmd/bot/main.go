package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ValgulNecron/kasuki/internal/activity"
	"github.com/ValgulNecron/kasuki/internal/bot"
	"github.com/ValgulNecron/kasuki/internal/discord/webhook"
	"github.com/ValgulNecron/kasuki/internal/setup"
	"github.com/ValgulNecron/kasuki/internal/setup/telemetry"
	"github.com/sourcegraph/conc"
	"github.com/urfave/cli/v3"
)

const (
	// BotLogDir specifies where bot log files are stored.
	BotLogDir = "logs/bot_logs"

	shutdownTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "bot",
		Usage: "Kasuki Discord bot",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Connect to Discord and start the activity scheduler",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-scheduler",
						Usage: "Do not announce anime episodes from this process",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return runBot(ctx, c.Bool("no-scheduler"))
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

func runBot(ctx context.Context, noScheduler bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize application with required dependencies
	app, err := setup.InitializeApp(ctx, telemetry.ServiceBot, BotLogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(context.Background())

	repo := app.DB.Model()

	discordBot, err := bot.New(&app.Config.Bot.Discord, bot.Services{
		AniList:  app.AniList,
		Steam:    app.Steam,
		AI:       app.AI,
		Waifu:    app.Waifu,
		Activity: repo.Activity(),
		Settings: repo.Setting(),
	}, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	// Start the bot and connect to Discord
	if err := discordBot.Start(ctx); err != nil {
		return fmt.Errorf("failed to start bot: %w", err)
	}

	// The scheduler group is joined before the database is closed
	var schedulerGroup conc.WaitGroup

	if app.Config.Bot.Activity.Enabled && !noScheduler {
		scheduler := activity.NewScheduler(
			repo.Activity(),
			webhook.NewNotifier(app.Logger),
			app.AniList.NextOccurrence,
			app.LogManager.GetComponentLogger("activity"),
			activity.WithMaxCatchUp(app.Config.Bot.Activity.MaxCatchUp),
		)

		schedulerGroup.Go(func() {
			scheduler.Run(ctx)
		})
	} else {
		app.Logger.Info("Activity scheduler disabled")
	}

	app.Logger.Info("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Run returns only after its in-flight notifications have finished
	schedulerGroup.Wait()

	discordBot.Close(shutdownCtx)
	app.Logger.Info("Bot stopped")

	return nil
}
