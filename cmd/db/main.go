package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ValgulNecron/kasuki/internal/database"
	"github.com/ValgulNecron/kasuki/internal/database/migrations"
	"github.com/ValgulNecron/kasuki/internal/export"
	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var ErrNameRequired = errors.New("NAME argument required")

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// Setup dependencies
	db, migrator, logger, err := setupMigrator()
	if err != nil {
		return fmt.Errorf("failed to setup migrator: %w", err)
	}
	defer db.Close()

	app := &cli.Command{
		Name:  "db",
		Usage: "Kasuki database management tool",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Initialize migration tables",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return migrator.Init(ctx)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run pending migrations",
				Action: func(ctx context.Context, _ *cli.Command) error {
					if err := migrator.Lock(ctx); err != nil {
						return err
					}
					defer migrator.Unlock(ctx) //nolint:errcheck

					group, err := migrator.Migrate(ctx)
					if err != nil {
						return err
					}

					if group.IsZero() {
						logger.Info("No new migrations to run (database is up to date)")
						return nil
					}

					logger.Info("Successfully migrated",
						zap.String("group", group.String()),
					)
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "Rollback the last migration group",
				Action: func(ctx context.Context, _ *cli.Command) error {
					if err := migrator.Lock(ctx); err != nil {
						return err
					}
					defer migrator.Unlock(ctx) //nolint:errcheck

					group, err := migrator.Rollback(ctx)
					if err != nil {
						return err
					}

					if group.IsZero() {
						logger.Info("No groups to roll back")
						return nil
					}

					logger.Info("Successfully rolled back",
						zap.String("group", group.String()),
					)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "Show migration status",
				Action: func(ctx context.Context, _ *cli.Command) error {
					ms, err := migrator.MigrationsWithStatus(ctx)
					if err != nil {
						return err
					}

					logger.Info("Migration status",
						zap.String("migrations", ms.String()),
						zap.String("unapplied", ms.Unapplied().String()),
						zap.String("last_group", ms.LastGroup().String()),
					)

					if len(ms.Unapplied()) > 0 {
						return nil
					}

					requests, pages, err := db.Model().Cache().Count(ctx)
					if err != nil {
						return err
					}

					logger.Info("Cache status",
						zap.Int("request_entries", requests),
						zap.Int("page_cursors", pages),
					)
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "Create a new Go migration file",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return ErrNameRequired
					}

					mf, err := migrator.CreateGoMigration(ctx, c.Args().First())
					if err != nil {
						return err
					}

					logger.Info("Created Go migration",
						zap.String("name", mf.Name),
						zap.String("path", mf.Path),
					)
					return nil
				},
			},
			{
				Name:  "export",
				Usage: "Back up tracked anime and guild settings",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   string(export.FormatSQLite),
						Usage:   "Export format (sqlite or csv)",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Value:   "exports",
						Usage:   "Base output directory for export files",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Export description",
					},
					&cli.BoolFlag{
						Name:  "redact-webhooks",
						Usage: "Replace webhook tokens in the export",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					format, err := export.ParseFormat(c.String("format"))
					if err != nil {
						return err
					}

					// Create timestamped output directory
					outDir := filepath.Join(c.String("out"), time.Now().UTC().Format("2006-01-02_150405"))

					repo := db.Model()
					exporter := export.New(repo.Activity(), repo.Setting(), outDir, &export.Config{
						Description:    c.String("description"),
						RedactWebhooks: c.Bool("redact-webhooks"),
					}, logger, format)

					return exporter.ExportAll(ctx)
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// setupMigrator initializes the database connection and migrator.
func setupMigrator() (database.Client, *migrate.Migrator, *zap.Logger, error) {
	// Load full configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Create development logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Connect to database
	db, err := database.NewConnection(context.Background(), &cfg.Common.SQLite, logger, false)
	if err != nil {
		return nil, nil, logger, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create migrator using database connection and migrations
	migrator := migrate.NewMigrator(db.DB(), migrations.Migrations)

	return db, migrator, logger, nil
}
