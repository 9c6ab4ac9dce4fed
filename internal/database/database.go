package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ValgulNecron/kasuki/internal/database/migrations"
	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/bytedance/sonic"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bunjson"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// sonicProvider is a JSON provider that uses Sonic for encoding and decoding.
type sonicProvider struct{}

func (sonicProvider) Marshal(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

func (sonicProvider) Unmarshal(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

func (sonicProvider) NewEncoder(w io.Writer) bunjson.Encoder {
	return sonic.ConfigDefault.NewEncoder(w)
}

func (sonicProvider) NewDecoder(r io.Reader) bunjson.Decoder {
	return sonic.ConfigDefault.NewDecoder(r)
}

// Client defines the methods that a database client must implement.
type Client interface {
	// Model returns the repository containing all model operations.
	Model() *Repository
	// Close gracefully shuts down the database connection.
	Close() error
	// DB returns the underlying bun.DB instance.
	DB() *bun.DB
}

// clientImpl represents the concrete implementation of the database client.
type clientImpl struct {
	db     *bun.DB
	logger *zap.Logger
	repo   *Repository
}

// NewConnection opens the SQLite database and returns a Client instance.
func NewConnection(
	ctx context.Context, cfg *config.SQLite, logger *zap.Logger, autoMigrate bool,
) (Client, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Run migrations if requested
	if autoMigrate {
		if err := Migrate(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	client := &clientImpl{
		db:     db,
		logger: logger,
		repo:   NewRepository(db, logger),
	}

	logger.Info("Database connection established", zap.String("path", cfg.Path))

	return client, nil
}

// Open creates the bun.DB for the configured SQLite file.
func Open(cfg *config.SQLite, logger *zap.Logger) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if cfg.Path == ":memory:" || maxOpen <= 0 {
		// Every connection to :memory: would see its own empty database
		maxOpen = 1
	}

	sqldb.SetMaxOpenConns(maxOpen)
	sqldb.SetMaxIdleConns(maxOpen)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	// Set Sonic as the JSON provider
	bunjson.SetProvider(sonicProvider{})

	db := bun.NewDB(sqldb, sqlitedialect.New())

	// Add query hook for monitoring
	db.AddQueryHook(NewHook(logger))

	return db, nil
}

// DSN builds the driver connection string with the pragmas the bot relies on.
func DSN(cfg *config.SQLite) string {
	busyTimeout := cfg.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 5000
	}

	path := cfg.Path
	if path == ":memory:" {
		path = "file::memory:?cache=shared"
	} else {
		path = "file:" + path + "?mode=rwc"
	}

	return fmt.Sprintf("%s&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path, busyTimeout)
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *bun.DB, logger *zap.Logger) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if !group.IsZero() {
		logger.Info("Automatically ran migrations", zap.String("group", group.String()))
	}

	return nil
}

// Close gracefully shuts down the database connection.
func (c *clientImpl) Close() error {
	err := c.db.Close()
	if err != nil {
		c.logger.Error("Failed to close database connection", zap.Error(err))
		return err
	}

	c.logger.Info("Database connection closed")

	return nil
}

// Model returns the repository containing all model operations.
func (c *clientImpl) Model() *Repository {
	return c.repo
}

// DB returns the underlying bun.DB instance.
func (c *clientImpl) DB() *bun.DB {
	return c.db
}
