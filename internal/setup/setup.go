package setup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ValgulNecron/kasuki/internal/ai"
	"github.com/ValgulNecron/kasuki/internal/anilist"
	"github.com/ValgulNecron/kasuki/internal/cache"
	"github.com/ValgulNecron/kasuki/internal/database"
	"github.com/ValgulNecron/kasuki/internal/database/migrations"
	"github.com/ValgulNecron/kasuki/internal/redis"
	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/ValgulNecron/kasuki/internal/setup/telemetry"
	"github.com/ValgulNecron/kasuki/internal/steam"
	"github.com/ValgulNecron/kasuki/internal/waifu"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// ErrPendingMigrations is returned when the bot starts on an outdated schema.
var ErrPendingMigrations = errors.New("database migrations are pending, run `db migrate` first")

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config     // Application configuration
	Logger       *zap.Logger        // Main application logger
	DBLogger     *zap.Logger        // Database-specific logger
	DB           database.Client    // Database connection pool
	RedisManager *redis.Manager     // Redis connection manager
	Fetcher      *cache.Fetcher     // Cached upstream fetcher
	AniList      *anilist.Client    // AniList GraphQL client
	Steam        *steam.Client      // Steam store client
	AI           *ai.Client         // OpenAI-compatible client
	Waifu        *waifu.Client      // waifu.pics client
	LogManager   *telemetry.Manager // Log management system
	pprofServer  *pprofServer       // Debug HTTP server for pprof
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
// The db tool only gets the database, the bot also gets the API clients.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType, logDir string) (*App, error) {
	// Load app configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Common.Debug, true)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		logManager.Close()
		return nil, err
	}

	logger.Info("Logging initialized",
		zap.String("sessionDir", logManager.GetCurrentSessionDir()),
		zap.String("level", cfg.Common.Debug.LogLevel))

	app := &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger.Named("database"),
		RedisManager: redis.NewManager(&cfg.Common.Redis, logger),
		LogManager:   logManager,
	}

	app.DB, err = database.NewConnection(ctx, &cfg.Common.SQLite, app.DBLogger, false)
	if err != nil {
		app.Cleanup(ctx)
		return nil, err
	}

	if serviceType == telemetry.ServiceBot {
		if err := app.initBot(ctx); err != nil {
			app.Cleanup(ctx)
			return nil, err
		}
	}

	// Start pprof server if enabled
	if cfg.Common.Debug.EnablePprof {
		srv, err := startPprofServer(cfg.Common.Debug.PprofPort, logger)
		if err != nil {
			logger.Error("Failed to start pprof server", zap.Error(err))
		} else {
			app.pprofServer = srv

			logger.Warn("pprof debugging endpoint enabled - this should not be used in production!")
		}
	}

	return app, nil
}

// initBot checks the schema and creates the cached API clients.
func (s *App) initBot(ctx context.Context) error {
	if err := checkMigrations(ctx, s.DB); err != nil {
		return err
	}

	store, err := s.cacheStore()
	if err != nil {
		return err
	}

	common := &s.Config.Common
	timeout := s.Config.Bot.RequestTimeoutDuration()

	s.Fetcher = cache.NewFetcher(store, s.Logger)
	s.AniList = anilist.NewClient(&common.AniList, s.Fetcher,
		seconds(common.Cache.AniListTTL), seconds(common.Cache.RandomTTL), timeout, s.Logger)
	s.Steam = steam.NewClient(&common.Steam, s.Fetcher, seconds(common.Cache.SteamTTL), timeout, s.Logger)
	s.AI = ai.NewClient(&common.OpenAI, s.Fetcher, seconds(common.Cache.ChatTTL), timeout, s.Logger)
	s.Waifu = waifu.NewClient(&common.Waifu, s.Fetcher, timeout, s.Logger)

	s.Logger.Info("API clients initialized", zap.String("cache_backend", common.Cache.Backend))

	return nil
}

// cacheStore returns the backend selected by cache.backend.
func (s *App) cacheStore() (cache.Store, error) {
	if s.Config.Common.Cache.Backend != config.CacheBackendRedis {
		return s.DB.Model().Cache(), nil
	}

	client, err := s.RedisManager.GetClient(redis.CacheDBIndex)
	if err != nil {
		return nil, err
	}

	return redis.NewCacheStore(client, s.Logger), nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(ctx context.Context) {
	// Shutdown pprof server if running
	if s.pprofServer != nil {
		s.pprofServer.Close(ctx)
	}

	// Close database connections
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			s.Logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	// Close Redis connections after the components that use them
	s.RedisManager.Close()

	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	s.LogManager.Close()
}

// checkMigrations fails when the schema is behind the binary.
func checkMigrations(ctx context.Context, db database.Client) error {
	migrator := migrate.NewMigrator(db.DB(), migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}

	if unapplied := ms.Unapplied(); len(unapplied) > 0 {
		return fmt.Errorf("%w (%d pending)", ErrPendingMigrations, len(unapplied))
	}

	return nil
}

func seconds(n int64) time.Duration {
	return time.Duration(n) * time.Second
}
