package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrUnknownCacheBackend   = errors.New("unknown cache backend")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v3.0.0"

// Current version of the config files.
const (
	CurrentCommonVersion = 1
	CurrentBotVersion    = 1
)

// Supported cache backends.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig
	Bot    BotConfig
}

// CommonConfig contains configuration shared between the bot and the db tool.
type CommonConfig struct {
	// Version of the common config.
	Version int     `koanf:"version"`
	Debug   Debug   `koanf:"debug"`
	SQLite  SQLite  `koanf:"sqlite"`
	Redis   Redis   `koanf:"redis"`
	Cache   Cache   `koanf:"cache"`
	AniList AniList `koanf:"anilist"`
	Steam   Steam   `koanf:"steam"`
	OpenAI  OpenAI  `koanf:"openai"`
	Waifu   Waifu   `koanf:"waifu"`
}

// BotConfig contains Discord bot specific configuration.
type BotConfig struct {
	// Version of the bot config.
	Version int `koanf:"version"`
	// Request timeout in milliseconds for upstream API calls.
	RequestTimeout int `koanf:"request_timeout"`
	// Discord configuration.
	Discord Discord `koanf:"discord"`
	// Activity scheduler configuration.
	Activity Activity `koanf:"activity"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
	// Enable pprof debugging.
	EnablePprof bool `koanf:"enable_pprof"`
	// pprof server port.
	PprofPort int `koanf:"pprof_port"`
}

// SQLite contains the database connection configuration.
type SQLite struct {
	// Path to the database file.
	Path string `koanf:"path"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Busy timeout in milliseconds.
	BusyTimeout int `koanf:"busy_timeout"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Cache contains request cache configuration.
type Cache struct {
	// Backend storing cache entries ("sqlite" or "redis").
	Backend string `koanf:"backend"`
	// TTL in seconds for AniList responses.
	AniListTTL int64 `koanf:"anilist_ttl"`
	// TTL in seconds for Steam responses.
	SteamTTL int64 `koanf:"steam_ttl"`
	// TTL in seconds for chat responses.
	ChatTTL int64 `koanf:"chat_ttl"`
	// TTL in seconds for random page cursors.
	RandomTTL int64 `koanf:"random_ttl"`
}

// AniList contains AniList GraphQL API configuration.
type AniList struct {
	// GraphQL endpoint.
	Endpoint string `koanf:"endpoint"`
}

// Steam contains Steam Store API configuration.
type Steam struct {
	// Store API base URL.
	StoreURL string `koanf:"store_url"`
	// Country code used for prices.
	Country string `koanf:"country"`
}

// OpenAI contains OpenAI-compatible API configuration.
type OpenAI struct {
	// Base URL for the API.
	BaseURL string `koanf:"base_url"`
	// API key for authentication.
	APIKey string `koanf:"api_key"`
	// Model used for questions.
	ChatModel string `koanf:"chat_model"`
	// Model used for image generation.
	ImageModel string `koanf:"image_model"`
	// Maximum concurrent requests.
	MaxConcurrent int64 `koanf:"max_concurrent"`
}

// Waifu contains waifu.pics API configuration.
type Waifu struct {
	// API base URL.
	BaseURL string `koanf:"base_url"`
}

// Discord contains Discord bot configuration.
type Discord struct {
	// Discord bot token for authentication.
	Token string `koanf:"token"`
	// Register commands in this guild only when set (development).
	TestGuildID uint64 `koanf:"test_guild_id"`
}

// Activity contains activity scheduler configuration.
type Activity struct {
	// Whether the scheduler runs alongside the bot.
	Enabled bool `koanf:"enabled"`
	// Maximum number of seconds replayed after a late tick.
	MaxCatchUp int64 `koanf:"max_catch_up"`
}

// RequestTimeoutDuration returns the upstream request timeout.
func (b *BotConfig) RequestTimeoutDuration() time.Duration {
	if b.RequestTimeout <= 0 {
		return 10 * time.Second
	}

	return time.Duration(b.RequestTimeout) * time.Millisecond
}

// LoadConfig loads the configuration from the config search paths.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadConfigFrom([]string{
		".kasuki",
		homeDir + "/.kasuki/config",
		"/etc/kasuki/config",
		"/app/config",
		"config",
		".",
	})
}

// LoadConfigFrom loads common.toml and bot.toml from the first path containing each.
func LoadConfigFrom(configPaths []string) (*Config, string, error) {
	k := koanf.New(".")

	var usedConfigPath string

	configFiles := []string{"common", "bot"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	config := Default()
	if err := k.Unmarshal("", config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("bot", config.Bot.Version, CurrentBotVersion); err != nil {
		return nil, "", err
	}

	switch config.Common.Cache.Backend {
	case CacheBackendSQLite, CacheBackendRedis:
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownCacheBackend, config.Common.Cache.Backend)
	}

	return config, usedConfigPath, nil
}

// Default returns a config populated with the values used when a key is absent.
func Default() *Config {
	return &Config{
		Common: CommonConfig{
			Debug: Debug{
				LogLevel:      "info",
				MaxLogsToKeep: 10,
				MaxLogLines:   10000,
				PprofPort:     6060,
			},
			SQLite: SQLite{
				Path:         "data/kasuki.db",
				MaxOpenConns: 8,
				BusyTimeout:  5000,
			},
			Redis: Redis{
				Host: "localhost",
				Port: 6379,
			},
			Cache: Cache{
				Backend:    CacheBackendSQLite,
				AniListTTL: 3600,
				SteamTTL:   86400,
				ChatTTL:    86400,
				RandomTTL:  86400,
			},
			AniList: AniList{Endpoint: "https://graphql.anilist.co"},
			Steam: Steam{
				StoreURL: "https://store.steampowered.com",
				Country:  "us",
			},
			OpenAI: OpenAI{
				BaseURL:       "https://api.openai.com/v1",
				ChatModel:     "gpt-4o-mini",
				ImageModel:    "dall-e-3",
				MaxConcurrent: 4,
			},
			Waifu: Waifu{BaseURL: "https://api.waifu.pics"},
		},
		Bot: BotConfig{
			RequestTimeout: 10000,
			Activity: Activity{
				Enabled:    true,
				MaxCatchUp: 300,
			},
		},
	}
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/ValgulNecron/kasuki/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
