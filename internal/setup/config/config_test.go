package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadConfigFrom(t *testing.T) {
	t.Parallel()

	t.Run("loads values and keeps defaults", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "common.toml", `
version = 1

[cache]
backend = "redis"
anilist_ttl = 60
`)
		writeFile(t, dir, "bot.toml", `
version = 1

[discord]
token = "abc"
`)

		cfg, used, err := LoadConfigFrom([]string{filepath.Join(dir, "missing"), dir})
		require.NoError(t, err)
		assert.Equal(t, dir, used)
		assert.Equal(t, CacheBackendRedis, cfg.Common.Cache.Backend)
		assert.Equal(t, int64(60), cfg.Common.Cache.AniListTTL)
		assert.Equal(t, int64(86400), cfg.Common.Cache.SteamTTL)
		assert.Equal(t, "abc", cfg.Bot.Discord.Token)
		assert.Equal(t, "https://graphql.anilist.co", cfg.Common.AniList.Endpoint)
		assert.True(t, cfg.Bot.Activity.Enabled)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "common.toml", "version = 1\n")

		_, _, err := LoadConfigFrom([]string{dir})
		require.ErrorIs(t, err, ErrConfigFileNotFound)
	})

	t.Run("missing version", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "common.toml", "[debug]\nlog_level = \"debug\"\n")
		writeFile(t, dir, "bot.toml", "version = 1\n")

		_, _, err := LoadConfigFrom([]string{dir})
		require.ErrorIs(t, err, ErrConfigVersionMissing)
	})

	t.Run("version mismatch", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "common.toml", "version = 1\n")
		writeFile(t, dir, "bot.toml", "version = 7\n")

		_, _, err := LoadConfigFrom([]string{dir})
		require.ErrorIs(t, err, ErrConfigVersionMismatch)
	})

	t.Run("unknown cache backend", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "common.toml", "version = 1\n[cache]\nbackend = \"memcached\"\n")
		writeFile(t, dir, "bot.toml", "version = 1\n")

		_, _, err := LoadConfigFrom([]string{dir})
		require.ErrorIs(t, err, ErrUnknownCacheBackend)
	})
}

func TestRequestTimeoutDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "10s", (&BotConfig{}).RequestTimeoutDuration().String())
	assert.Equal(t, "2.5s", (&BotConfig{RequestTimeout: 2500}).RequestTimeoutDuration().String())
}
