package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRotatesOldSessions(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	for _, name := range []string{"2024-01-01_00-00-00", "2024-01-02_00-00-00", "2024-01-03_00-00-00"} {
		require.NoError(t, os.MkdirAll(filepath.Join(logDir, name), os.ModePerm))
	}

	lm := NewManager(ServiceBot, logDir, &config.Debug{
		LogLevel:      "debug",
		MaxLogsToKeep: 2,
		MaxLogLines:   100,
	}, false)
	defer lm.Close()

	mainLogger, dbLogger, err := lm.GetLoggers()
	require.NoError(t, err)

	mainLogger.Info("hello")
	dbLogger.Debug("query")
	require.NoError(t, mainLogger.Sync())

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.NoDirExists(t, filepath.Join(logDir, "2024-01-01_00-00-00"))
	assert.NoDirExists(t, filepath.Join(logDir, "2024-01-02_00-00-00"))
	assert.DirExists(t, filepath.Join(logDir, "2024-01-03_00-00-00"))

	data, err := os.ReadFile(filepath.Join(lm.GetCurrentSessionDir(), "main.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), lm.instanceID)
}

func TestManagerInvalidLevel(t *testing.T) {
	t.Parallel()

	lm := NewManager(ServiceDB, t.TempDir(), &config.Debug{LogLevel: "loud", MaxLogsToKeep: 1}, false)
	defer lm.Close()

	_, _, err := lm.GetLoggers()
	require.Error(t, err)
}

func TestServiceTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bot", ServiceBot.String())
	assert.Equal(t, "db", ServiceDB.String())
	assert.Equal(t, "unknown", ServiceType(9).String())
}
