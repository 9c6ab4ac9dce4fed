package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ValgulNecron/kasuki/internal/database/dbtest"
	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/ValgulNecron/kasuki/internal/export"
	exportCSV "github.com/ValgulNecron/kasuki/internal/export/csv"
	exportSQLite "github.com/ValgulNecron/kasuki/internal/export/sqlite"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const webhook = "https://discord.com/api/webhooks/123456/secret-token"

func TestExportAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := dbtest.NewClient(t).Model()

	settings := types.NewGuildSetting("1")
	settings.ActivityWebhook = webhook
	require.NoError(t, repo.Setting().SaveGuildSettings(ctx, settings))
	require.NoError(t, repo.Activity().Upsert(ctx, &types.ActivityRecord{
		SubjectID: "21", OwnerID: "1", FireAt: 100, NotifyTarget: webhook,
	}))

	outDir := filepath.Join(t.TempDir(), "backup")
	exporter := export.New(repo.Activity(), repo.Setting(), outDir,
		&export.Config{Description: "nightly", RedactWebhooks: true}, zap.NewNop(),
		export.FormatSQLite, export.FormatCSV)

	require.NoError(t, exporter.ExportAll(ctx))

	assert.FileExists(t, filepath.Join(outDir, exportSQLite.Filename))
	assert.FileExists(t, filepath.Join(outDir, exportCSV.ActivitiesFile))
	assert.FileExists(t, filepath.Join(outDir, exportCSV.SettingsFile))

	data, err := os.ReadFile(filepath.Join(outDir, "export_config.json"))
	require.NoError(t, err)

	var manifest map[string]any
	require.NoError(t, sonic.Unmarshal(data, &manifest))
	assert.Equal(t, "nightly", manifest["description"])
	assert.Equal(t, export.EngineVersion, manifest["engineVersion"])
	assert.InDelta(t, 1, manifest["activities"], 0)
	assert.InDelta(t, 1, manifest["settings"], 0)

	activities, err := os.ReadFile(filepath.Join(outDir, exportCSV.ActivitiesFile))
	require.NoError(t, err)
	assert.NotContains(t, string(activities), "secret-token")
	assert.Contains(t, string(activities), "https://discord.com/api/webhooks/123456/redacted")

	// The database itself is untouched.
	stored, err := repo.Activity().Get(ctx, "21", "1")
	require.NoError(t, err)
	assert.Equal(t, webhook, stored.NotifyTarget)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	format, err := export.ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, format)

	_, err = export.ParseFormat("binary")
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
}

func TestRedactWebhook(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://discord.com/api/webhooks/1/redacted", export.RedactWebhook("https://discord.com/api/webhooks/1/abc"))
	assert.Equal(t, "https://discord.com/api/webhooks/1/redacted?wait=true",
		export.RedactWebhook("https://discord.com/api/webhooks/1/abc?wait=true"))
	assert.Empty(t, export.RedactWebhook(""))
}
