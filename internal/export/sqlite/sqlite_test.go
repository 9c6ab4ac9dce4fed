package sqlite_test

import (
	"path/filepath"
	"strconv"
	"testing"

	dbTypes "github.com/ValgulNecron/kasuki/internal/database/types"
	exportSQLite "github.com/ValgulNecron/kasuki/internal/export/sqlite"
	"github.com/ValgulNecron/kasuki/internal/export/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	activities := make([]dbTypes.ActivityRecord, 0, 1500)
	for i := range 1500 {
		activities = append(activities, dbTypes.ActivityRecord{
			SubjectID:    strconv.Itoa(i),
			OwnerID:      "g1",
			FireAt:       int64(1000 + i),
			NotifyTarget: "https://hook/x",
			Episode:      "1",
			DisplayName:  "it's \"quoted\"",
		})
	}

	disabled := dbTypes.NewGuildSetting("g2")
	disabled.Game = false

	snapshot := &types.Snapshot{
		Activities: activities,
		Settings:   []dbTypes.GuildSetting{*dbTypes.NewGuildSetting("g1"), *disabled},
	}

	exporter := exportSQLite.New(dir)
	require.NoError(t, exporter.Export(snapshot))

	// A second export replaces the file instead of failing on existing tables.
	require.NoError(t, exporter.Export(snapshot))

	conn, err := sqlite.OpenConn(filepath.Join(dir, exportSQLite.Filename), sqlite.OpenReadOnly)
	require.NoError(t, err)
	defer conn.Close()

	var count int64
	err = sqlitex.ExecuteTransient(conn, "SELECT COUNT(*) FROM activity_data", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt64(0)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), count)

	var name string
	err = sqlitex.ExecuteTransient(conn, "SELECT display_name FROM activity_data LIMIT 1", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			name = stmt.ColumnText(0)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "it's \"quoted\"", name)

	modules := map[string]string{}
	err = sqlitex.ExecuteTransient(conn, "SELECT guild_id, enabled_modules FROM guild_settings", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			modules[stmt.ColumnText(0)] = stmt.ColumnText(1)
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "anilist,ai,game,anime_activity,waifu", modules["g1"])
	assert.Equal(t, "anilist,ai,anime_activity,waifu", modules["g2"])
}
