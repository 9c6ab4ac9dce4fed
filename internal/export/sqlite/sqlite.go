package sqlite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ValgulNecron/kasuki/internal/export/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Filename is the name of the exported database.
const Filename = "kasuki_export.db"

const batchSize = 1000

var schema = []string{
	`CREATE TABLE activity_data (
		subject_id TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		fire_at INTEGER NOT NULL,
		notify_target TEXT NOT NULL,
		episode TEXT NOT NULL,
		display_name TEXT NOT NULL,
		delay_seconds INTEGER NOT NULL,
		image TEXT NOT NULL,
		PRIMARY KEY (subject_id, owner_id)
	)`,
	`CREATE TABLE guild_settings (
		guild_id TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		activity_webhook TEXT NOT NULL,
		enabled_modules TEXT NOT NULL
	)`,
}

// Exporter handles exporting a snapshot to a standalone SQLite database.
type Exporter struct {
	outDir string
}

// New creates a new SQLite exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes activities and guild settings to a fresh database.
func (e *Exporter) Export(snapshot *types.Snapshot) error {
	path := filepath.Join(e.outDir, Filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing file %s: %w", Filename, err)
	}

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer conn.Close()

	for _, ddl := range schema {
		if err := sqlitex.Execute(conn, ddl, nil); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	activities := make([][]any, 0, len(snapshot.Activities))
	for _, a := range snapshot.Activities {
		activities = append(activities, []any{
			a.SubjectID, a.OwnerID, a.FireAt, a.NotifyTarget, a.Episode, a.DisplayName, a.DelaySeconds, a.Image,
		})
	}

	if err := insertBatches(conn, "INSERT INTO activity_data VALUES (?, ?, ?, ?, ?, ?, ?, ?)", activities); err != nil {
		return fmt.Errorf("failed to export activities: %w", err)
	}

	settings := make([][]any, 0, len(snapshot.Settings))
	for i := range snapshot.Settings {
		s := &snapshot.Settings[i]
		settings = append(settings, []any{
			s.GuildID, s.Language, s.ActivityWebhook, strings.Join(types.EnabledModules(s), ","),
		})
	}

	if err := insertBatches(conn, "INSERT INTO guild_settings VALUES (?, ?, ?, ?)", settings); err != nil {
		return fmt.Errorf("failed to export guild settings: %w", err)
	}

	return nil
}

// insertBatches inserts rows in transactions of batchSize rows.
func insertBatches(conn *sqlite.Conn, query string, rows [][]any) error {
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))

		if err := insertBatch(conn, query, rows[i:end]); err != nil {
			return err
		}
	}

	return nil
}

func insertBatch(conn *sqlite.Conn, query string, rows [][]any) (err error) {
	defer sqlitex.Save(conn)(&err)

	for _, args := range rows {
		if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return nil
}
