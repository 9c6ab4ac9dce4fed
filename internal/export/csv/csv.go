package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ValgulNecron/kasuki/internal/export/types"
)

const (
	ActivitiesFile = "activities.csv"
	SettingsFile   = "guild_settings.csv"
)

var (
	activityHeader = []string{
		"subject_id", "owner_id", "fire_at", "notify_target", "episode", "display_name", "delay_seconds", "image",
	}
	settingHeader = []string{"guild_id", "language", "activity_webhook", "enabled_modules"}
)

// Exporter handles exporting a snapshot to csv files.
type Exporter struct {
	outDir string
}

// New creates a new csv exporter instance.
func New(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

// Export writes activities and guild settings to separate csv files.
func (e *Exporter) Export(snapshot *types.Snapshot) error {
	activities := make([][]string, 0, len(snapshot.Activities))
	for _, a := range snapshot.Activities {
		activities = append(activities, []string{
			a.SubjectID,
			a.OwnerID,
			strconv.FormatInt(a.FireAt, 10),
			a.NotifyTarget,
			a.Episode,
			a.DisplayName,
			strconv.FormatInt(a.DelaySeconds, 10),
			a.Image,
		})
	}

	if err := e.writeFile(ActivitiesFile, activityHeader, activities); err != nil {
		return fmt.Errorf("failed to export activities: %w", err)
	}

	settings := make([][]string, 0, len(snapshot.Settings))
	for i := range snapshot.Settings {
		s := &snapshot.Settings[i]
		settings = append(settings, []string{
			s.GuildID,
			s.Language,
			s.ActivityWebhook,
			strings.Join(types.EnabledModules(s), ";"),
		})
	}

	if err := e.writeFile(SettingsFile, settingHeader, settings); err != nil {
		return fmt.Errorf("failed to export guild settings: %w", err)
	}

	return nil
}

// writeFile replaces filename with the header and rows.
func (e *Exporter) writeFile(filename string, header []string, rows [][]string) error {
	file, err := os.Create(filepath.Join(e.outDir, filename))
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	return nil
}
