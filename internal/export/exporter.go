package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/ValgulNecron/kasuki/internal/database/types"
	"github.com/ValgulNecron/kasuki/internal/export/csv"
	"github.com/ValgulNecron/kasuki/internal/export/sqlite"
	exportTypes "github.com/ValgulNecron/kasuki/internal/export/types"
	"github.com/bytedance/sonic"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format represents a supported export format.
type Format string

const (
	FormatSQLite Format = "sqlite"
	FormatCSV    Format = "csv"
)

const (
	// EngineVersion represents the version of the export engine.
	// This should be updated when making breaking changes to the export format.
	EngineVersion = "1.0.0"

	redactedToken = "redacted"
)

// webhookTokenPattern matches the secret part of a Discord webhook URL.
var webhookTokenPattern = regexp.MustCompile(`(/api/webhooks/\d+/)[^/?]+`)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatSQLite, FormatCSV:
		return Format(name), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// Config holds the configuration for exports.
type Config struct {
	Description    string `json:"description"`
	RedactWebhooks bool   `json:"redactWebhooks"`
}

// ActivityLister lists every tracked activity.
type ActivityLister interface {
	List(ctx context.Context) ([]types.ActivityRecord, error)
}

// SettingLister lists every stored guild setting.
type SettingLister interface {
	List(ctx context.Context) ([]types.GuildSetting, error)
}

// Exporter writes a backup of the activities and guild settings.
type Exporter struct {
	activities ActivityLister
	settings   SettingLister
	outDir     string
	config     *Config
	formats    []Format
	logger     *zap.Logger
}

// New creates a new exporter instance.
func New(
	activities ActivityLister, settings SettingLister, outDir string, config *Config, logger *zap.Logger, formats ...Format,
) *Exporter {
	return &Exporter{
		activities: activities,
		settings:   settings,
		outDir:     outDir,
		config:     config,
		formats:    formats,
		logger:     logger.Named("export"),
	}
}

// ExportAll exports all data in every configured format.
func (e *Exporter) ExportAll(ctx context.Context) error {
	if err := os.MkdirAll(e.outDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	snapshot, err := e.snapshot(ctx)
	if err != nil {
		return err
	}

	e.logger.Info("Exporting data",
		zap.Int("activities", len(snapshot.Activities)),
		zap.Int("settings", len(snapshot.Settings)),
		zap.Int("formats", len(e.formats)),
		zap.String("outDir", e.outDir))

	if err := e.writeManifest(snapshot); err != nil {
		return err
	}

	p := pool.New().WithErrors().WithContext(ctx)
	for _, format := range e.formats {
		p.Go(func(_ context.Context) error {
			if err := e.export(format, snapshot); err != nil {
				return fmt.Errorf("failed to export %s format: %w", format, err)
			}

			e.logger.Debug("Format written", zap.String("format", string(format)))

			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return err
	}

	e.logger.Info("Export completed", zap.String("outDir", e.outDir))

	return nil
}

// snapshot reads the data to export.
func (e *Exporter) snapshot(ctx context.Context) (*exportTypes.Snapshot, error) {
	activities, err := e.activities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get activities: %w", err)
	}

	settings, err := e.settings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	if e.config.RedactWebhooks {
		for i := range activities {
			activities[i].NotifyTarget = RedactWebhook(activities[i].NotifyTarget)
		}

		for i := range settings {
			settings[i].ActivityWebhook = RedactWebhook(settings[i].ActivityWebhook)
		}
	}

	return &exportTypes.Snapshot{Activities: activities, Settings: settings}, nil
}

// writeManifest saves the export configuration next to the data.
func (e *Exporter) writeManifest(snapshot *exportTypes.Snapshot) error {
	manifest := struct {
		*Config

		EngineVersion string    `json:"engineVersion"`
		ExportedAt    time.Time `json:"exportedAt"`
		Activities    int       `json:"activities"`
		Settings      int       `json:"settings"`
	}{
		Config:        e.config,
		EngineVersion: EngineVersion,
		ExportedAt:    time.Now().UTC(),
		Activities:    len(snapshot.Activities),
		Settings:      len(snapshot.Settings),
	}

	data, err := sonic.MarshalIndent(manifest, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal export config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(e.outDir, "export_config.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write export config: %w", err)
	}

	return nil
}

// export handles exporting data in the specified format.
func (e *Exporter) export(format Format, snapshot *exportTypes.Snapshot) error {
	var exporter interface {
		Export(snapshot *exportTypes.Snapshot) error
	}

	switch format {
	case FormatSQLite:
		exporter = sqlite.New(e.outDir)
	case FormatCSV:
		exporter = csv.New(e.outDir)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return exporter.Export(snapshot)
}

// RedactWebhook hides the token of a Discord webhook URL.
func RedactWebhook(url string) string {
	return webhookTokenPattern.ReplaceAllString(url, "${1}"+redactedToken)
}
