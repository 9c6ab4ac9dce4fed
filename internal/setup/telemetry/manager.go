package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/ValgulNecron/kasuki/internal/setup/config"
	"github.com/ValgulNecron/kasuki/internal/setup/telemetry/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceType represents the type of service being initialized.
type ServiceType int

const (
	ServiceBot ServiceType = iota
	ServiceDB
)

// String returns the component name used for log directories.
func (s ServiceType) String() string {
	switch s {
	case ServiceBot:
		return "bot"
	case ServiceDB:
		return "db"
	default:
		return "unknown"
	}
}

// Manager handles the creation of per-session log directories and loggers.
type Manager struct {
	instanceID        string
	componentName     string
	currentSessionDir string
	logDir            string
	level             string
	maxLogsToKeep     int
	maxLogLines       int
	console           bool

	mu       sync.Mutex
	rotators []*logger.Rotator
}

// NewManager creates a new Manager instance.
func NewManager(serviceType ServiceType, logDir string, debugCfg *config.Debug, console bool) *Manager {
	return &Manager{
		instanceID:    uuid.New().String(),
		componentName: serviceType.String(),
		logDir:        logDir,
		level:         debugCfg.LogLevel,
		maxLogsToKeep: debugCfg.MaxLogsToKeep,
		maxLogLines:   debugCfg.MaxLogLines,
		console:       console,
	}
}

// GetLoggers initializes the main and database loggers.
func (lm *Manager) GetLoggers() (*zap.Logger, *zap.Logger, error) {
	if err := lm.setupLogDirectories(); err != nil {
		return nil, nil, err
	}

	mainLogger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, "main.log"), lm.console)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize main logger: %w", err)
	}

	dbLogger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, "database.log"), false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database logger: %w", err)
	}

	mainLogger = mainLogger.With(
		zap.String("component", lm.componentName),
		zap.String("instanceID", lm.instanceID),
	)

	return mainLogger, dbLogger, nil
}

// GetComponentLogger creates a logger writing to its own file in the session directory.
func (lm *Manager) GetComponentLogger(name string) *zap.Logger {
	sessionDir := lm.getOrCreateSessionDir()

	l, err := lm.initLogger(filepath.Join(sessionDir, name+".log"), false)
	if err != nil {
		return zap.NewNop()
	}

	return l
}

// GetCurrentSessionDir returns the current session directory.
func (lm *Manager) GetCurrentSessionDir() string {
	return lm.getOrCreateSessionDir()
}

// Close closes every log file opened by the manager.
func (lm *Manager) Close() {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	for _, r := range lm.rotators {
		_ = r.Close()
	}

	lm.rotators = nil
}

// setupLogDirectories ensures the base directory exists, removes old sessions
// and creates the directory for this session.
func (lm *Manager) setupLogDirectories() error {
	if err := os.MkdirAll(lm.logDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if err := lm.rotateLogSessions(); err != nil {
		return fmt.Errorf("failed to rotate log sessions: %w", err)
	}

	lm.currentSessionDir = filepath.Join(lm.logDir, time.Now().Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(lm.currentSessionDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	return nil
}

// getOrCreateSessionDir falls back to the base directory if no session exists.
func (lm *Manager) getOrCreateSessionDir() string {
	if lm.currentSessionDir != "" {
		return lm.currentSessionDir
	}

	sessionDir := filepath.Join(lm.logDir, time.Now().Format("2006-01-02_15-04-05"))
	if err := os.MkdirAll(sessionDir, os.ModePerm); err != nil {
		return lm.logDir
	}

	lm.currentSessionDir = sessionDir

	return sessionDir
}

// initLogger creates a zap logger writing to path and optionally stderr.
func (lm *Manager) initLogger(path string, console bool) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(lm.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	rotator, err := logger.NewRotator(path, lm.maxLogLines)
	if err != nil {
		return nil, err
	}

	lm.mu.Lock()
	lm.rotators = append(lm.rotators, rotator)
	lm.mu.Unlock()

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(rotator), zapLevel),
	}

	if console {
		consoleConfig := encoderConfig
		consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleConfig), zapcore.Lock(os.Stderr), zapLevel,
		))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// rotateLogSessions keeps only the most recent maxLogsToKeep session directories.
func (lm *Manager) rotateLogSessions() error {
	sessions, err := filepath.Glob(filepath.Join(lm.logDir, "*"))
	if err != nil {
		return err
	}

	if lm.maxLogsToKeep <= 0 || len(sessions) < lm.maxLogsToKeep {
		return nil
	}

	// Session names are timestamps, so lexical order is chronological.
	sort.Strings(sessions)

	toDelete := len(sessions) - lm.maxLogsToKeep + 1
	for i := range toDelete {
		if err := os.RemoveAll(sessions[i]); err != nil {
			return err
		}
	}

	return nil
}
