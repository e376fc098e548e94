// Package logging builds the zap loggers shared by every component.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger writing to stderr and, when outputDir is not empty, to
// a per-run log file under <outputDir>/logs. The log file path is returned so
// the caller can report it at the end of the run.
func New(level string, outputDir string) (*zap.Logger, string, error) {
	cfg := zap.NewDevelopmentConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level.SetLevel(zap.InfoLevel)
	}
	cfg.OutputPaths = []string{"stderr"}

	logFile := ""
	if outputDir != "" {
		logDir := filepath.Join(outputDir, "logs")
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, "", fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile = filepath.Join(logDir, fmt.Sprintf("inventory_%s.log", time.Now().Format("20060102_150405")))
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, "", err
	}
	return logger, logFile, nil
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *zap.Logger {
	return zap.New(zapcore.NewNopCore())
}
