// Package logger holds the application's structured zap logger.
package logger

import (
	"go.uber.org/zap"
)

// ZapLogger wraps the process-wide *zap.Logger.
type ZapLogger struct {
	// Log is the underlying logger. It is a no-op logger until Init succeeds.
	Log *zap.Logger
}

// New returns a ZapLogger backed by a no-op logger.
func New() *ZapLogger {
	return &ZapLogger{Log: zap.NewNop()}
}

// Init replaces the no-op logger with a production JSON logger at the given level
// ("debug", "info", "warn", "error", ...).
func (l *ZapLogger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	l.Log = zl
	return nil
}
