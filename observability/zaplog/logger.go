// Package zaplog bridges core.Logger to go.uber.org/zap.
package zaplog

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/go-dispatch/dispatch/core"
)

// Logger adapts a *zap.Logger to the core.Logger interface.
type Logger struct {
	l *zap.Logger
}

var _ core.Logger = (*Logger)(nil)

// New wraps an existing zap logger.
func New(l *zap.Logger) *Logger {
	return &Logger{l: l}
}

// Setup builds a zap.Logger from level and format strings and wraps it.
// Level is one of debug/info/warn/error (default info); format is
// "json" or "console" (default console). The caller should defer
// Sync() on the returned zap logger.
func Setup(levelName, format string) (*Logger, *zap.Logger, error) {
	level := zap.NewAtomicLevel()
	switch strings.ToLower(levelName) {
	case "debug":
		level.SetLevel(zap.DebugLevel)
	case "info":
		level.SetLevel(zap.InfoLevel)
	case "warn", "warning":
		level.SetLevel(zap.WarnLevel)
	case "error":
		level.SetLevel(zap.ErrorLevel)
	default:
		level.SetLevel(zap.InfoLevel)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	if strings.ToLower(format) == "json" {
		cfg.Encoding = "json"
	} else {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zl, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return New(zl), zl, nil
}

func (z *Logger) Debug(msg string, fields ...core.Field) { z.l.Debug(msg, convert(fields)...) }
func (z *Logger) Info(msg string, fields ...core.Field)  { z.l.Info(msg, convert(fields)...) }
func (z *Logger) Warn(msg string, fields ...core.Field)  { z.l.Warn(msg, convert(fields)...) }
func (z *Logger) Error(msg string, fields ...core.Field) { z.l.Error(msg, convert(fields)...) }

func convert(fields []core.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
