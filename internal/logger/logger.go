// =============================================================================
// SAS7BDAT Converter - Logging Module
// =============================================================================
//
// This module builds the structured logger handed to the converter core.
// The core never configures logging itself; it only receives a logger.
//
// OUTPUT FORMATS:
//   - "console": human-readable development encoder on stderr
//   - "json":    production JSON encoder on stderr
//
// =============================================================================

package logger

import (
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured logging.
const (
	FieldRunID       = "run_id"
	FieldFormat      = "format"
	FieldSource      = "source"
	FieldDestination = "destination"
	FieldIndex       = "index"
	FieldError       = "error"
	FieldCount       = "count"
	FieldFailed      = "failed"
	FieldDurationMS  = "duration_ms"
	FieldWorkers     = "workers"
)

// New builds a sugared logger for the given level and format.
//
// PARAMETERS:
//   - level: "debug", "info", "warn" or "error" (case-insensitive).
//   - format: "console" or "json".
//
// RETURNS:
//   - The logger.
//   - An error if the level or format is unknown.
func New(level, format string) (*zap.SugaredLogger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	default:
		return nil, errors.Newf("unknown log format %q", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return zapLogger.Sugar(), nil
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, errors.Newf("unknown log level %q", level)
	}
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
