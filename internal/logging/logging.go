// Package logging constructs the zap.Logger used for the per-commit INFO
// lines spec.md §7 requires when the parse orchestrator skips a commit.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger writing to w. jsonMode selects a JSON encoder
// (matching the CLI's --json output contract); otherwise a human console
// encoder is used. debug raises the level to Debug; otherwise Info.
func New(w zapcore.WriteSyncer, jsonMode, debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if jsonMode {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, w, level)
	return zap.New(core)
}

// Discard returns a logger that drops everything, for call sites (like
// tests) that don't care about the skip/INFO trail.
func Discard() *zap.Logger {
	return zap.NewNop()
}
