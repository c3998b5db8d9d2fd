package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type bufSyncer struct{ bytes.Buffer }

func (b *bufSyncer) Sync() error { return nil }

func TestNewJSONModeEmitsStructuredLine(t *testing.T) {
	var buf bufSyncer
	logger := New(zapcore.AddSync(&buf), true, false)
	logger.Info("skipped commit", zapcore.Field{Key: "oid", Type: zapcore.StringType, String: "abc123"})
	require.Contains(t, buf.String(), "skipped commit")
	require.Contains(t, buf.String(), "abc123")
}

func TestNewDebugRaisesLevel(t *testing.T) {
	var buf bufSyncer
	logger := New(zapcore.AddSync(&buf), true, true)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestDiscardDropsOutput(t *testing.T) {
	logger := Discard()
	require.NotNil(t, logger)
	require.False(t, logger.Core().Enabled(zapcore.FatalLevel))
}
