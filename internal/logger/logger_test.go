package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit_Level(t *testing.T) {
	l, err := Init("warn", "")
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	assert.Same(t, l, zap.L())
}

func TestInit_UnknownLevelFallsBackToInfo(t *testing.T) {
	l, err := Init("chatty", "")
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normalizer.log")
	l, err := Init("info", path)
	require.NoError(t, err)

	l.Info("Logger: file sink ready")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file sink ready")
}
