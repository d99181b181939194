package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitializeWritesToFile(t *testing.T) {
	prev := L()
	t.Cleanup(func() { SetLogger(prev) })

	path := filepath.Join(t.TempDir(), "mua.log")
	require.NoError(t, Initialize(Config{Level: "debug", Format: "json", Output: path}))

	Info("budget computed", zap.Float64("uc", 62.92))
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"budget computed"`)
	assert.Contains(t, string(data), `"uc":62.92`)
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	logger, err := New(Config{Level: "chatty", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestSetLoggerNilInstallsNop(t *testing.T) {
	prev := L()
	t.Cleanup(func() { SetLogger(prev) })

	SetLogger(nil)
	require.NotNil(t, L())
	Warn("dropped")
}

func TestNamedScopesGlobalLogger(t *testing.T) {
	prev := L()
	t.Cleanup(func() { SetLogger(prev) })

	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))

	Named("engine").Debug("recomputed", zap.Int("components", 3))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "engine", entries[0].LoggerName)
	assert.Equal(t, int64(3), entries[0].ContextMap()["components"])
}
