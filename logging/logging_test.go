package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miosa/vscroll/config"
)

func TestNew_Disabled(t *testing.T) {
	l, err := New(config.LogConfig{Enabled: false}, t.TempDir(), false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))
}

func TestNew_WritesToProfileFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(config.LogConfig{Enabled: true, Level: "warn", File: "logs/app.log"}, dir, false)
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept")
	_ = l.Sync()

	data, err := os.ReadFile(filepath.Join(dir, "logs", "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
	assert.NotContains(t, string(data), "dropped")
}

func TestNew_VerboseForcesDebug(t *testing.T) {
	l, err := New(config.LogConfig{Enabled: true, Level: "error"}, t.TempDir(), true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Enabled: true, Level: "loud"}, t.TempDir(), false)
	require.Error(t, err)
}
