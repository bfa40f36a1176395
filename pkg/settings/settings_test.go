package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesSpecDefaults(t *testing.T) {
	s := Default()

	assert.Equal(t, 2, s.Animation.DefaultSpeed)
	assert.Equal(t, 1, s.Animation.MinSpeed)
	assert.Equal(t, 100, s.Animation.MaxSpeed)
	assert.Equal(t, 30, s.Recording.FPS)
	assert.Equal(t, 720, s.Recording.Width)
	assert.Equal(t, 1280, s.Recording.Height)
	assert.Equal(t, 1500.0, s.Memory.WarningThresholdMB)
	assert.Equal(t, 2000.0, s.Memory.CriticalThresholdMB)
	assert.Equal(t, 1, s.Orchestrator.MaxConcurrent)
	assert.Equal(t, 19, s.Orchestrator.BufferSeconds)
}

func TestLoad_JSONOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"orchestrator":{"max_concurrent":4}}`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Orchestrator.MaxConcurrent)
	// Untouched fields keep their defaults.
	assert.Equal(t, 2, s.Animation.DefaultSpeed)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("animation:\n  default_speed: 5\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, s.Animation.DefaultSpeed)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
