package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Success(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, videoFilename), []byte("not really mp4 bytes"), 0o644))

	artifact, err := Validate(dir, nil)
	require.NoError(t, err)
	assert.Greater(t, artifact.SizeBytes, int64(0))
}

func TestValidate_Missing(t *testing.T) {
	dir := t.TempDir()

	_, err := Validate(dir, nil)
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, ReasonMissing, ve.Reason)
}

func TestValidate_Empty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, videoFilename), nil, 0o644))

	_, err := Validate(dir, nil)
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, ReasonEmpty, ve.Reason)
}
