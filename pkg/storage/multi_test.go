package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiStorage_DispatchesFileScheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "route.gpx")
	require.NoError(t, os.WriteFile(path, []byte("route-data"), 0o644))

	m := NewMultiStorage(nil)
	rc, err := m.Get(context.Background(), "file://"+path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "route-data", string(data))
}

func TestMultiStorage_UnregisteredSchemeErrors(t *testing.T) {
	m := NewMultiStorage(nil)
	_, err := m.Get(context.Background(), "s3://bucket/key")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no storage backend"))
}

func TestMultiStorage_RegistersS3WhenProvided(t *testing.T) {
	m := NewMultiStorage(NewS3StorageWithClient(nil))
	_, ok := m.backends["s3"]
	assert.True(t, ok)
}
