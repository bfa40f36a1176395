package execctl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobLogFiles_WriteStderrDoesNotCreateErrorLog(t *testing.T) {
	dir := t.TempDir()
	logs, err := openJobLogFiles(dir)
	require.NoError(t, err)
	defer logs.Close()

	logs.writeStderr("something went to stderr")

	_, err = os.Stat(filepath.Join(dir, "recorder-error.log"))
	assert.True(t, os.IsNotExist(err))
}

func TestJobLogFiles_WriteErrorLogCreatesFileOnNonzeroExit(t *testing.T) {
	dir := t.TempDir()
	logs, err := openJobLogFiles(dir)
	require.NoError(t, err)
	defer logs.Close()

	logs.writeStderr("boom")
	require.NoError(t, logs.writeErrorLog("boom\n"))

	data, err := os.ReadFile(filepath.Join(dir, "recorder-error.log"))
	require.NoError(t, err)
	assert.Equal(t, "boom\n", string(data))
}
