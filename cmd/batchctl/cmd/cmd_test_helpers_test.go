package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/batchctl/internal/config"
)

// writeBatchFixture writes a minimal config file and matching .proc file
// under a fresh temp directory tree, returning the config file path.
func writeBatchFixture(t *testing.T, batchName, procBody string) string {
	t.Helper()
	root := t.TempDir()
	binDir := filepath.Join(root, "bin")
	logDir := filepath.Join(root, "log")
	pollDir := filepath.Join(root, "poll")
	lockDir := filepath.Join(root, "lock")
	for _, dir := range []string{binDir, logDir, pollDir, lockDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	require.NoError(t, os.WriteFile(filepath.Join(binDir, batchName+".proc"), []byte(procBody), 0o644))

	cfgPath := filepath.Join(root, "batch.cfg")
	cfgBody := "ApplicationName=etl\n" +
		"BatchName=" + batchName + "\n" +
		"BinFileDirectory=" + binDir + "\n" +
		"LogFileDirectory=" + logDir + "\n" +
		"PollFileDirectory=" + pollDir + "\n" +
		"BfLockFileDirectory=" + lockDir + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgBody), 0o644))

	return cfgPath
}

func loadFixtureConfig(t *testing.T, path string) (*config.Config, error) {
	t.Helper()
	return config.Load(path)
}
