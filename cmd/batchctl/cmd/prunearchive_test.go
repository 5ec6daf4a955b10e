package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneArchiveCommandStructure(t *testing.T) {
	assert.NotNil(t, pruneArchiveCmd)
	assert.Equal(t, "prune-archive <config-file>", pruneArchiveCmd.Use)
	assert.NotNil(t, pruneArchiveCmd.RunE)
}

func TestPruneArchiveIsAddedToRoot(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "prune-archive" {
			found = true
		}
	}
	assert.True(t, found, "prune-archive command should be added to root command")
}

func TestRunPruneArchiveRemovesOldDirectories(t *testing.T) {
	cfgPath := writeBatchFixture(t, "nightly", "process_name,predecessors\nextract,\n")
	cfg, err := loadFixtureConfig(t, cfgPath)
	require.NoError(t, err)

	archiveRoot := filepath.Join(cfg.LogFileDirectory, "archive")
	for _, name := range []string{"20260101000000.1", "20260102000000.1", "20260103000000.1"} {
		require.NoError(t, os.MkdirAll(filepath.Join(archiveRoot, name), 0o755))
	}

	cfgBody, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, append(cfgBody, []byte("MaxArchivedLogs=1\n")...), 0o644))

	var buf bytes.Buffer
	pruneArchiveCmd.SetOut(&buf)

	err = runPruneArchive(pruneArchiveCmd, []string{cfgPath})
	require.NoError(t, err)

	entries, err := os.ReadDir(archiveRoot)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "20260103000000.1", entries[0].Name())
}
