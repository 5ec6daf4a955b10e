package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/batchctl/internal/config"
)

func writeYAMLBatchFixture(t *testing.T, batchName, yamlBody string) string {
	t.Helper()
	root := t.TempDir()
	binDir := filepath.Join(root, "bin")
	logDir := filepath.Join(root, "log")
	pollDir := filepath.Join(root, "poll")
	lockDir := filepath.Join(root, "lock")
	for _, dir := range []string{binDir, logDir, pollDir, lockDir} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	require.NoError(t, os.WriteFile(filepath.Join(binDir, batchName+".yaml"), []byte(yamlBody), 0o644))

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

func TestBuildGraphProcFormat(t *testing.T) {
	cfgPath := writeBatchFixture(t, "nightly", "process_name,predecessors\nextract,\nload,extract\n")
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	g, err := buildGraph(cfg, inputFormatProc)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
}

func TestBuildGraphYAMLFormat(t *testing.T) {
	cfgPath := writeYAMLBatchFixture(t, "nightly", `
batch_name: nightly
processes:
  extract:
    dependents:
      load:
        milestone: true
`)
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	g, err := buildGraph(cfg, inputFormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
	node := g.GetNode("load")
	require.NotNil(t, node)
	assert.True(t, node.IsMilestone)
}

func TestBuildGraphUnknownFormat(t *testing.T) {
	cfgPath := writeBatchFixture(t, "nightly", "process_name,predecessors\nextract,\n")
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)

	_, err = buildGraph(cfg, "xml")
	assert.Error(t, err)
}
