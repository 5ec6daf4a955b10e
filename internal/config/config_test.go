package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.cfg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRecognizedKeys(t *testing.T) {
	path := writeConfig(t, `
ApplicationName=etl
BatchName="nightly_load"
JobPollInterval=5
MaxParallelJobs=4
PerformAuditTableUpdates=Y
AuditTableCriticality=ERROR
SendFailureMessage=N
AlertEMailList=ops@example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "etl", cfg.ApplicationName)
	assert.Equal(t, "nightly_load", cfg.BatchName)
	assert.Equal(t, 5, cfg.JobPollInterval)
	assert.Equal(t, 4, cfg.MaxParallelJobs)
	assert.True(t, cfg.PerformAuditTableUpdates)
	assert.Equal(t, "ERROR", cfg.AuditTableCriticality)
	assert.False(t, cfg.SendFailureMessage)
	assert.Equal(t, "ops@example.com", cfg.AlertEMailList)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `BatchName=nightly`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.JobPollInterval)
	assert.Equal(t, 0, cfg.MaxParallelJobs)
	assert.Equal(t, 3, cfg.MaxArchivedLogs)
	assert.Equal(t, "WARN", cfg.AuditTableCriticality)
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
BatchName=nightly
SomeFutureKey=whatever
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nightly", cfg.BatchName)
}

func TestLoadIgnoresCommentsAndBlankLines(t *testing.T) {
	path := writeConfig(t, `
# this is a comment

BatchName=nightly
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nightly", cfg.BatchName)
}

func TestLoadInvalidInteger(t *testing.T) {
	path := writeConfig(t, `JobPollInterval=not-a-number`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JobPollInterval")
}

func TestLoadInvalidYesNo(t *testing.T) {
	path := writeConfig(t, `PerformAuditTableUpdates=maybe`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PerformAuditTableUpdates")
}

func TestLoadUnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cfg"))
	require.Error(t, err)
}

func TestSplitKeyValueStripsQuotes(t *testing.T) {
	key, value, ok := splitKeyValue(`BatchName="nightly run"`)
	require.True(t, ok)
	assert.Equal(t, "BatchName", key)
	assert.Equal(t, "nightly run", value)
}

func TestSplitKeyValueNoEquals(t *testing.T) {
	_, _, ok := splitKeyValue("not a key value line")
	assert.False(t, ok)
}
