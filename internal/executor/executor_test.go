package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
}

func waitUntilDone(t *testing.T, h *Handle) (succeeded bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		running, ok, err := h.Poll()
		require.NoError(t, err)
		if !running {
			return ok
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("process did not finish in time")
	return false
}

func TestLaunchRealProcessSucceeds(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "extract", "exit 0")

	logPath := filepath.Join(t.TempDir(), "extract.log")
	h, err := Launch(context.Background(), Real, dir, "extract", "config.cfg", logPath, nil)
	require.NoError(t, err)
	assert.Greater(t, h.PID(), 0)

	assert.True(t, waitUntilDone(t, h))
}

func TestLaunchRealProcessFails(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "load", "exit 1")

	logPath := filepath.Join(t.TempDir(), "load.log")
	h, err := Launch(context.Background(), Real, dir, "load", "config.cfg", logPath, nil)
	require.NoError(t, err)

	assert.False(t, waitUntilDone(t, h))
}

func TestLaunchPassesConfigFileArgumentAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "check", `[ "$1" = "config.cfg" ] && [ "$BatchName" = "nightly" ] && exit 0 || exit 1`)

	logPath := filepath.Join(t.TempDir(), "check.log")
	h, err := Launch(context.Background(), Real, dir, "check", "config.cfg", logPath, []string{"BatchName=nightly"})
	require.NoError(t, err)

	assert.True(t, waitUntilDone(t, h))
}

func TestAnomalousExitCodeRecoveredFromLogTail(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "flaky", `echo "result:0"; kill -9 $$`)

	logPath := filepath.Join(t.TempDir(), "flaky.log")
	h, err := Launch(context.Background(), Real, dir, "flaky", "config.cfg", logPath, nil)
	require.NoError(t, err)

	assert.True(t, waitUntilDone(t, h))
}

func TestAnomalousExitCodeRecoveredAsFailure(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "flaky", `echo "result:9"; kill -9 $$`)

	logPath := filepath.Join(t.TempDir(), "flaky.log")
	h, err := Launch(context.Background(), Real, dir, "flaky", "config.cfg", logPath, nil)
	require.NoError(t, err)

	assert.False(t, waitUntilDone(t, h))
}

func TestMilestoneCompletesOnSecondPoll(t *testing.T) {
	h, err := Launch(context.Background(), Milestone, "", "checkpoint", "", "", nil)
	require.NoError(t, err)

	running, _, err := h.Poll()
	require.NoError(t, err)
	assert.True(t, running)

	running, ok, err := h.Poll()
	require.NoError(t, err)
	assert.False(t, running)
	assert.True(t, ok)
}

func TestTestModeCompletesOnSecondPoll(t *testing.T) {
	h, err := Launch(context.Background(), TestMode, "", "simulated", "", "", nil)
	require.NoError(t, err)

	_, _, err = h.Poll()
	require.NoError(t, err)
	running, ok, err := h.Poll()
	require.NoError(t, err)
	assert.False(t, running)
	assert.True(t, ok)
}

func TestRecoverExitCodeMalformedTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, os.WriteFile(path, []byte("no colon here"), 0o644))

	_, err := recoverExitCode(path)
	assert.Error(t, err)
}
