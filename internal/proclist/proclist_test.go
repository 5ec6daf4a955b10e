package proclist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProcFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.proc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBasic(t *testing.T) {
	path := writeProcFile(t, `process_name,predecessors
extract,
transform,extract
load,transform
`)

	list, err := Load(path)
	require.NoError(t, err)
	require.Len(t, list.Processes, 3)
	assert.Equal(t, "extract", list.Processes[0].Name)
	assert.Empty(t, list.Processes[0].Predecessors)
	assert.Equal(t, []string{"extract"}, list.Processes[1].Predecessors)
}

func TestLoadDescriptiveCommentDiscarded(t *testing.T) {
	path := writeProcFile(t, `process_name,predecessors
#-- this is descriptive and ignored entirely
extract,
`)

	list, err := Load(path)
	require.NoError(t, err)
	require.Len(t, list.Processes, 1)
	assert.Empty(t, list.CommentedOut)
}

func TestLoadCommentedOutProcessPruned(t *testing.T) {
	path := writeProcFile(t, `process_name,predecessors
#stage_one,
stage_two,stage_one
`)

	list, err := Load(path)
	require.NoError(t, err)
	require.Len(t, list.Processes, 1)
	assert.True(t, list.CommentedOut["stage_one"])
	assert.Empty(t, list.Processes[0].Predecessors)
}

func TestLoadCommentedOutButStillActiveKept(t *testing.T) {
	path := writeProcFile(t, `process_name,predecessors
#stage_one,
stage_one,
stage_two,stage_one
`)

	list, err := Load(path)
	require.NoError(t, err)
	require.Len(t, list.Processes, 2)
	assert.Equal(t, []string{"stage_one"}, list.Processes[1].Predecessors)
}

func TestLoadDuplicateProcess(t *testing.T) {
	path := writeProcFile(t, `process_name,predecessors
extract,
extract,
`)

	_, err := Load(path)
	require.Error(t, err)
	var dupErr *DuplicateProcessError
	assert.ErrorAs(t, err, &dupErr)
}

func TestLoadEmptyList(t *testing.T) {
	path := writeProcFile(t, `process_name,predecessors
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyList))
}

func TestLoadUnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.proc"))
	require.Error(t, err)
}

func TestLoadMultiplePredecessors(t *testing.T) {
	path := writeProcFile(t, `process_name,predecessors
extract,
stage,extract other_stage
other_stage,
`)

	list, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"extract", "other_stage"}, list.Processes[1].Predecessors)
}
