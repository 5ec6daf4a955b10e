package jobdef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidDocument(t *testing.T) {
	doc := &Document{
		BatchName: "nightly",
		Processes: map[string]ProcessNode{
			"extract": {},
			"load":    {Predecessors: []string{"extract"}},
		},
	}

	assert.NoError(t, doc.Validate())
}

func TestMissingBatchName(t *testing.T) {
	doc := &Document{
		Processes: map[string]ProcessNode{"extract": {}},
	}

	err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_name")
}

func TestNoProcesses(t *testing.T) {
	doc := &Document{BatchName: "nightly"}

	err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one process")
}

func TestDuplicateProcessSurfacesAsValidationError(t *testing.T) {
	doc := &Document{
		BatchName: "nightly",
		Processes: map[string]ProcessNode{
			"extract": {
				Dependents: map[string]ProcessNode{
					"load": {},
				},
			},
			"load": {},
		},
	}

	err := doc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate process declaration: load")
}
