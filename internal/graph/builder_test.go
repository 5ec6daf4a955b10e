package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/batchctl/internal/jobdef"
	"github.com/dbsmedya/batchctl/internal/proclist"
)

func TestBuildFromProcessList(t *testing.T) {
	list := &proclist.List{
		Processes: []proclist.Process{
			{Name: "extract"},
			{Name: "transform", Predecessors: []string{"extract"}},
			{Name: "load", Predecessors: []string{"transform"}},
		},
	}

	g, err := BuildFromProcessList(list)
	require.NoError(t, err)

	order, err := g.LaunchOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"extract", "transform", "load"}, order)
}

func TestBuildFromProcessListUndefinedPredecessor(t *testing.T) {
	list := &proclist.List{
		Processes: []proclist.Process{
			{Name: "load", Predecessors: []string{"nonexistent"}},
		},
	}

	_, err := BuildFromProcessList(list)
	require.Error(t, err)
	var undefErr *UndefinedPredecessorError
	assert.ErrorAs(t, err, &undefErr)
}

func TestBuildFromJobDef(t *testing.T) {
	doc := &jobdef.Document{
		BatchName: "nightly",
		Processes: map[string]jobdef.ProcessNode{
			"extract": {
				Dependents: map[string]jobdef.ProcessNode{
					"load": {Milestone: true},
				},
			},
		},
	}

	g, err := BuildFromJobDef(doc)
	require.NoError(t, err)
	assert.True(t, g.GetNode("load").IsMilestone)

	order, err := g.LaunchOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"extract", "load"}, order)
}
