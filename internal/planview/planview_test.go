package planview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/batchctl/internal/graph"
)

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()
	g.AddNode("extract", nil)
	g.AddNode("transform", &graph.Node{IsMilestone: true})
	g.AddNode("load", nil)
	g.AddEdge("extract", "transform")
	g.AddEdge("transform", "load")
	return g
}

func TestLevelsGroupsByDependencyDepth(t *testing.T) {
	g := buildGraph(t)
	levels, err := Levels(g)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, []string{"extract"}, levels[0])
	assert.Equal(t, []string{"transform"}, levels[1])
	assert.Equal(t, []string{"load"}, levels[2])
}

func TestLevelsGroupsIndependentProcessesTogether(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	levels, err := Levels(g)
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, levels[0])
}

func TestRenderProducesNonEmptyPlan(t *testing.T) {
	g := buildGraph(t)
	out, err := Render(g)
	require.NoError(t, err)
	assert.Contains(t, out, "extract")
	assert.Contains(t, out, "load")
	assert.True(t, strings.Count(out, "+") > 0)
}

func TestRenderPropagatesCycleError(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	_, err := Render(g)
	assert.Error(t, err)
}
