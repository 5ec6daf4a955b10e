package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbsmedya/batchctl/internal/status"
)

func TestRenderIncludesEveryProcessInOrder(t *testing.T) {
	store := status.New([]string{"extract", "transform", "load"})
	store.Get("extract").Status = status.Successful
	store.Get("transform").Status = status.Running
	store.Get("transform").PID = 4242

	out := Render(store)
	assert.Contains(t, out, "extract")
	assert.Contains(t, out, "transform")
	assert.Contains(t, out, "load")
	assert.Contains(t, out, "4242")
}

func TestSummaryCountsEachStatus(t *testing.T) {
	store := status.New([]string{"a", "b", "c"})
	store.Get("a").Status = status.Successful
	store.Get("b").Status = status.Failed

	summary := Summary(store)
	assert.Contains(t, summary, "successful=1")
	assert.Contains(t, summary, "failed=1")
	assert.Contains(t, summary, "waiting=1")
	assert.Contains(t, summary, "running=0")
}
