package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInitializesWaiting(t *testing.T) {
	s := New([]string{"extract", "transform", "load"})

	assert.Equal(t, 3, s.Len())
	rec := s.Get("extract")
	assert.Equal(t, Waiting, rec.Status)
	assert.Equal(t, 1, rec.RunNumber)
	assert.Equal(t, 0, rec.NaturalOrder)
	assert.Empty(t, rec.StartTime)
}

func TestInOrderPreservesNaturalOrder(t *testing.T) {
	s := New([]string{"extract", "transform", "load"})

	var names []string
	for _, r := range s.InOrder() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"extract", "transform", "load"}, names)
}

func TestAnyFailed(t *testing.T) {
	s := New([]string{"extract", "load"})
	assert.False(t, s.AnyFailed())

	s.Get("extract").Status = Failed
	assert.True(t, s.AnyFailed())
}

func TestAllTerminal(t *testing.T) {
	s := New([]string{"extract", "load"})
	assert.False(t, s.AllTerminal())

	s.Get("extract").Status = Successful
	s.Get("load").Status = Failed
	assert.True(t, s.AllTerminal())
}

func TestRunningCount(t *testing.T) {
	s := New([]string{"extract", "load"})
	s.Get("extract").Status = Running
	assert.Equal(t, 1, s.RunningCount())
}

func TestSetReplacesRecord(t *testing.T) {
	s := New([]string{"extract"})
	s.Set("extract", &Record{Name: "extract", Status: Successful, RunNumber: 2})

	assert.Equal(t, Successful, s.Get("extract").Status)
	assert.Equal(t, 2, s.Get("extract").RunNumber)
}
