// Package signalmon polls the poll directory for the engine's operator
// control files, per §4.12. Unlike the teacher's OS-signal handler, this
// domain's signals are filesystem flags dropped by an operator or cron
// job; the monitor is polled once per scheduler tick rather than delivered
// asynchronously.
package signalmon

import (
	"os"
	"path/filepath"
)

const (
	pauseFlag = "PAUSE.flg"
	stopFlag  = "STOP.flg"
	testFlag  = "TEST.flg"
	retryFlag = "RETRY.flg"
)

// State is a single snapshot of the flag files, taken once per tick.
type State struct {
	Paused         bool
	Stopped        bool
	RetryRequested bool
}

// Monitor polls a single poll directory and tracks pause/stop edges so the
// caller can log transitions exactly once, per §4.12.
type Monitor struct {
	dir string

	wasPaused  bool
	wasStopped bool
}

// New returns a Monitor watching pollDir.
func New(pollDir string) *Monitor {
	return &Monitor{dir: pollDir}
}

func (m *Monitor) flagPath(name string) string {
	return filepath.Join(m.dir, name)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// TestModeRequested reports whether TEST.flg is present. Per §4.12 this is
// only meaningful at startup — the engine calls it once before entering the
// loop.
func (m *Monitor) TestModeRequested() bool {
	return exists(m.flagPath(testFlag))
}

// Poll takes one snapshot of PAUSE.flg/STOP.flg, and consumes RETRY.flg
// (reporting it in state.RetryRequested and deleting the flag; the caller
// clears its audit-disabled latch). The returned
// pauseEntered/pauseExited/stopEntered bools report edges for the caller to
// log exactly once, per §4.12's edge-triggered requirement.
func (m *Monitor) Poll() (state State, pauseEntered, pauseExited, stopEntered bool) {
	paused := exists(m.flagPath(pauseFlag))
	stopped := exists(m.flagPath(stopFlag))

	pauseEntered = paused && !m.wasPaused
	pauseExited = !paused && m.wasPaused
	stopEntered = stopped && !m.wasStopped

	m.wasPaused = paused
	m.wasStopped = stopped

	retryRequested := false
	retryPath := m.flagPath(retryFlag)
	if exists(retryPath) {
		retryRequested = true
		_ = os.Remove(retryPath)
	}

	return State{Paused: paused, Stopped: stopped, RetryRequested: retryRequested}, pauseEntered, pauseExited, stopEntered
}
