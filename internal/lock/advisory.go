// Package lock provides filesystem advisory locking for the batch engine,
// per §4.10/§4.11. The API shape (AcquireLock/ReleaseLock/TryAcquire/
// WithLock) mirrors the teacher's MySQL GET_LOCK-based AdvisoryLock; the
// backend here is a real file lock instead, since there is no database
// connection to hang an advisory lock off of.
package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout is returned when lock acquisition times out because
// another instance is holding the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Common timeout values for lock acquisition (in seconds).
const (
	TimeoutImmediate = 0
	TimeoutShort     = 1
	TimeoutMedium    = 10
	TimeoutLong      = 60
)

// pollInterval is how often AcquireLock retries TryLock while waiting.
const pollInterval = 50 * time.Millisecond

// AdvisoryLock represents an exclusive advisory lock backed by a file on
// disk. The file is created if it does not exist; the OS-level flock is
// released automatically if the process dies, matching the teacher's
// reliance on MySQL's connection-close release.
type AdvisoryLock struct {
	flock *flock.Flock
	path  string
}

// NewAdvisoryLock creates a new advisory lock bound to the given file path.
// The lock is not acquired until AcquireLock is called.
func NewAdvisoryLock(path string) *AdvisoryLock {
	return &AdvisoryLock{flock: flock.New(path), path: path}
}

// AcquireLock attempts to acquire the lock, retrying every pollInterval
// until timeoutSeconds elapses. timeoutSeconds of TimeoutImmediate (0)
// tries exactly once. Returns true if acquired, false on timeout.
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.flock.Locked() {
		return true, nil
	}

	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)

	for {
		locked, err := a.flock.TryLock()
		if err != nil {
			return false, fmt.Errorf("failed to acquire lock %q: %w", a.path, err)
		}
		if locked {
			return true, nil
		}
		if timeoutSeconds <= 0 || time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// ReleaseLock releases the advisory lock. Returns true if this instance
// held the lock and released it, false if it was not held.
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if !a.flock.Locked() {
		return false, nil
	}
	if err := a.flock.Unlock(); err != nil {
		return false, fmt.Errorf("failed to release lock %q: %w", a.path, err)
	}
	return true, nil
}

// IsHeld returns true if this lock is currently held by this instance.
func (a *AdvisoryLock) IsHeld() bool {
	return a.flock.Locked()
}

// LockPath returns the filesystem path backing the lock.
func (a *AdvisoryLock) LockPath() string {
	return a.path
}

// TryAcquire attempts to acquire the lock immediately without waiting.
func (a *AdvisoryLock) TryAcquire(ctx context.Context) (bool, error) {
	return a.AcquireLock(ctx, TimeoutImmediate)
}

// AcquireOrFail attempts to acquire the lock with TimeoutShort and returns
// ErrLockTimeout if another instance already holds it.
func (a *AdvisoryLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := a.AcquireLock(ctx, TimeoutShort)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.path)
	}
	return nil
}

// sanitizeName strips characters that would be awkward in a filename,
// mirroring the teacher's GenerateJobLockName sanitization.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, name)
}

// BatchLockPath builds the lock file path for a batch within lockDir,
// following the naming convention "<lockDir>/<batchName>.lock".
func BatchLockPath(lockDir, batchName string) string {
	return fmt.Sprintf("%s/%s.lock", strings.TrimRight(lockDir, "/"), sanitizeName(batchName))
}

// NewBatchLock creates the advisory lock that prevents two concurrent
// invocations of the same batch, per §4.10.
func NewBatchLock(lockDir, batchName string) *AdvisoryLock {
	return NewAdvisoryLock(BatchLockPath(lockDir, batchName))
}

// WithLock executes fn while holding the lock, acquired with the given
// timeout, and guarantees release afterward regardless of how fn exits.
func (a *AdvisoryLock) WithLock(ctx context.Context, timeoutSeconds int, fn func() error) error {
	acquired, err := a.AcquireLock(ctx, timeoutSeconds)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.path)
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = a.ReleaseLock(releaseCtx)
	}()

	return fn()
}

// WithBatchLock is a convenience wrapper that builds the batch's lock path
// and runs fn while holding it, failing fast (TimeoutShort) if another
// invocation of the same batch is already running.
func WithBatchLock(ctx context.Context, lockDir, batchName string, fn func() error) error {
	l := NewBatchLock(lockDir, batchName)
	return l.WithLock(ctx, TimeoutShort, fn)
}
