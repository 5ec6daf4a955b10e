package lock

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dbsmedya/batchctl/internal/clock"
)

// Allocator issues strictly increasing 14-digit batch numbers across
// concurrent invocations on the same host, per §4.11. It holds an
// advisory lock on a shared file while it reads, waits out, and rewrites
// the last-issued timestamp.
type Allocator struct {
	lock  *AdvisoryLock
	path  string
	clock clock.Clock
}

// NewAllocator creates an Allocator backed by a lock file and a record
// file both under lockDir.
func NewAllocator(lockDir string, c clock.Clock) *Allocator {
	dir := strings.TrimRight(lockDir, "/")
	return &Allocator{
		lock:  NewAdvisoryLock(dir + "/allocator.lock"),
		path:  dir + "/allocator.state",
		clock: c,
	}
}

// Allocate returns the next strictly-increasing 14-digit batch number. It
// acquires the allocator lock, reads the last-issued value (empty if the
// record file does not yet exist), and sleeps one second at a time until
// the current compact timestamp exceeds it, then records and returns that
// timestamp.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	var result string

	err := a.lock.WithLock(ctx, TimeoutLong, func() error {
		last, err := a.readLast()
		if err != nil {
			return err
		}

		for {
			current := a.clock.NowCompact()
			if current > last {
				if err := a.writeLast(current); err != nil {
					return err
				}
				result = current
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to allocate batch number: %w", err)
	}

	return result, nil
}

func (a *Allocator) readLast() (string, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read allocator state: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *Allocator) writeLast(value string) error {
	if err := os.WriteFile(a.path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("failed to write allocator state: %w", err)
	}
	return nil
}
