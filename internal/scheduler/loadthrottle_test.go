package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadThrottleDisabledWhenZero(t *testing.T) {
	lt := NewLoadThrottle(0)
	assert.False(t, lt.Enabled())
	assert.NoError(t, lt.Wait(context.Background()))
}

func TestLoadThrottleReturnsImmediatelyUnderCeiling(t *testing.T) {
	lt := NewLoadThrottle(5.0)
	lt.readLoadAvg = func() (float64, error) { return 1.0, nil }
	assert.NoError(t, lt.Wait(context.Background()))
}

func TestLoadThrottleWaitsUntilUnderCeiling(t *testing.T) {
	lt := NewLoadThrottle(5.0)
	lt.checkInterval = time.Millisecond
	calls := 0
	lt.readLoadAvg = func() (float64, error) {
		calls++
		if calls < 3 {
			return 10.0, nil
		}
		return 1.0, nil
	}
	require.NoError(t, lt.Wait(context.Background()))
	assert.Equal(t, 3, calls)
}

func TestLoadThrottlePropagatesReadError(t *testing.T) {
	lt := NewLoadThrottle(5.0)
	lt.readLoadAvg = func() (float64, error) { return 0, errors.New("boom") }
	assert.Error(t, lt.Wait(context.Background()))
}

func TestLoadThrottleRespectsCancellation(t *testing.T) {
	lt := NewLoadThrottle(5.0)
	lt.checkInterval = time.Second
	lt.readLoadAvg = func() (float64, error) { return 10.0, nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, lt.Wait(ctx), context.Canceled)
}
