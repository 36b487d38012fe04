package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUntil_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := WaitUntil(context.Background(), "ready flag", WaitConfig{}, func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWaitUntil_EventualSuccess(t *testing.T) {
	calls := 0
	err := WaitUntil(context.Background(), "ready flag", WaitConfig{
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
	}, func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitUntil_TimeoutIsCategorized(t *testing.T) {
	err := WaitUntil(context.Background(), "composer", WaitConfig{
		Interval: 5 * time.Millisecond,
		Timeout:  25 * time.Millisecond,
	}, func(ctx context.Context) (bool, error) {
		return false, nil
	})

	require.Error(t, err)
	assert.Equal(t, CategoryTimeout, CategoryOf(err))
	assert.Contains(t, err.Error(), "composer")
}

func TestWaitUntil_CondErrorAborts(t *testing.T) {
	boom := eris.New("script exception")
	calls := 0
	err := WaitUntil(context.Background(), "anything", WaitConfig{
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
	}, func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, boom)
}

func TestWaitUntil_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitUntil(ctx, "anything", WaitConfig{
		Interval: 5 * time.Millisecond,
		Timeout:  time.Second,
	}, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Minute), context.Canceled)
}

func TestCountdown_TicksEverySecondRemaining(t *testing.T) {
	var ticks []int
	err := Countdown(context.Background(), 0, func(remaining int) error {
		ticks = append(ticks, remaining)
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, ticks)
}

func TestCountdown_TickErrorAborts(t *testing.T) {
	stop := eris.New("stop requested")
	ticks := 0
	err := Countdown(context.Background(), 60, func(remaining int) error {
		ticks++
		if ticks == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, ticks)
}

func TestCountdown_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Countdown(ctx, 5, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
