package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), nil, Policy{Attempts: 3, Delay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUp(t *testing.T) {
	flaky := errors.New("flaky")
	calls := 0
	err := Do(context.Background(), nil, Policy{Attempts: 2, Delay: time.Millisecond, Name: "extract"}, func(ctx context.Context) error {
		calls++
		return flaky
	})
	assert.ErrorIs(t, err, flaky)
	assert.Contains(t, err.Error(), "extract failed after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestDoStopsOnPermanent(t *testing.T) {
	gone := errors.New("video unavailable")
	calls := 0
	err := Do(context.Background(), nil, Policy{Attempts: 5, Delay: time.Millisecond}, func(ctx context.Context) error {
		calls++
		return Stop(gone)
	})
	assert.Equal(t, gone, err)
	assert.Equal(t, 1, calls)
}

func TestDoHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, NewLimiter(1, 1, 1), Policy{}, func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLimiterAdapts(t *testing.T) {
	l := NewLimiter(8, 1, 8)
	l.Failure()
	assert.Equal(t, rate.Limit(4), l.Limit())
	l.Failure()
	l.Failure()
	l.Failure()
	assert.Equal(t, rate.Limit(1), l.Limit())

	l.calm = 0
	l.lastFault = time.Time{}
	l.Success()
	assert.Equal(t, rate.Limit(2), l.Limit())
}
