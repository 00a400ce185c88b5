package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	task := func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	}

	err := RetryWithBackoff(context.Background(), RetryOptions{Retries: 2, Multiplier: 2}, task)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnFirstSuccess(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), RetryOptions{Retries: 5}, func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryReturnsLastErrorUnchanged(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), RetryOptions{Retries: 2}, func() error {
		calls++
		return errBoom
	})

	assert.Same(t, errBoom, err)
	assert.Equal(t, 3, calls)
}

func TestRetryInvokesOnRetry(t *testing.T) {
	var attempts []int
	opts := RetryOptions{
		Retries: 2,
		OnRetry: func(attempt int, err error) {
			assert.Same(t, errBoom, err)
			attempts = append(attempts, attempt)
		},
	}

	_ = RetryWithBackoff(context.Background(), opts, func() error { return errBoom })

	// OnRetry fires before each retry, not after the final failure.
	assert.Equal(t, []int{0, 1}, attempts)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, RetryOptions{Retries: 3, Delay: time.Hour}, func() error {
		return errBoom
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

func TestBreakerOpensAtFailureThreshold(t *testing.T) {
	now := time.Unix(0, 0)
	cb := NewCircuitBreaker(BreakerOptions{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Cooldown:         time.Second,
		Now:              fixedClock(&now),
	})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	assert.Equal(t, "closed", cb.GetSnapshot().State)

	require.Error(t, cb.Execute(func() error { return errBoom }))
	snap := cb.GetSnapshot()
	assert.Equal(t, "open", snap.State)
	assert.Equal(t, 2, snap.FailureCount)
	assert.Equal(t, now, snap.OpenedAt)
}

func TestBreakerRejectsWithoutInvokingTask(t *testing.T) {
	now := time.Unix(0, 0)
	cb := NewCircuitBreaker(BreakerOptions{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Cooldown:         time.Second,
		Now:              fixedClock(&now),
	})

	require.Error(t, cb.Execute(func() error { return errBoom }))

	invoked := false
	err := cb.Execute(func() error {
		invoked = true
		return nil
	})

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, invoked)
}

func TestBreakerHalfOpenAfterCooldown(t *testing.T) {
	now := time.Unix(0, 0)
	cb := NewCircuitBreaker(BreakerOptions{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Cooldown:         time.Second,
		Now:              fixedClock(&now),
	})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	assert.Equal(t, "open", cb.GetSnapshot().State)

	now = now.Add(time.Second)

	invoked := false
	require.NoError(t, cb.Execute(func() error {
		invoked = true
		return nil
	}))
	assert.True(t, invoked)

	snap := cb.GetSnapshot()
	assert.Equal(t, "half-open", snap.State)
	assert.Equal(t, 1, snap.SuccessCount)

	// Second success closes at SuccessThreshold=2.
	require.NoError(t, cb.Execute(func() error { return nil }))
	snap = cb.GetSnapshot()
	assert.Equal(t, "closed", snap.State)
	assert.Zero(t, snap.FailureCount)
	assert.Zero(t, snap.SuccessCount)
	assert.True(t, snap.OpenedAt.IsZero())
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	now := time.Unix(0, 0)
	cb := NewCircuitBreaker(BreakerOptions{
		FailureThreshold: 1,
		SuccessThreshold: 3,
		Cooldown:         time.Second,
		Now:              fixedClock(&now),
	})

	require.Error(t, cb.Execute(func() error { return errBoom }))
	now = now.Add(time.Second)

	// Probe fails: a single half-open failure reopens immediately.
	require.Error(t, cb.Execute(func() error { return errBoom }))
	snap := cb.GetSnapshot()
	assert.Equal(t, "open", snap.State)
	assert.Equal(t, now, snap.OpenedAt)
}

func TestSnapshotDoesNotMutateState(t *testing.T) {
	cb := NewCircuitBreaker(DefaultBreakerOptions())
	before := cb.GetSnapshot()
	for i := 0; i < 5; i++ {
		_ = cb.GetSnapshot()
	}
	assert.Equal(t, before, cb.GetSnapshot())
}

func TestGracefulError(t *testing.T) {
	g := GracefulError(errBoom, "")
	assert.Equal(t, Graceful{
		Message: "Temporarily unavailable",
		Reason:  "boom",
		Status:  "degraded",
	}, g)

	g = GracefulError(nil, "calendar service is catching its breath")
	assert.Equal(t, "calendar service is catching its breath", g.Message)
	assert.Equal(t, "unknown", g.Reason)
	assert.Equal(t, "degraded", g.Status)
}
