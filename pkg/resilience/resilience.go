// Package resilience provides retry, circuit breaker and graceful
// degradation primitives for calls to flaky dependencies.
//
// The permission core never uses these implicitly: retry/breaker policy
// lives with the caller so that security checks are never silently
// retried.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kart-io/logger"
)

// RetryOptions configures RetryWithBackoff.
type RetryOptions struct {
	// Retries is the number of retries after the first attempt, so the
	// task runs at most Retries+1 times.
	Retries int

	// Delay is the wait before the first retry.
	Delay time.Duration

	// Multiplier is the exponential backoff factor applied per attempt.
	Multiplier float64

	// OnRetry, if set, is invoked before each retry with the zero-based
	// attempt index that just failed and its error.
	OnRetry func(attempt int, err error)
}

// DefaultRetryOptions returns the default retry configuration.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		Retries:    2,
		Delay:      200 * time.Millisecond,
		Multiplier: 2.0,
	}
}

// RetryWithBackoff runs task up to opts.Retries+1 times, waiting
// Delay*Multiplier^attempt between attempts. On success it returns that
// attempt's result immediately. On exhaustion it returns the last observed
// error unchanged so callers can still match on sentinel errors.
func RetryWithBackoff(ctx context.Context, opts RetryOptions, task func() error) error {
	if opts.Multiplier <= 0 {
		opts.Multiplier = 1
	}

	var lastErr error
	delay := opts.Delay

	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = task()
		if lastErr == nil {
			return nil
		}

		if attempt == opts.Retries {
			break
		}

		if opts.OnRetry != nil {
			opts.OnRetry(attempt, lastErr)
		}

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		delay = time.Duration(float64(delay) * opts.Multiplier)
	}

	return lastErr
}

// ErrCircuitOpen is returned by Execute while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit open")

// State is the circuit breaker state.
type State int

const (
	// StateClosed allows calls and counts failures.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown elapses.
	StateOpen
	// StateHalfOpen lets probe calls through and counts successes.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerOptions configures a CircuitBreaker.
type BreakerOptions struct {
	// FailureThreshold is the consecutive failure count that opens the
	// breaker. The same counter applies while half-open, so a single probe
	// failure reopens immediately for the usual threshold of 1+.
	FailureThreshold int

	// SuccessThreshold is the half-open success count that closes the
	// breaker.
	SuccessThreshold int

	// Cooldown is how long the breaker stays open before allowing a probe.
	Cooldown time.Duration

	// Now is the clock; defaults to time.Now. Injectable for tests.
	Now func() time.Time
}

// DefaultBreakerOptions returns the default breaker configuration.
func DefaultBreakerOptions() BreakerOptions {
	return BreakerOptions{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
	}
}

// CircuitBreaker is an explicit three-state circuit breaker.
type CircuitBreaker struct {
	opts BreakerOptions

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	openedAt     time.Time
}

// NewCircuitBreaker creates a breaker in the closed state.
func NewCircuitBreaker(opts BreakerOptions) *CircuitBreaker {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = DefaultBreakerOptions().FailureThreshold
	}
	if opts.SuccessThreshold <= 0 {
		opts.SuccessThreshold = DefaultBreakerOptions().SuccessThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CircuitBreaker{opts: opts, state: StateClosed}
}

// Execute runs task through the breaker. While open it returns
// ErrCircuitOpen without invoking the task, unless the cooldown has
// elapsed, in which case the breaker transitions to half-open (resetting
// both counters) before the task runs.
func (cb *CircuitBreaker) Execute(task func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := task()
	cb.afterCall(err)
	return err
}

// Snapshot is a read-only view of the breaker state.
type Snapshot struct {
	State        string    `json:"state"`
	FailureCount int       `json:"failure_count"`
	SuccessCount int       `json:"success_count"`
	OpenedAt     time.Time `json:"opened_at,omitzero"`
}

// GetSnapshot returns the current state without mutating it.
func (cb *CircuitBreaker) GetSnapshot() Snapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Snapshot{
		State:        cb.state.String(),
		FailureCount: cb.failureCount,
		SuccessCount: cb.successCount,
		OpenedAt:     cb.openedAt,
	}
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return nil
	case StateOpen:
		if cb.opts.Now().Sub(cb.openedAt) >= cb.opts.Cooldown {
			logger.Infow("circuit breaker transitioning to half-open")
			cb.state = StateHalfOpen
			cb.failureCount = 0
			cb.successCount = 0
			return nil
		}
		return ErrCircuitOpen
	default:
		return ErrCircuitOpen
	}
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure()
		return
	}
	cb.onSuccess()
}

// onFailure and onSuccess assume the lock is held.
func (cb *CircuitBreaker) onFailure() {
	cb.failureCount++

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.opts.FailureThreshold {
			logger.Warnw("circuit breaker opening",
				"failures", cb.failureCount,
				"threshold", cb.opts.FailureThreshold,
			)
			cb.open()
		}
	case StateHalfOpen:
		logger.Warnw("circuit breaker re-opening after half-open failure")
		cb.open()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.opts.SuccessThreshold {
			logger.Infow("circuit breaker closing")
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
			cb.openedAt = time.Time{}
		}
	}
}

func (cb *CircuitBreaker) open() {
	cb.state = StateOpen
	cb.openedAt = cb.opts.Now()
}
