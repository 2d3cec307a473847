// Package yabackoff spaces out retries of operations that may fail while a
// dependency comes up, such as the first ping to a telemetry sink.
//
//	b := yabackoff.NewExponential(100*time.Millisecond, 2, time.Second)
//	err := yabackoff.Retry(ctx, 5, b, func(ctx context.Context) error {
//		return client.Ping(ctx).Err()
//	})
package yabackoff

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
)

const (
	DefaultInitialInterval = 200 * time.Millisecond
	DefaultMultiplier      = 1.5
	DefaultMaxInterval     = 5 * time.Second
)

// Backoff yields the delay before each retry. Implementations are not safe
// for concurrent use.
type Backoff interface {
	// Next advances the strategy and returns the delay for this attempt.
	Next() time.Duration

	// Reset makes the following Next return the initial interval again.
	Reset()
}

// Exponential multiplies the delay by a constant factor on every Next, capped
// at the maximum. The zero value uses the package defaults.
type Exponential struct {
	initial    time.Duration
	multiplier float64
	maxDelay   time.Duration
	next       time.Duration
}

// NewExponential returns a backoff whose first delay is initial. Zero
// arguments fall back to the package defaults.
func NewExponential(initial time.Duration, multiplier float64, maxInterval time.Duration) *Exponential {
	return &Exponential{initial: initial, multiplier: multiplier, maxDelay: maxInterval}
}

func (e *Exponential) Next() time.Duration {
	e.defaults()

	current := e.next
	e.next = min(time.Duration(float64(e.next)*e.multiplier), e.maxDelay)

	return current
}

func (e *Exponential) Reset() {
	e.next = 0
}

func (e *Exponential) defaults() {
	if e.initial <= 0 {
		e.initial = DefaultInitialInterval
	}

	if e.multiplier < 1 {
		e.multiplier = DefaultMultiplier
	}

	if e.maxDelay <= 0 {
		e.maxDelay = DefaultMaxInterval
	}

	if e.next == 0 {
		e.next = min(e.initial, e.maxDelay)
	}
}

// Retry calls op until it succeeds, attempts calls have failed or ctx ends,
// sleeping b.Next() between calls. attempts < 1 is treated as 1. The last
// failure is returned as a 503 error wrapping op's error.
func Retry(ctx context.Context, attempts int, b Backoff, op func(context.Context) error) yaerrors.Error {
	attempts = max(attempts, 1)

	if b == nil {
		b = NewExponential(0, 0, 0)
	}

	var last error

	for attempt := 1; ; attempt++ {
		if last = op(ctx); last == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		timer := time.NewTimer(b.Next())

		select {
		case <-ctx.Done():
			timer.Stop()

			return yaerrors.FromError(
				http.StatusRequestTimeout,
				ctx.Err(),
				fmt.Sprintf("[Backoff] gave up after %d attempt(s), last error: %v", attempt, last),
			)
		case <-timer.C:
		}
	}

	return yaerrors.FromError(
		http.StatusServiceUnavailable,
		last,
		fmt.Sprintf("[Backoff] gave up after %d attempt(s)", attempts),
	)
}
