package yabackoff_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/YaCodeDev/GoYaRSABench/yabackoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotYet = errors.New("not yet")

func TestExponential_Next(t *testing.T) {
	t.Parallel()

	t.Run("[Exponential] grows and caps", func(t *testing.T) {
		t.Parallel()

		b := yabackoff.NewExponential(100*time.Millisecond, 2, 500*time.Millisecond)

		got := make([]time.Duration, 0, 5)
		for range 5 {
			got = append(got, b.Next())
		}

		assert.Equal(t, []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
			500 * time.Millisecond,
			500 * time.Millisecond,
		}, got)

		b.Reset()
		assert.Equal(t, 100*time.Millisecond, b.Next())
	})

	t.Run("[Exponential] zero value uses defaults", func(t *testing.T) {
		t.Parallel()

		var b yabackoff.Exponential

		assert.Equal(t, yabackoff.DefaultInitialInterval, b.Next())
		assert.Equal(t, time.Duration(float64(yabackoff.DefaultInitialInterval)*yabackoff.DefaultMultiplier), b.Next())
	})
}

type fixed time.Duration

func (f fixed) Next() time.Duration { return time.Duration(f) }

func (fixed) Reset() {}

func TestRetry(t *testing.T) {
	t.Parallel()

	t.Run("[Retry] succeeds after failures", func(t *testing.T) {
		t.Parallel()

		calls := 0

		err := yabackoff.Retry(context.Background(), 5, fixed(time.Millisecond), func(context.Context) error {
			calls++
			if calls < 3 {
				return errNotYet
			}

			return nil
		})

		require.Nil(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("[Retry] exhausts attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0

		err := yabackoff.Retry(context.Background(), 3, fixed(time.Millisecond), func(context.Context) error {
			calls++

			return errNotYet
		})

		require.NotNil(t, err)
		assert.ErrorIs(t, err, errNotYet)
		assert.Equal(t, http.StatusServiceUnavailable, err.Code())
		assert.Equal(t, 3, calls)
	})

	t.Run("[Retry] single attempt never sleeps", func(t *testing.T) {
		t.Parallel()

		calls := 0

		err := yabackoff.Retry(context.Background(), 0, fixed(time.Hour), func(context.Context) error {
			calls++

			return errNotYet
		})

		require.NotNil(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("[Retry] context ends the wait", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := yabackoff.Retry(ctx, 10, fixed(time.Hour), func(context.Context) error {
			return errNotYet
		})

		require.NotNil(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, http.StatusRequestTimeout, err.Code())
	})
}
