package xretry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedRetryPolicy(t *testing.T) {
	ctx := context.Background()
	p := NewFixedRetry(3)
	assert.Equal(t, 3, p.MaxAttempts())
	assert.True(t, p.ShouldRetry(ctx, 1, errors.New("x")))
	assert.True(t, p.ShouldRetry(ctx, 2, errors.New("x")))
	assert.False(t, p.ShouldRetry(ctx, 3, errors.New("x")))
	assert.False(t, p.ShouldRetry(ctx, 1, NewPermanentError(errors.New("x"))))

	assert.Equal(t, 1, NewFixedRetry(0).MaxAttempts())

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, p.ShouldRetry(canceled, 1, errors.New("x")))
}

func TestAlwaysAndNeverRetryPolicy(t *testing.T) {
	ctx := context.Background()
	always := NewAlwaysRetry()
	assert.Equal(t, 0, always.MaxAttempts())
	assert.True(t, always.ShouldRetry(ctx, 1000, errors.New("x")))
	assert.False(t, always.ShouldRetry(ctx, 1, nil))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, always.ShouldRetry(canceled, 1, errors.New("x")))

	never := NewNeverRetry()
	assert.Equal(t, 1, never.MaxAttempts())
	assert.False(t, never.ShouldRetry(ctx, 1, errors.New("x")))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Millisecond, NewFixedBackoff(time.Millisecond).NextDelay(9))
	assert.Equal(t, time.Duration(0), NewFixedBackoff(-time.Second).NextDelay(1))
	assert.Equal(t, time.Duration(0), NewNoBackoff().NextDelay(1))

	exp := NewExponentialBackoff(
		WithInitialDelay(10*time.Millisecond),
		WithMaxDelay(50*time.Millisecond),
		WithMultiplier(2),
		WithJitter(0),
	)
	assert.Equal(t, 10*time.Millisecond, exp.NextDelay(0))
	assert.Equal(t, 10*time.Millisecond, exp.NextDelay(1))
	assert.Equal(t, 20*time.Millisecond, exp.NextDelay(2))
	assert.Equal(t, 40*time.Millisecond, exp.NextDelay(3))
	assert.Equal(t, 50*time.Millisecond, exp.NextDelay(4))
	assert.Equal(t, 50*time.Millisecond, exp.NextDelay(100000))

	jittered := NewExponentialBackoff(WithInitialDelay(100*time.Millisecond), WithJitter(5))
	for range 100 {
		d := jittered.NextDelay(1)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 200*time.Millisecond)
	}

	// maxDelay 不小于 initialDelay
	clamped := NewExponentialBackoff(WithInitialDelay(time.Second), WithMaxDelay(time.Millisecond), WithJitter(0))
	assert.Equal(t, time.Second, clamped.NextDelay(5))
}

func TestIsRetryable(t *testing.T) {
	base := errors.New("base")
	tests := []struct {
		name      string
		err       error
		retryable bool
		permanent bool
	}{
		{"nil", nil, false, false},
		{"plain", base, true, false},
		{"permanent", NewPermanentError(base), false, true},
		{"wrapped permanent", fmt.Errorf("ctx: %w", NewPermanentError(base)), false, true},
		{"temporary", NewTemporaryError(base), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
			assert.Equal(t, tt.permanent, IsPermanent(tt.err))
		})
	}
}

func TestErrorTypes(t *testing.T) {
	base := errors.New("base")
	assert.Equal(t, "base", NewPermanentError(base).Error())
	assert.Equal(t, "permanent error", NewPermanentError(nil).Error())
	assert.ErrorIs(t, NewPermanentError(base), base)
	assert.Equal(t, "base", NewTemporaryError(base).Error())
	assert.Equal(t, "temporary error", NewTemporaryError(nil).Error())
	assert.ErrorIs(t, NewTemporaryError(base), base)
}
