package xretry

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// 以下别名镜像 retry-go 的常用 API，调用方无需直接依赖第三方包。
type (
	// Option retry-go 配置选项。
	Option = retry.Option
	// DelayContext 提供延迟计算所需的配置值。
	DelayContext = retry.DelayContext
)

var (
	Attempts       = retry.Attempts
	UntilSucceeded = retry.UntilSucceeded
	DelayType      = retry.DelayType
	OnRetry        = retry.OnRetry
	RetryIf        = retry.RetryIf
	Context        = retry.Context
	LastErrorOnly  = retry.LastErrorOnly

	// IsRecoverable 检查错误是否可恢复。
	IsRecoverable = retry.IsRecoverable
)

// Retryer 组合 RetryPolicy 与 BackoffPolicy 的重试执行器。
type Retryer struct {
	retryPolicy   RetryPolicy
	backoffPolicy BackoffPolicy
	onRetry       func(attempt int, err error)
}

// RetryerOption 执行器配置选项。
type RetryerOption func(*Retryer)

// WithRetryPolicy 设置重试策略，nil 忽略。
func WithRetryPolicy(p RetryPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.retryPolicy = p
		}
	}
}

// WithBackoffPolicy 设置退避策略，nil 忽略。
func WithBackoffPolicy(p BackoffPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.backoffPolicy = p
		}
	}
}

// WithOnRetry 设置重试回调，attempt 为已失败次数（从 1 开始）。nil 忽略。
func WithOnRetry(f func(attempt int, err error)) RetryerOption {
	return func(r *Retryer) {
		if f != nil {
			r.onRetry = f
		}
	}
}

// NewRetryer 创建重试执行器，默认 FixedRetry(3) + ExponentialBackoff。
//
// 设计决策: 返回 *Retryer 而非接口，泛型函数 DoWithResult 需要访问内部方法。
func NewRetryer(opts ...RetryerOption) *Retryer {
	r := &Retryer{
		retryPolicy:   NewFixedRetry(3),
		backoffPolicy: NewExponentialBackoff(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Do 执行带重试的操作。
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil {
		return ErrNilRetryer
	}
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	return retry.New(r.buildOptions(ctx)...).Do(func() error {
		return fn(ctx)
	})
}

// DoWithResult 执行带重试的操作（有返回值）。
func DoWithResult[T any](ctx context.Context, r *Retryer, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrNilRetryer
	}
	if ctx == nil {
		return zero, ErrNilContext
	}
	if fn == nil {
		return zero, ErrNilFunc
	}
	return retry.NewWithData[T](r.buildOptions(ctx)...).Do(func() (T, error) {
		return fn(ctx)
	})
}

// RetryPolicy 返回当前重试策略。
func (r *Retryer) RetryPolicy() RetryPolicy {
	if r == nil {
		return nil
	}
	return r.retryPolicy
}

// BackoffPolicy 返回当前退避策略。
func (r *Retryer) BackoffPolicy() BackoffPolicy {
	if r == nil {
		return nil
	}
	return r.backoffPolicy
}

// buildOptions 将策略翻译为 retry-go 选项。每次调用生成独立的计数闭包。
func (r *Retryer) buildOptions(ctx context.Context) []Option {
	retryPolicy := r.retryPolicy
	if retryPolicy == nil {
		retryPolicy = NewFixedRetry(3)
	}
	backoffPolicy := r.backoffPolicy
	if backoffPolicy == nil {
		backoffPolicy = NewExponentialBackoff()
	}

	opts := make([]Option, 0, 6)
	opts = append(opts, Context(ctx))

	// MaxAttempts 是硬上限，ShouldRetry 可提前终止
	if n := retryPolicy.MaxAttempts(); n <= 0 {
		opts = append(opts, UntilSucceeded())
	} else {
		opts = append(opts, Attempts(uint(n)))
	}

	var failures atomic.Int64
	opts = append(opts, RetryIf(func(err error) bool {
		count := int(failures.Add(1))
		// retry-go 的 Unrecoverable 标记同样终止重试
		if !IsRecoverable(err) {
			return false
		}
		return retryPolicy.ShouldRetry(ctx, count, err)
	}))

	// retry-go v5 的 DelayType n 从 1 开始
	opts = append(opts, DelayType(func(n uint, _ error, _ DelayContext) time.Duration {
		return backoffPolicy.NextDelay(uintToInt(n))
	}))

	if r.onRetry != nil {
		// retry-go v5 的 OnRetry n 从 0 开始
		opts = append(opts, OnRetry(func(n uint, err error) {
			r.onRetry(uintToInt(n)+1, err)
		}))
	}

	return append(opts, LastErrorOnly(true))
}

func uintToInt(n uint) int {
	if n > uint(math.MaxInt) {
		return math.MaxInt
	}
	return int(n)
}
