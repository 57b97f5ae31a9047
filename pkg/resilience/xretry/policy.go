package xretry

import (
	"context"
	"time"
)

// RetryPolicy 定义重试策略接口。
type RetryPolicy interface {
	// MaxAttempts 返回最大尝试次数（包含首次尝试），0 表示不限次数。
	MaxAttempts() int

	// ShouldRetry 在每次失败后调用，attempt 为已失败次数（从 1 开始）。
	ShouldRetry(ctx context.Context, attempt int, err error) bool
}

// BackoffPolicy 定义退避策略接口。
type BackoffPolicy interface {
	// NextDelay 返回第 attempt 次失败后的等待时间（attempt 从 1 开始）。
	NextDelay(attempt int) time.Duration
}

// =============================================================================
// 重试策略
// =============================================================================

// FixedRetryPolicy 固定次数重试策略。
type FixedRetryPolicy struct {
	maxAttempts int
}

// NewFixedRetry 创建固定次数重试策略，maxAttempts 最小为 1。
func NewFixedRetry(maxAttempts int) *FixedRetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &FixedRetryPolicy{maxAttempts: maxAttempts}
}

func (p *FixedRetryPolicy) MaxAttempts() int { return p.maxAttempts }

func (p *FixedRetryPolicy) ShouldRetry(ctx context.Context, attempt int, err error) bool {
	if ctx.Err() != nil || attempt >= p.maxAttempts {
		return false
	}
	return IsRetryable(err)
}

// AlwaysRetryPolicy 不限次数重试，直到成功、ctx 取消或遇到永久性错误。
type AlwaysRetryPolicy struct{}

// NewAlwaysRetry 创建不限次数重试策略。
func NewAlwaysRetry() *AlwaysRetryPolicy { return &AlwaysRetryPolicy{} }

func (p *AlwaysRetryPolicy) MaxAttempts() int { return 0 }

func (p *AlwaysRetryPolicy) ShouldRetry(ctx context.Context, _ int, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return IsRetryable(err)
}

// NeverRetryPolicy 永不重试策略。
type NeverRetryPolicy struct{}

// NewNeverRetry 创建永不重试策略。
func NewNeverRetry() *NeverRetryPolicy { return &NeverRetryPolicy{} }

func (p *NeverRetryPolicy) MaxAttempts() int { return 1 }

func (p *NeverRetryPolicy) ShouldRetry(context.Context, int, error) bool { return false }

var (
	_ RetryPolicy = (*FixedRetryPolicy)(nil)
	_ RetryPolicy = (*AlwaysRetryPolicy)(nil)
	_ RetryPolicy = (*NeverRetryPolicy)(nil)
)
