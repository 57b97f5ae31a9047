package xflake

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/omeyang/xflake/pkg/observability/xlog"
	"github.com/omeyang/xflake/pkg/observability/xmetrics"
	"github.com/omeyang/xflake/pkg/resilience/xretry"
)

const (
	componentName       = "xflake"
	operationNextWait   = "next_with_retry"
	attrInstance        = "instance"
	attrAttempts        = "attempts"
	attrUnavailableKind = "reason"
)

// NextWithRetry 生成下一个 ID，暂不可用时按 retryInterval 等待重试。
//
// 重试策略：
//   - ErrOverflow 不可恢复，立即返回
//   - 序列号耗尽、时钟回拨可恢复，最多等待 maxWaitDuration（默认 500ms），
//     超时返回 [ErrWaitTimeout]（包裹最后一次不可用原因）
//
// 支持通过 ctx 取消等待。ctx 为 nil 时返回 [ErrNilContext]。
// 与 Next 相同，本方法不是并发安全的。
func (g *Generator) NextWithRetry(ctx context.Context) (id int64, err error) {
	if g == nil || g.clock == nil {
		return 0, ErrNilGenerator
	}
	if ctx == nil {
		return 0, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ctx, span := xmetrics.Start(ctx, g.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: operationNextWait,
		Attrs:     []xmetrics.Attr{xmetrics.Int64(attrInstance, g.Instance())},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	// 快速路径：首次尝试成功则不创建重试器
	res, err := g.Next()
	if err != nil {
		return 0, err
	}
	if res.OK() {
		return res.ID, nil
	}
	return g.retryNext(ctx, res.Err())
}

// retryNext 处理 NextWithRetry 的重试循环。
func (g *Generator) retryNext(ctx context.Context, firstErr error) (int64, error) {
	deadline := time.Now().Add(g.maxWaitDuration)
	policy := &waitPolicy{deadline: deadline}
	if !policy.ShouldRetry(ctx, 1, firstErr) {
		return 0, g.giveUp(ctx, firstErr, 1)
	}

	attempts := 1
	r := xretry.NewRetryer(
		xretry.WithRetryPolicy(policy),
		xretry.WithBackoffPolicy(xretry.NewFixedBackoff(g.retryInterval)),
		xretry.WithOnRetry(func(attempt int, err error) {
			attempts = attempt + 1
			g.logger.Debug(ctx, "xflake: id unavailable, waiting",
				slog.Int64(attrInstance, g.Instance()),
				slog.Int(attrAttempts, attempt),
				slog.String(attrUnavailableKind, err.Error()),
			)
		}),
	)

	id, err := xretry.DoWithResult(ctx, r, func(context.Context) (int64, error) {
		res, err := g.Next()
		if err != nil {
			return 0, xretry.NewPermanentError(err)
		}
		if !res.OK() {
			return 0, res.Err()
		}
		return res.ID, nil
	})
	if err == nil {
		return id, nil
	}

	var perm *xretry.PermanentError
	if errors.As(err, &perm) {
		return 0, perm.Err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if errors.Is(err, ErrUnavailable) {
		return 0, g.giveUp(ctx, err, attempts)
	}
	return 0, err
}

// giveUp 记录并返回等待超时错误。
func (g *Generator) giveUp(ctx context.Context, cause error, attempts int) error {
	g.logger.Warn(ctx, "xflake: gave up waiting for available id",
		slog.Int64(attrInstance, g.Instance()),
		slog.Int(attrAttempts, attempts),
		slog.Duration("max_wait", g.maxWaitDuration),
		xlog.Err(cause),
	)
	return fmt.Errorf("%w after %s: %w", ErrWaitTimeout, g.maxWaitDuration, cause)
}

// MustNextWithRetry 与 NextWithRetry 相同（使用 context.Background()），失败时 panic。
//
// 适用于明确接受 crash-fast 策略的场景。
func (g *Generator) MustNextWithRetry() int64 {
	id, err := g.NextWithRetry(context.Background())
	if err != nil {
		panic(err)
	}
	return id
}

// Take 返回最多 n 个已产出 ID 的序列，不可用时通过 NextWithRetry 等待。
//
// 出错（溢出、等待超时、ctx 取消）时产出 (0, err) 后结束。
func (g *Generator) Take(ctx context.Context, n int) iter.Seq2[int64, error] {
	return func(yield func(int64, error) bool) {
		for range n {
			id, err := g.NextWithRetry(ctx)
			if !yield(id, err) || err != nil {
				return
			}
		}
	}
}

// =============================================================================
// 重试策略
// =============================================================================

// waitPolicy 在截止时间前重试可恢复错误，次数不限。
type waitPolicy struct {
	deadline time.Time
}

var _ xretry.RetryPolicy = (*waitPolicy)(nil)

func (p *waitPolicy) MaxAttempts() int { return 0 }

func (p *waitPolicy) ShouldRetry(ctx context.Context, _ int, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if !time.Now().Before(p.deadline) {
		return false
	}
	return xretry.IsRetryable(err)
}
