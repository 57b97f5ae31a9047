// Package xretry 提供重试策略与退避策略接口及实现。
//
// # 设计理念
//
// xretry 采用接口驱动设计：
//   - RetryPolicy：是否应该重试
//   - BackoffPolicy：重试间隔
//
// 底层使用 [avast/retry-go/v5] 实现重试循环。
//
// # 内置策略
//
// 重试策略：FixedRetryPolicy（固定次数）、AlwaysRetryPolicy（直到成功或 ctx 取消）、
// NeverRetryPolicy（不重试）。
//
// 退避策略：FixedBackoff、ExponentialBackoff（带抖动）、NoBackoff。
//
// # 使用方式
//
//	r := xretry.NewRetryer(
//		xretry.WithRetryPolicy(xretry.NewFixedRetry(5)),
//		xretry.WithBackoffPolicy(xretry.NewFixedBackoff(time.Millisecond)),
//	)
//	id, err := xretry.DoWithResult(ctx, r, func(ctx context.Context) (int64, error) {
//		return next(ctx)
//	})
//
// 返回 [PermanentError] 或 retry-go Unrecoverable 包装的错误会立即终止重试。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
