package xflake

import (
	"time"

	"github.com/omeyang/xflake/pkg/observability/xlog"
	"github.com/omeyang/xflake/pkg/observability/xmetrics"
)

// =============================================================================
// 配置
// =============================================================================

const (
	// DefaultMaxWaitDuration NextWithRetry 默认最大等待时间。
	// 序列号耗尽最多等 1ms；NTP 微调导致的时钟回拨通常在数百毫秒内。
	DefaultMaxWaitDuration = 500 * time.Millisecond

	// DefaultRetryInterval NextWithRetry 默认重试间隔（时间戳精度为 1ms）。
	DefaultRetryInterval = time.Millisecond
)

// options 内部配置结构
type options struct {
	seq              int64
	epoch            int64
	startTimestamp   int64
	startSet         bool // 区分"未传入"与"显式传入 0"
	clock            Clock
	clockSet         bool
	maxWaitDuration  time.Duration
	maxWaitSet       bool
	retryInterval    time.Duration
	retryIntervalSet bool
	logger           xlog.Logger
	observer         xmetrics.Observer
}

// Option 生成器配置选项函数
type Option func(*options)

// WithSequence 设置起始序列号（默认 0）。
func WithSequence(seq int64) Option {
	return func(o *options) {
		o.seq = seq
	}
}

// WithEpoch 设置 epoch（Unix 毫秒，默认 0 即 Unix 纪元）。
//
// epoch 越接近当前时间，41 位时间戳可用的年限越长（约 69.7 年）。
func WithEpoch(ms int64) Option {
	return func(o *options) {
		o.epoch = ms
	}
}

// WithEpochTime 以 time.Time 设置 epoch，精度截断到毫秒。
func WithEpochTime(t time.Time) Option {
	return func(o *options) {
		o.epoch = t.UnixMilli()
	}
}

// WithStartTimestamp 设置起点（Unix 毫秒，绝对时间）。
//
// 不调用时以构造时刻为起点。起点不得晚于当前时间。
func WithStartTimestamp(ms int64) Option {
	return func(o *options) {
		o.startTimestamp = ms
		o.startSet = true
	}
}

// WithClock 注入时钟（默认 SystemClock）。传入 nil 会在 NewGenerator 中返回错误。
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
		o.clockSet = true
	}
}

// WithMaxWaitDuration 设置 NextWithRetry 的最大等待时间。
//
// 传入负值会在 NewGenerator 中返回错误（fail-fast）。
// 传入零值表示"不等待"：首次不可用即返回 ErrWaitTimeout。
func WithMaxWaitDuration(d time.Duration) Option {
	return func(o *options) {
		o.maxWaitDuration = d
		o.maxWaitSet = true
	}
}

// WithRetryInterval 设置 NextWithRetry 的重试间隔。
//
// 传入负值会在 NewGenerator 中返回错误；零值表示不间隔立即重试。
func WithRetryInterval(d time.Duration) Option {
	return func(o *options) {
		o.retryInterval = d
		o.retryIntervalSet = true
	}
}

// WithLogger 设置日志记录器。仅 NextWithRetry 的等待与放弃会记录日志，
// 非阻塞的 Next 从不记录。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置观测器，为 NextWithRetry 记录 span 与指标。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}
