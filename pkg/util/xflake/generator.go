package xflake

import (
	"fmt"
	"iter"
	"strconv"
	"time"

	"github.com/omeyang/xflake/pkg/observability/xlog"
	"github.com/omeyang/xflake/pkg/observability/xmetrics"
)

// =============================================================================
// 生成结果
// =============================================================================

// Status 单次生成的结果类型。
type Status uint8

const (
	// StatusProduced 成功产出 ID。零值保留给出错时的空 Result。
	StatusProduced Status = iota + 1
	// StatusSequenceExhausted 当前毫秒序列号已用尽，未产出 ID。
	StatusSequenceExhausted
	// StatusClockBackward 时钟早于上次发号时间，未产出 ID。
	StatusClockBackward
)

// String 返回 Status 的可读名称，用于日志与指标属性。
func (s Status) String() string {
	switch s {
	case StatusProduced:
		return "produced"
	case StatusSequenceExhausted:
		return "sequence_exhausted"
	case StatusClockBackward:
		return "clock_backward"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Result 是 Next 的带标签结果：要么产出 ID，要么暂不可用。
//
// 设计决策: 用显式 Status 而非零值哨兵区分"不可用"，
// 合法 ID 0（epoch 起点、实例 0、序列 0）不会与"无值"混淆。
type Result struct {
	ID     int64
	Status Status
}

// OK 报告是否产出了 ID。
func (r Result) OK() bool { return r.Status == StatusProduced }

// Err 将不可用状态映射为错误；产出 ID 时返回 nil。
// 返回的错误均匹配 [ErrUnavailable]。
func (r Result) Err() error {
	switch r.Status {
	case StatusProduced:
		return nil
	case StatusSequenceExhausted:
		return ErrSequenceExhausted
	case StatusClockBackward:
		return ErrClockBackward
	default:
		return fmt.Errorf("%w: %s", ErrUnavailable, r.Status)
	}
}

// =============================================================================
// Generator
// =============================================================================

// Generator 单实例雪花 ID 生成器。
//
// Generator 不是并发安全的：状态只由 Next 修改，且没有内部锁，
// 热路径仅包含一次时钟读取和若干整数比较。多个 goroutine 共享同一生成器时，
// 调用方需自行加锁，或使用 [SyncGenerator]。
// 不同实例号的生成器可以无协调地并发运行，唯一性由实例字段在结构上保证。
type Generator struct {
	clock    Clock
	epoch    int64
	last     int64 // 上次发号的时间戳（相对 epoch），或起点
	instance int64 // 已左移到字段位置
	seq      int64

	maxWaitDuration time.Duration
	retryInterval   time.Duration
	logger          xlog.Logger
	observer        xmetrics.Observer
}

// NewGenerator 创建生成器。
//
// 校验顺序：
//  1. 当前时间相对 epoch 已超出 MaxTimestamp → ErrOverflow
//  2. 起点为负或晚于当前时间 → RangeError(timestamp)
//  3. epoch 为负或晚于当前时间 → RangeError(epoch)
//  4. instance、seq 越界 → RangeError
//
// 选项本身无效（nil 时钟、负的等待参数）时返回 [ErrInvalidConfig]。
func NewGenerator(instance int64, opts ...Option) (*Generator, error) {
	cfg := &options{}
	// 设计决策: nil Option 静默跳过，便于条件式拼接选项列表。
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	clock := cfg.clock
	if !cfg.clockSet {
		clock = SystemClock{}
	}
	now := clock.NowMilli()

	if now-cfg.epoch > MaxTimestamp {
		return nil, fmt.Errorf("%w: now %d exceeds epoch %d by more than %d ms",
			ErrOverflow, now, cfg.epoch, MaxTimestamp)
	}

	start := now
	if cfg.startSet {
		start = cfg.startTimestamp
	}
	if err := checkRange(FieldTimestamp, start, 0, now); err != nil {
		return nil, err
	}
	if err := checkRange(FieldEpoch, cfg.epoch, 0, now); err != nil {
		return nil, err
	}
	if err := checkRange(FieldInstance, instance, 0, MaxInstance); err != nil {
		return nil, err
	}
	if err := checkRange(FieldSequence, cfg.seq, 0, MaxSequence); err != nil {
		return nil, err
	}

	g := &Generator{
		clock:           clock,
		epoch:           cfg.epoch,
		last:            start - cfg.epoch,
		instance:        instance << InstanceShift,
		seq:             cfg.seq,
		maxWaitDuration: DefaultMaxWaitDuration,
		retryInterval:   DefaultRetryInterval,
		logger:          cfg.logger,
		observer:        cfg.observer,
	}
	if cfg.maxWaitSet {
		g.maxWaitDuration = cfg.maxWaitDuration
	}
	if cfg.retryIntervalSet {
		g.retryInterval = cfg.retryInterval
	}
	if g.logger == nil {
		g.logger = xlog.Discard()
	}
	return g, nil
}

// FromSnowflake 从已发出的 ID 恢复生成器，用于重启后续发。
//
// 等价于以 sf 的实例、序列号、epoch 为参数，并以 sf 的绝对时间为起点调用
// NewGenerator，因此 LastTimestamp() == sf.Timestamp()；
// 若首次 Next 与 sf 处于同一毫秒，产出的序列号为 sf.Seq()+1。
// opts 在这些参数之后应用，可覆盖时钟等设置。
func FromSnowflake(sf Snowflake, opts ...Option) (*Generator, error) {
	base := []Option{
		WithSequence(sf.Seq()),
		WithEpoch(sf.Epoch()),
		WithStartTimestamp(sf.Milliseconds()),
	}
	return NewGenerator(sf.Instance(), append(base, opts...)...)
}

// validate 校验与状态无关的选项。
func (o *options) validate() error {
	if o.clockSet && o.clock == nil {
		return fmt.Errorf("%w: nil clock", ErrInvalidConfig)
	}
	// ClockFunc(nil) 是非 nil 接口值，首次 NowMilli 即 panic
	if f, ok := o.clock.(ClockFunc); ok && f == nil {
		return fmt.Errorf("%w: nil clock func", ErrInvalidConfig)
	}
	if o.maxWaitDuration < 0 {
		return fmt.Errorf("%w: max wait duration must be non-negative, got %s", ErrInvalidConfig, o.maxWaitDuration)
	}
	if o.retryInterval < 0 {
		return fmt.Errorf("%w: retry interval must be non-negative, got %s", ErrInvalidConfig, o.retryInterval)
	}
	return nil
}

// Next 执行一次生成。
//
// 与上次发号处于同一毫秒时递增序列号，序列号已满则返回 StatusSequenceExhausted；
// 时钟前进时序列号归零；时钟回拨时返回 StatusClockBackward。
// 两种不可用结果都不修改任何状态，后续调用的行为与本次未发生时一致。
//
// 仅当 epoch 的时间戳预算耗尽时返回错误（匹配 [ErrOverflow]）。
func (g *Generator) Next() (Result, error) {
	if g == nil || g.clock == nil {
		return Result{}, ErrNilGenerator
	}
	current := g.clock.NowMilli() - g.epoch
	if current > MaxTimestamp {
		return Result{}, fmt.Errorf("%w: timestamp %d exceeds %d", ErrOverflow, current, MaxTimestamp)
	}

	switch {
	case current == g.last:
		if g.seq >= MaxSequence {
			return Result{Status: StatusSequenceExhausted}, nil
		}
		g.seq++
	case current > g.last:
		g.seq = 0
	default:
		return Result{Status: StatusClockBackward}, nil
	}
	g.last = current

	return Result{ID: g.last<<TimestampShift | g.instance | g.seq, Status: StatusProduced}, nil
}

// NextID 生成下一个 ID，不可用时返回匹配 [ErrUnavailable] 的错误。
func (g *Generator) NextID() (int64, error) {
	res, err := g.Next()
	if err != nil {
		return 0, err
	}
	if !res.OK() {
		return 0, res.Err()
	}
	return res.ID, nil
}

// All 返回无界的惰性生成序列，每次迭代执行一次 Next。
//
// 不可用结果照常产出（Result.OK() 为 false），由消费方决定等待或丢弃；
// 遇到溢出错误时产出该错误后结束。消费方 break 即停止。
func (g *Generator) All() iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		for {
			res, err := g.Next()
			if !yield(res, err) || err != nil {
				return
			}
		}
	}
}

// =============================================================================
// 访问器
// =============================================================================

// Epoch 返回 epoch（Unix 毫秒）。
func (g *Generator) Epoch() int64 { return g.epoch }

// Instance 返回实例号（未移位）。
func (g *Generator) Instance() int64 { return g.instance >> InstanceShift }

// LastTimestamp 返回最近一次发号（或起点）相对 epoch 的时间戳。
func (g *Generator) LastTimestamp() int64 { return g.last }

// Sequence 返回当前序列号。
func (g *Generator) Sequence() int64 { return g.seq }

// Decode 以本生成器的 epoch 宽松解码 ID。
func (g *Generator) Decode(id int64) Snowflake { return Parse(id, g.epoch) }
