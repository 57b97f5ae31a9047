package xflake

import (
	"math"
	"strconv"
	"time"
)

// Snowflake 是解码后的雪花 ID，不可变值对象。
//
// 只能通过 New（严格校验）、Parse（宽松解码）、ParseStrict 或
// Generator.Decode 构造，创建后没有任何修改方法，可在 goroutine 间自由复制共享。
//
// 设计决策: 字段统一使用 int64，与打包值类型一致，
// 且能表达负数输入以便在 New 中给出明确的 RangeError，而非静默截断。
type Snowflake struct {
	timestamp int64
	instance  int64
	epoch     int64
	seq       int64
}

// New 由字段严格构造 Snowflake。
//
// 按 epoch → timestamp → instance → seq 的顺序校验，
// 首个越界字段返回 *RangeError（匹配 [ErrRange]）。
func New(timestamp, instance, epoch, seq int64) (Snowflake, error) {
	if err := checkRange(FieldEpoch, epoch, 0, math.MaxInt64); err != nil {
		return Snowflake{}, err
	}
	if err := checkRange(FieldTimestamp, timestamp, 0, MaxTimestamp); err != nil {
		return Snowflake{}, err
	}
	if err := checkRange(FieldInstance, instance, 0, MaxInstance); err != nil {
		return Snowflake{}, err
	}
	if err := checkRange(FieldSequence, seq, 0, MaxSequence); err != nil {
		return Snowflake{}, err
	}
	return Snowflake{timestamp: timestamp, instance: instance, epoch: epoch, seq: seq}, nil
}

// MustNew 与 New 相同，但失败时 panic。适用于常量/测试数据。
func MustNew(timestamp, instance, epoch, seq int64) Snowflake {
	sf, err := New(timestamp, instance, epoch, seq)
	if err != nil {
		panic(err)
	}
	return sf
}

// Pack 将已校验的字段打包为 64 位整数：timestamp<<22 | instance<<12 | seq。
//
// 纯算术，不做校验；越界输入会污染相邻字段。需要校验时使用 New。
func Pack(timestamp, instance, seq int64) int64 {
	return timestamp<<TimestampShift | instance<<InstanceShift | seq
}

// Parse 宽松解码打包值，timestamp 相对于 epoch 保存。
//
// 设计决策: Parse 不校验输入。raw 按无符号位模式做逻辑右移，
// 因此最高位被置位的畸形输入会得到超过 MaxTimestamp 的时间戳（而不是负数），
// 可通过 [Snowflake.IsValid] 识别。需要拒绝此类输入时使用 [ParseStrict]。
func Parse(raw, epoch int64) Snowflake {
	u := uint64(raw)
	return Snowflake{
		timestamp: int64(u >> TimestampShift),
		instance:  int64(u>>InstanceShift) & MaxInstance,
		seq:       int64(u) & MaxSequence,
		epoch:     epoch,
	}
}

// ParseStrict 解码打包值，并拒绝不可能由本编码产生的输入。
//
// raw 为负（最高位被置位）或 epoch 为负时返回 *RangeError。
// 非负 raw 的各字段必然在范围内，无需逐一检查。
func ParseStrict(raw, epoch int64) (Snowflake, error) {
	if err := checkRange(FieldRaw, raw, 0, math.MaxInt64); err != nil {
		return Snowflake{}, err
	}
	if err := checkRange(FieldEpoch, epoch, 0, math.MaxInt64); err != nil {
		return Snowflake{}, err
	}
	return Parse(raw, epoch), nil
}

// =============================================================================
// 字段访问
// =============================================================================

// Timestamp 返回相对 epoch 的毫秒数。
func (s Snowflake) Timestamp() int64 { return s.timestamp }

// Instance 返回实例号。
func (s Snowflake) Instance() int64 { return s.instance }

// Epoch 返回 epoch（Unix 毫秒）。
func (s Snowflake) Epoch() int64 { return s.epoch }

// Seq 返回毫秒内序列号。
func (s Snowflake) Seq() int64 { return s.seq }

// IsValid 报告所有字段是否满足位布局约束。
// 通过 New/ParseStrict 构造的值总是有效；Parse 的畸形输入可能无效。
func (s Snowflake) IsValid() bool {
	return s.epoch >= 0 &&
		s.timestamp >= 0 && s.timestamp <= MaxTimestamp &&
		s.instance >= 0 && s.instance <= MaxInstance &&
		s.seq >= 0 && s.seq <= MaxSequence
}

// Value 返回打包后的 64 位整数。
func (s Snowflake) Value() int64 {
	return Pack(s.timestamp, s.instance, s.seq)
}

// Int64 等同于 Value。
func (s Snowflake) Int64() int64 { return s.Value() }

// String 返回打包值的十进制表示。
func (s Snowflake) String() string {
	return strconv.FormatInt(s.Value(), 10)
}

// =============================================================================
// 时间换算
// =============================================================================

// Milliseconds 返回 Unix 毫秒时间：timestamp + epoch。
func (s Snowflake) Milliseconds() int64 {
	return s.timestamp + s.epoch
}

// Seconds 返回 Unix 秒（浮点）。
func (s Snowflake) Seconds() float64 {
	return float64(s.Milliseconds()) / 1000
}

// Time 返回 UTC 时间。
func (s Snowflake) Time() time.Time {
	return time.UnixMilli(s.Milliseconds()).UTC()
}

// In 返回指定时区的时间。loc 为 nil 时使用 time.Local。
func (s Snowflake) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(s.Milliseconds()).In(loc)
}

// EpochDuration 以 time.Duration 表示 epoch（自 Unix 纪元起）。
func (s Snowflake) EpochDuration() time.Duration {
	return time.Duration(s.epoch) * time.Millisecond
}

// =============================================================================
// 文本序列化
// =============================================================================

// MarshalText 输出十进制字符串。
func (s Snowflake) MarshalText() ([]byte, error) {
	return strconv.AppendInt(nil, s.Value(), 10), nil
}

// MarshalJSON 输出带引号的十进制字符串，避免 JavaScript 客户端丢失精度。
func (s Snowflake) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, 21)
	b = append(b, '"')
	b = strconv.AppendInt(b, s.Value(), 10)
	return append(b, '"'), nil
}
