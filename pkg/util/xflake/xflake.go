package xflake

import (
	"errors"
	"fmt"
)

// =============================================================================
// 位布局常量
// =============================================================================

// 设计决策: 位宽是跨进程的编码协议，固定为编译期常量，不提供运行时配置。
// 41 + 10 + 12 = 63 位，最高位恒为 0，打包值总是非负 int64。
const (
	TimestampBits = 41
	InstanceBits  = 10
	SequenceBits  = 12

	InstanceShift  = SequenceBits                // 12
	TimestampShift = InstanceBits + SequenceBits // 22

	// MaxTimestamp 时间戳字段最大值（2^41-1 = 2,199,023,255,551 毫秒，约 69.7 年）
	MaxTimestamp int64 = 1<<TimestampBits - 1
	// MaxInstance 实例字段最大值（1023）
	MaxInstance int64 = 1<<InstanceBits - 1
	// MaxSequence 序列号字段最大值（4095）
	MaxSequence int64 = 1<<SequenceBits - 1
)

// =============================================================================
// 错误定义
// =============================================================================

var (
	// ErrRange 字段超出取值范围。所有 *RangeError 均匹配此错误（errors.Is）。
	ErrRange = errors.New("xflake: value out of range")

	// ErrOverflow 当前 epoch 下 41 位时间戳已耗尽。
	// 对该 epoch 是致命错误，唯一的恢复方式是换用更新的 epoch 创建生成器。
	ErrOverflow = errors.New("xflake: timestamp overflow for epoch")

	// ErrUnavailable 本次生成没有产出 ID。调用方应稍后重试，而非视为硬失败。
	ErrUnavailable = errors.New("xflake: id unavailable")

	// ErrSequenceExhausted 当前毫秒内序列号已用尽。匹配 ErrUnavailable。
	ErrSequenceExhausted = fmt.Errorf("%w: sequence exhausted in current millisecond", ErrUnavailable)

	// ErrClockBackward 墙上时钟早于上次发号的时间戳。匹配 ErrUnavailable。
	ErrClockBackward = fmt.Errorf("%w: clock moved backwards", ErrUnavailable)

	// ErrWaitTimeout NextWithRetry 在最大等待时间内仍无法生成 ID。
	ErrWaitTimeout = errors.New("xflake: wait for available id timed out")

	// ErrInvalidConfig 生成器选项无效（负的等待时间、nil 时钟等）。
	ErrInvalidConfig = errors.New("xflake: invalid config")

	// ErrNilContext context 参数为 nil。
	ErrNilContext = errors.New("xflake: nil context")

	// ErrNilGenerator 生成器为 nil 或未通过 NewGenerator 创建。
	ErrNilGenerator = errors.New("xflake: nil generator (use NewGenerator to create)")

	// ErrInvalidEncoding 未知的文本编码，或字符串不符合编码格式。
	ErrInvalidEncoding = errors.New("xflake: invalid encoding")

	// ErrNoPrivateAddress 无法找到私有 IPv4 地址。
	ErrNoPrivateAddress = errors.New("xflake: no private IP address found")
)

// 字段名，用于 RangeError.Field。
const (
	FieldTimestamp = "timestamp"
	FieldInstance  = "instance"
	FieldSequence  = "seq"
	FieldEpoch     = "epoch"
	FieldRaw       = "raw"
)

// RangeError 描述越界的字段及其允许区间 [Min, Max]。
type RangeError struct {
	Field string
	Value int64
	Min   int64
	Max   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("xflake: %s must be in [%d, %d], got %d", e.Field, e.Min, e.Max, e.Value)
}

// Is 使 errors.Is(err, ErrRange) 对所有 RangeError 成立。
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// checkRange 校验 v ∈ [lo, hi]。
func checkRange(field string, v, lo, hi int64) error {
	if v < lo || v > hi {
		return &RangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}
