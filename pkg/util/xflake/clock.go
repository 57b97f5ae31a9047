package xflake

import "time"

//go:generate mockgen -source=clock.go -destination=mock_clock_test.go -package=xflake

// Clock 提供当前墙上时间（Unix 毫秒）。
//
// 生成器的唯一外部依赖。测试通过注入 Clock 模拟时钟前进、回拨与跨毫秒，
// 无需真实等待。
type Clock interface {
	NowMilli() int64
}

// ClockFunc 将普通函数适配为 Clock。
type ClockFunc func() int64

// NowMilli 调用 f。
func (f ClockFunc) NowMilli() int64 { return f() }

// SystemClock 基于 time.Now 的 Clock。
type SystemClock struct{}

// NowMilli 返回当前 Unix 毫秒时间。
func (SystemClock) NowMilli() int64 { return time.Now().UnixMilli() }
