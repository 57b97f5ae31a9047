package xlog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Level 日志级别，数值与 slog.Level 一致。
type Level slog.Level

const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// ErrUnknownLevel 级别名称无法识别。
var ErrUnknownLevel = errors.New("xlog: unknown level")

// levelNames 按严重程度升序排列，名称即配置文件与命令行接受的取值。
var levelNames = [...]struct {
	name  string
	level Level
}{
	{"debug", LevelDebug},
	{"info", LevelInfo},
	{"warn", LevelWarn},
	{"error", LevelError},
}

// LevelNames 返回可配置的级别名称（小写，升序）。
func LevelNames() []string {
	names := make([]string, len(levelNames))
	for i, ln := range levelNames {
		names[i] = ln.name
	}
	return names
}

// String 返回小写级别名称，与 ParseLevel 互逆；
// 非标准级别回退到 slog 的表示（如 "INFO+2"）。
func (l Level) String() string {
	for _, ln := range levelNames {
		if ln.level == l {
			return ln.name
		}
	}
	return slog.Level(l).String()
}

// ParseLevel 解析级别名称，大小写不敏感，"warning" 视为 warn。
// 无法识别时返回包装 ErrUnknownLevel 的错误，错误信息列出可选值。
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		return LevelWarn, nil
	}
	for _, ln := range levelNames {
		if ln.name == name {
			return ln.level, nil
		}
	}
	return LevelInfo, fmt.Errorf("%w %q (valid: %s)", ErrUnknownLevel, s, strings.Join(LevelNames(), ", "))
}
