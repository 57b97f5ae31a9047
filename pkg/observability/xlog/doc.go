// Package xlog 基于 log/slog 的结构化日志库。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、轮转）
//   - 动态级别调整（运行时热更新）
//   - 全局 Logger 便利函数
//   - Discard：丢弃所有输出的空 Logger，供库代码作为默认值
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，Build 返回该错误）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xflake/xflakectl.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// 所有日志方法都接收 context.Context 与 slog.Attr，保证类型安全。
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)。
// 可通过 [ParseLevel] 从字符串解析。Level 实现 encoding.TextMarshaler/TextUnmarshaler，
// 支持配置文件直接反序列化。
//
// # 轮转
//
// [Builder.SetRotation] 基于 lumberjack 按大小轮转，cleanup 负责关闭文件。
package xlog
