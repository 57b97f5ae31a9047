// xflakectl 是 xflake 雪花 ID 的命令行工具。
//
// 用法:
//
//	xflakectl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config      配置文件路径（YAML/JSON，按扩展名识别）
//	    --log-level   日志级别 (debug/info/warn/error，默认: warn)
//	    --log-format  日志格式 (text/json，默认: text)
//
// 命令:
//
//	gen            生成 ID
//	parse <id>...  解析 ID 的各字段
//	pack           由字段组装 ID
//	instance       打印自动解析的实例号
//	help           显示帮助信息
//
// 实例号解析顺序（gen 命令）:
//
//	--instance > 配置文件 generator.instance > XFLAKE_INSTANCE > POD_NAME 哈希
//	> HOSTNAME 哈希 > os.Hostname() 哈希 > 私有 IPv4 低 10 位
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（溢出、等待超时、配置加载失败等）
//	2: 参数错误（非法 ID、字段越界、未知编码、未知命令等）
//
// 示例:
//
//	xflakectl gen -n 5                               # 生成 5 个 ID
//	xflakectl gen -i 363 --epoch 1288834974657 -e base58
//	xflakectl parse --epoch 1288834974657 856165981072306191
//	xflakectl parse -e base36 --tz Asia/Shanghai 6i65idwbw8wf
//	xflakectl pack --timestamp 204125876682 --instance 363 --seq 15
//	xflakectl -c xflake.yaml gen                     # 使用配置文件
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xflake/pkg/observability/xlog"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	app := &cli.Command{
		Name:    "xflakectl",
		Usage:   "xflake 雪花 ID 命令行工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "配置文件路径（YAML/JSON）",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "日志级别 (" + strings.Join(xlog.LevelNames(), "/") + "，默认: " + defaultLogLevel + ")",
			},
			&cli.StringFlag{
				Name:  flagLogFormat,
				Usage: "日志格式 (text/json)",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		Authors: []any{
			"XFlake Team",
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射。
		ExitErrHandler: func(_ context.Context, cmd *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(cmd.Root().ErrWriter, err)
			}
		},
		Description: `xflakectl 生成与解析 64 位雪花 ID。

位布局（高位到低位）:
  1 位符号（恒为 0）| 41 位毫秒时间戳 | 10 位实例号 | 12 位序列号

时间戳相对 epoch（Unix 毫秒）计算，epoch 默认为 0。
同一 ID 在不同 epoch 下解析出的时间不同，解析时须使用生成时的 epoch。

支持的文本编码:
  decimal base2 base32 base36 base58 base64`,
	}
	markUsageErrors(app)
	return app
}

// markUsageErrors 将所有命令的 flag 解析错误转为 usageError。
func markUsageErrors(cmd *cli.Command) {
	cmd.OnUsageError = func(_ context.Context, _ *cli.Command, err error, _ bool) error {
		return &usageError{msg: err.Error()}
	}
	for _, sub := range cmd.Commands {
		markUsageErrors(sub)
	}
}

func run() int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 设置信号处理
	setupSignalHandler(cancel)

	if err := app.Run(ctx, os.Args); err != nil {
		return exitCode(os.Stderr, err)
	}
	return 0
}

// exitCode 将错误映射为退出码并向 w 输出错误详情。
func exitCode(w io.Writer, err error) int {
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(w, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		// ExitErrHandler 已向 stderr 输出错误详情，此处仅设置退出码
		return 2
	}
	fmt.Fprintf(w, "错误: %v\n", err)
	return 1
}
