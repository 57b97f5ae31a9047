package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xflake/pkg/util/xflake"
)

// flag 名称
const (
	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"

	flagInstance  = "instance"
	flagEpoch     = "epoch"
	flagCount     = "count"
	flagEncoding  = "encoding"
	flagRetry     = "retry"
	flagStats     = "stats"
	flagStrict    = "strict"
	flagTZ        = "tz"
	flagTimestamp = "timestamp"
	flagSeq       = "seq"
)

// maxGenCount 单次 gen 的数量上限。
const maxGenCount = 1 << 20

// exitError 表示需要非零退出码但已完成输出的场景。
// 命令内部已完成所有输出，main 只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError 表示参数错误，对应退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// usagef 构造 usageError。
func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// isCLIUsageError 报告 err 是否为 urfave/cli 自身产生的用法错误（如未知帮助主题）。
func isCLIUsageError(err error) bool {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return true
	}
	msg := err.Error()
	for _, prefix := range []string{
		"flag provided but not defined",
		"No help topic for",
		"Required flag",
	} {
		if strings.Contains(msg, prefix) {
			return true
		}
	}
	return false
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createGenCommand(),
		createParseCommand(),
		createPackCommand(),
		createInstanceCommand(),
	}
}

// encodingFlag 各命令共用的编码选项。
func encodingFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    flagEncoding,
		Aliases: []string{"e"},
		Usage:   "文本编码 (" + encodingNames() + ")",
		Value:   string(xflake.EncodingDecimal),
	}
}

func epochFlag() *cli.Int64Flag {
	return &cli.Int64Flag{
		Name:  flagEpoch,
		Usage: "epoch（Unix 毫秒）",
	}
}

func encodingNames() string {
	encs := xflake.Encodings()
	names := make([]string, len(encs))
	for i, enc := range encs {
		names[i] = string(enc)
	}
	return strings.Join(names, "/")
}

// createGenCommand 创建 gen 子命令。
func createGenCommand() *cli.Command {
	return &cli.Command{
		Name:    "gen",
		Aliases: []string{"g"},
		Usage:   "生成 ID，每行一个",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:    flagInstance,
				Aliases: []string{"i"},
				Usage:   "实例号 [0, 1023]（默认: 配置文件，其次自动解析）",
			},
			epochFlag(),
			&cli.IntFlag{
				Name:    flagCount,
				Aliases: []string{"n"},
				Usage:   "生成数量",
				Value:   1,
			},
			encodingFlag(),
			&cli.BoolFlag{
				Name:  flagRetry,
				Usage: "ID 暂不可用时等待重试（--retry=false 时立即失败）",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  flagStats,
				Usage: "结束后向 stderr 输出等待统计",
			},
		},
		Action: cmdGen,
	}
}

// createParseCommand 创建 parse 子命令。
func createParseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Aliases:   []string{"p"},
		Usage:     "解析 ID 的各字段",
		ArgsUsage: "<id> [id...]",
		Flags: []cli.Flag{
			epochFlag(),
			encodingFlag(),
			&cli.BoolFlag{
				Name:  flagStrict,
				Usage: "拒绝负数 ID 与负 epoch",
			},
			&cli.StringFlag{
				Name:  flagTZ,
				Usage: "时间显示时区（IANA 名称，如 Asia/Shanghai）",
				Value: "UTC",
			},
		},
		Action: cmdParse,
	}
}

// createPackCommand 创建 pack 子命令。
func createPackCommand() *cli.Command {
	return &cli.Command{
		Name:  "pack",
		Usage: "由时间戳、实例号、序列号组装 ID",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     flagTimestamp,
				Aliases:  []string{"t"},
				Usage:    "相对 epoch 的毫秒时间戳 [0, 2^41-1]",
				Required: true,
			},
			&cli.Int64Flag{
				Name:    flagInstance,
				Aliases: []string{"i"},
				Usage:   "实例号 [0, 1023]",
			},
			&cli.Int64Flag{
				Name:    flagSeq,
				Aliases: []string{"s"},
				Usage:   "序列号 [0, 4095]",
			},
			epochFlag(),
			encodingFlag(),
		},
		Action: cmdPack,
	}
}

// createInstanceCommand 创建 instance 子命令。
func createInstanceCommand() *cli.Command {
	return &cli.Command{
		Name:   "instance",
		Usage:  "打印自动解析的实例号（" + xflake.EnvInstance + " > POD_NAME > HOSTNAME > 主机名 > 私有 IP）",
		Action: cmdInstance,
	}
}

// =============================================================================
// 命令实现
// =============================================================================

// cmdGen 生成 ID。
//
// 设计决策: 默认走 Take（NextWithRetry），同一毫秒内超过 4096 个时等待下一毫秒，
// 因此 -n 很大时输出速率受限于 4096/ms；--retry=false 时遇到不可用立即失败。
func cmdGen(ctx context.Context, cmd *cli.Command) error {
	enc, err := xflake.ParseEncoding(cmd.String(flagEncoding))
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	count := cmd.Int(flagCount)
	if count < 1 || count > maxGenCount {
		return usagef("--count 必须在 [1, %d] 范围内，当前: %d", maxGenCount, count)
	}

	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg := rt.generator
	if cmd.IsSet(flagInstance) {
		instance := cmd.Int64(flagInstance)
		cfg.Instance = &instance
	}
	if cmd.IsSet(flagEpoch) {
		cfg.Epoch = cmd.Int64(flagEpoch)
	}

	opts := []xflake.Option{xflake.WithLogger(rt.logger)}
	var stats *genStats
	if cmd.Bool(flagStats) {
		if stats, err = newGenStats(); err != nil {
			return err
		}
		opts = append(opts, xflake.WithObserver(stats.observer))
	}

	g, err := xflake.NewGeneratorFromConfig(cfg, opts...)
	if err != nil {
		if errors.Is(err, xflake.ErrRange) {
			return &usageError{msg: err.Error()}
		}
		return err
	}

	rt.logger.Debug(ctx, "xflakectl: generator ready",
		slog.Int64(xflake.FieldInstance, g.Instance()),
		slog.Int64(xflake.FieldEpoch, g.Epoch()),
		slog.Int(flagCount, count),
	)

	w := cmd.Root().Writer
	if cmd.Bool(flagRetry) {
		for id, err := range g.Take(ctx, count) {
			if err != nil {
				return err
			}
			if err := writeID(w, id, enc); err != nil {
				return err
			}
		}
	} else {
		for range count {
			id, err := g.NextID()
			if err != nil {
				return err
			}
			if err := writeID(w, id, enc); err != nil {
				return err
			}
		}
	}

	if stats != nil {
		return stats.report(ctx, cmd.Root().ErrWriter)
	}
	return nil
}

func writeID(w io.Writer, id int64, enc xflake.Encoding) error {
	s, err := xflake.FormatID(id, enc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

// cmdParse 解析一个或多个 ID 并逐个打印字段。
// epoch 取 --epoch，未指定时取配置文件 generator.epoch。
// 任一 ID 非法时继续处理其余 ID，最终以退出码 2 结束。
func cmdParse(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return usagef("parse 命令需要至少一个 ID")
	}
	enc, err := xflake.ParseEncoding(cmd.String(flagEncoding))
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	loc, err := time.LoadLocation(cmd.String(flagTZ))
	if err != nil {
		return usagef("无效时区 %q: %v", cmd.String(flagTZ), err)
	}
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	epoch := rt.generator.Epoch
	if cmd.IsSet(flagEpoch) {
		epoch = cmd.Int64(flagEpoch)
	}
	strict := cmd.Bool(flagStrict)
	rt.logger.Debug(ctx, "xflakectl: parsing ids",
		slog.Int(flagCount, len(args)),
		slog.Int64(xflake.FieldEpoch, epoch),
	)

	w := cmd.Root().Writer
	errW := cmd.Root().ErrWriter
	failed, printed := false, 0
	for _, arg := range args {
		sf, err := parseOne(arg, enc, epoch, strict)
		if err != nil {
			fmt.Fprintf(errW, "%s: %v\n", arg, err)
			failed = true
			continue
		}
		if printed > 0 {
			fmt.Fprintln(w)
		}
		printSnowflake(w, sf, loc)
		printed++
	}
	if failed {
		return &exitError{code: 2}
	}
	return nil
}

func parseOne(s string, enc xflake.Encoding, epoch int64, strict bool) (xflake.Snowflake, error) {
	sf, err := xflake.ParseString(strings.TrimSpace(s), enc, epoch)
	if err != nil || !strict {
		return sf, err
	}
	return xflake.ParseStrict(sf.Value(), epoch)
}

func printSnowflake(w io.Writer, sf xflake.Snowflake, loc *time.Location) {
	fmt.Fprintf(w, "id:        %d\n", sf.Value())
	fmt.Fprintf(w, "%-10s %d\n", xflake.FieldTimestamp+":", sf.Timestamp())
	fmt.Fprintf(w, "%-10s %d\n", xflake.FieldInstance+":", sf.Instance())
	fmt.Fprintf(w, "%-10s %d\n", xflake.FieldSequence+":", sf.Seq())
	fmt.Fprintf(w, "%-10s %d\n", xflake.FieldEpoch+":", sf.Epoch())
	fmt.Fprintf(w, "unix_ms:   %d\n", sf.Milliseconds())
	fmt.Fprintf(w, "time:      %s\n", sf.In(loc).Format(time.RFC3339Nano))
	if !sf.IsValid() {
		fmt.Fprintln(w, "valid:     false")
	}
}

// cmdPack 严格校验各字段后组装 ID。
func cmdPack(_ context.Context, cmd *cli.Command) error {
	enc, err := xflake.ParseEncoding(cmd.String(flagEncoding))
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	sf, err := xflake.New(
		cmd.Int64(flagTimestamp),
		cmd.Int64(flagInstance),
		cmd.Int64(flagEpoch),
		cmd.Int64(flagSeq),
	)
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	return writeID(cmd.Root().Writer, sf.Value(), enc)
}

// cmdInstance 打印自动解析的实例号。
// 配置文件中显式配置了 generator.instance 时打印配置值。
func cmdInstance(_ context.Context, cmd *cli.Command) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	instance, err := rt.generator.ResolveInstance()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, instance)
	return err
}

// setupSignalHandler 设置信号处理。
// 设计决策: 第一次信号优雅取消（gen 的等待随之结束），第二次信号强制退出（退出码 130）。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()

		<-sigCh
		signal.Stop(sigCh)
		os.Exit(130)
	}()
}
