package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xflake/pkg/config/xconf"
	"github.com/omeyang/xflake/pkg/observability/xlog"
	"github.com/omeyang/xflake/pkg/util/xflake"
)

// 配置文件中的顶层节点
const (
	sectionGenerator = "generator"
	sectionLog       = "log"
)

const defaultLogLevel = "warn"

// logConfig 配置文件 log 节点：
//
//	log:
//	  level: info
//	  format: json
//	  file: /var/log/xflakectl.log   # 省略时输出到 stderr
//	  max_size_mb: 100
//	  max_backups: 7
//	  max_age_days: 30
//	  compress: true
type logConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// runtime 命令执行期依赖：生成器配置与日志器。
type runtime struct {
	generator xflake.Config
	logger    xlog.Logger
	cleanup   func() error
}

func (r *runtime) close() {
	if r.cleanup != nil {
		_ = r.cleanup() //nolint:errcheck // 退出前尽力关闭日志文件
	}
}

// loadRuntime 加载 --config 指定的配置文件（可选），并按配置与全局 flag 构建日志器。
// 命令行 flag 优先于配置文件。
func loadRuntime(cmd *cli.Command) (*runtime, error) {
	var (
		genCfg xflake.Config
		logCfg = logConfig{
			MaxBackups: xlog.DefaultMaxBackups,
			MaxAgeDays: xlog.DefaultMaxAgeDays,
		}
	)

	if path := cmd.String(flagConfig); path != "" {
		cfg, err := xconf.New(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Unmarshal(sectionGenerator, &genCfg); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Unmarshal(sectionLog, &logCfg); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if cmd.IsSet(flagLogLevel) {
		logCfg.Level = cmd.String(flagLogLevel)
	}
	if cmd.IsSet(flagLogFormat) {
		logCfg.Format = cmd.String(flagLogFormat)
	}
	if logCfg.Level == "" {
		logCfg.Level = defaultLogLevel
	}
	level, err := xlog.ParseLevel(logCfg.Level)
	if err != nil {
		return nil, usagef("无效日志级别 %q，可选: %s", logCfg.Level, strings.Join(xlog.LevelNames(), "/"))
	}

	logger, cleanup, err := buildLogger(cmd, level, logCfg)
	if err != nil {
		return nil, &usageError{msg: err.Error()}
	}
	return &runtime{generator: genCfg, logger: logger, cleanup: cleanup}, nil
}

func buildLogger(cmd *cli.Command, level xlog.Level, cfg logConfig) (xlog.Logger, func() error, error) {
	b := xlog.New().
		SetOutput(cmd.Root().ErrWriter).
		SetLevel(level).
		SetFormat(cfg.Format)
	if cfg.File != "" {
		b.SetRotation(cfg.File,
			xlog.WithMaxSizeMB(cfg.MaxSizeMB),
			xlog.WithMaxBackups(cfg.MaxBackups),
			xlog.WithMaxAgeDays(cfg.MaxAgeDays),
			xlog.WithCompress(cfg.Compress),
		)
	}
	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, cleanup, nil
}
