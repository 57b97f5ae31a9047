package xconf

import (
	"errors"

	"github.com/knadh/koanf/v2"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// 配置加载和解析相关错误。
var (
	ErrEmptyPath          = errors.New("xconf: empty config path")
	ErrUnsupportedFormat  = errors.New("xconf: unsupported config format")
	ErrLoadFailed         = errors.New("xconf: failed to load config")
	ErrParseFailed        = errors.New("xconf: failed to parse config")
	ErrUnmarshalFailed    = errors.New("xconf: failed to unmarshal config")
	ErrReloadNotSupported = errors.New("xconf: cannot reload config created from bytes")
)

// Config 定义配置接口。
type Config interface {
	// Client 返回当前的 koanf 实例快照。
	Client() *koanf.Koanf

	// Unmarshal 将 path 下的配置反序列化到 target，path 为空时反序列化整个配置。
	Unmarshal(path string, target any) error

	// Reload 重新读取配置文件。从字节创建的 Config 返回 ErrReloadNotSupported。
	Reload() error

	// Path 返回配置文件路径，从字节创建时为空。
	Path() string

	// Format 返回配置格式。
	Format() Format
}

// MustUnmarshal 与 Config.Unmarshal 相同，失败时 panic。
// 适用于启动阶段的必要配置。
func MustUnmarshal(cfg Config, path string, target any) {
	if err := cfg.Unmarshal(path, target); err != nil {
		panic(err)
	}
}

// Options 定义配置加载选项。
type Options struct {
	// Delim 键分隔符，默认 "."。
	Delim string
	// Tag 结构体标签名，默认 "koanf"。
	Tag string
}

// Option 定义配置选项函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{Delim: ".", Tag: "koanf"}
}

// WithDelim 设置键分隔符，空串忽略。
func WithDelim(delim string) Option {
	return func(o *Options) {
		if delim != "" {
			o.Delim = delim
		}
	}
}

// WithTag 设置结构体标签名，空串忽略。
func WithTag(tag string) Option {
	return func(o *Options) {
		if tag != "" {
			o.Tag = tag
		}
	}
}

func applyOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
