package xflake

import (
	"fmt"
	"time"
)

// Config 生成器的文件配置，字段使用 koanf 标签，可由 xconf 直接反序列化：
//
//	generator:
//	  instance: 363          # 省略时使用 DefaultInstance
//	  epoch: 1288834974657   # Unix 毫秒
//	  max_wait: 500ms
//	  retry_interval: 1ms
type Config struct {
	Instance      *int64        `koanf:"instance"`
	Epoch         int64         `koanf:"epoch"`
	MaxWait       time.Duration `koanf:"max_wait"`
	RetryInterval time.Duration `koanf:"retry_interval"`
}

// Options 将配置转换为生成器选项。零值时长保留默认值。
func (c Config) Options() []Option {
	opts := []Option{WithEpoch(c.Epoch)}
	if c.MaxWait != 0 {
		opts = append(opts, WithMaxWaitDuration(c.MaxWait))
	}
	if c.RetryInterval != 0 {
		opts = append(opts, WithRetryInterval(c.RetryInterval))
	}
	return opts
}

// ResolveInstance 返回配置的实例号，未配置时回退到 DefaultInstance。
func (c Config) ResolveInstance() (int64, error) {
	if c.Instance != nil {
		return *c.Instance, nil
	}
	id, err := DefaultInstance()
	if err != nil {
		return 0, fmt.Errorf("%w: resolve instance: %w", ErrInvalidConfig, err)
	}
	return id, nil
}

// NewGeneratorFromConfig 按配置创建生成器。opts 在配置项之后应用，可覆盖配置。
func NewGeneratorFromConfig(cfg Config, opts ...Option) (*Generator, error) {
	instance, err := cfg.ResolveInstance()
	if err != nil {
		return nil, err
	}
	return NewGenerator(instance, append(cfg.Options(), opts...)...)
}
