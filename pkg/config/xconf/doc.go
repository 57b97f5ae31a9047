// Package xconf 提供配置文件加载与反序列化，基于 koanf 实现。
//
// # 设计理念
//
// xconf 只负责加载（文件或字节）、反序列化和手动重载。
// 默认值与字段校验由使用方完成（例如 xflake.Config.Options）。
//
// # 支持的格式
//
//   - YAML：.yaml, .yml
//   - JSON：.json
//
// # 并发安全
//
// Reload 通过互斥锁串行化，解析成功后原子替换 koanf 实例；
// 解析失败时保留旧配置。Client 返回当前快照。
//
// # Unmarshal
//
// 使用 koanf 默认的 mapstructure 解码：允许弱类型转换，
// 时长字段可写为 "500ms"、"1s" 等字符串。
//
//	cfg, err := xconf.New("xflake.yaml")
//	var gen xflake.Config
//	err = cfg.Unmarshal("generator", &gen)
package xconf
