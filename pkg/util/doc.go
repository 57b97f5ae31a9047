// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xflake: 64 位雪花 ID 编解码与生成器（41 位毫秒时间戳、10 位实例号、12 位序列号）
//
// 设计原则：
//   - 值对象不可变，字段越界统一返回可用 errors.Is 匹配的哨兵错误
//   - 生成步骤不阻塞、不记日志，等待与观测放在外层
package util
