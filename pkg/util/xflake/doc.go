// Package xflake 提供 64 位雪花 ID 的编解码与单实例生成器。
//
// # ID 结构
//
//	 1 bit  - 恒为 0（打包值总是非负 int64）
//	41 bits - 时间戳（相对 epoch 的毫秒数，约 69.7 年）
//	10 bits - 实例号（0-1023）
//	12 bits - 毫秒内序列号（0-4095）
//
// 位布局与 Twitter Snowflake 及 bwmarrin/snowflake 默认布局一致，
// 打包值可以互相解析。
//
// # 编解码
//
//	sf, err := xflake.New(ts, instance, epoch, seq) // 严格校验
//	id := sf.Value()
//	back := xflake.Parse(id, epoch)                  // 宽松解码，不报错
//	s, _ := back.Format(xflake.EncodingBase58)
//
// # 生成器
//
//	g, err := xflake.NewGenerator(363, xflake.WithEpoch(1288834974657))
//	res, err := g.Next()
//	if err != nil {
//		// 仅 ErrOverflow：该 epoch 的时间戳已耗尽
//	}
//	if !res.OK() {
//		// 序列号耗尽或时钟回拨，稍后重试
//	}
//
// Next 从不阻塞、不记录日志。需要等待时使用 NextWithRetry：
//
//	id, err := g.NextWithRetry(ctx) // 默认最多等待 500ms
//
// # 并发
//
// Generator 没有内部锁。同一实例号被多个 goroutine 共享时使用
// [SyncGenerator]；不同实例号的生成器可以无协调地并发运行。
//
// # 实例号
//
// [DefaultInstance] 依次尝试 XFLAKE_INSTANCE、POD_NAME、HOSTNAME、
// os.Hostname() 与私有 IPv4 地址。哈希得到的实例号存在碰撞可能，
// 多节点部署请显式分配。
package xflake
