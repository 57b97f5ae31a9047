package xflake

import (
	"context"
	"sync"
)

// SyncGenerator 以互斥锁包装 Generator，供多个 goroutine 共享同一实例号。
//
// NextWithRetry 在等待期间持有锁，其他调用方会排队。
type SyncGenerator struct {
	mu  sync.Mutex
	gen *Generator
}

// NewSyncGenerator 包装 g。g 为 nil 时各方法返回 ErrNilGenerator。
func NewSyncGenerator(g *Generator) *SyncGenerator {
	return &SyncGenerator{gen: g}
}

// Next 并发安全地执行一次 Generator.Next。
func (s *SyncGenerator) Next() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.Next()
}

// NextID 并发安全地执行一次 Generator.NextID。
func (s *SyncGenerator) NextID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.NextID()
}

// NextWithRetry 并发安全地执行一次 Generator.NextWithRetry。
func (s *SyncGenerator) NextWithRetry(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.NextWithRetry(ctx)
}

// Epoch 返回被包装生成器的 epoch。epoch 构造后不变，无需加锁。
func (s *SyncGenerator) Epoch() int64 {
	if s.gen == nil {
		return 0
	}
	return s.gen.Epoch()
}

// Decode 以被包装生成器的 epoch 解码 ID。
func (s *SyncGenerator) Decode(id int64) Snowflake {
	return Parse(id, s.Epoch())
}
