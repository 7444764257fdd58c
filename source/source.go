// Package source 按病人 ID 拉取原始临床测量值。
package source

import (
	"context"
	"sync"

	"github.com/rushteam/cardiokit/core"
)

// RecordSource 根据病人 ID 返回 13 个原始字段。
// 病人不存在时返回 NOT_FOUND；字段缺失或非数值时返回 VALIDATION。
type RecordSource interface {
	Fetch(ctx context.Context, patientID string) (core.RawInput, error)
}

// MemorySource 是内存实现，用于本地调试与测试
type MemorySource struct {
	mu      sync.RWMutex
	records map[string]core.RawInput
}

// NewMemorySource 创建内存病人记录源
func NewMemorySource() *MemorySource {
	return &MemorySource{records: make(map[string]core.RawInput)}
}

// Put 写入一条病人记录
func (s *MemorySource) Put(patientID string, raw core.RawInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[patientID] = raw.Clone()
}

func (s *MemorySource) Fetch(_ context.Context, patientID string) (core.RawInput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.records[patientID]
	if !ok {
		return nil, core.NotFoundError(core.ModuleSource, patientID)
	}
	return raw.Clone(), nil
}
